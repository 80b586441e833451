package session

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/Vjossaab/commercify-client/internal/cart"
	"github.com/Vjossaab/commercify-client/internal/cartstore"
	"github.com/Vjossaab/commercify-client/internal/catalog"
	"github.com/Vjossaab/commercify-client/internal/reconcile"
	"github.com/Vjossaab/commercify-client/pkg/catalogapi"
	"github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/feed"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// CatalogAPI is the slice of the backend client the session needs.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	CreateOrder(ctx context.Context, items []types.OrderItem) (catalogapi.OrderReceipt, error)
}

// Session owns the composed client state for one storefront process: the
// cart ledger, the catalog mirror, their reconciler, and the persistence
// hook that shadows every cart mutation.
type Session struct {
	logg   *logger.Logger
	ledger *cart.Ledger
	cache  *catalog.Cache
	store  cartstore.Store
	api    CatalogAPI
	rec    *reconcile.Reconciler
	source feed.Source

	mu        sync.Mutex
	mounted   bool
	unmounted bool
}

// New wires a session. Mount must be called before the session serves
// traffic.
func New(ledger *cart.Ledger, cache *catalog.Cache, store cartstore.Store, api CatalogAPI, rec *reconcile.Reconciler, source feed.Source, logg *logger.Logger) *Session {
	return &Session{
		logg:   logg,
		ledger: ledger,
		cache:  cache,
		store:  store,
		api:    api,
		rec:    rec,
		source: source,
	}
}

// Ledger exposes the cart for the transport layer.
func (s *Session) Ledger() *cart.Ledger {
	return s.ledger
}

// Cache exposes the catalog mirror for the transport layer.
func (s *Session) Cache() *catalog.Cache {
	return s.cache
}

// Mounted reports whether the session is live.
func (s *Session) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted && !s.unmounted
}

// Mount brings the session up: restore the persisted cart exactly once and
// before any mutation, pull the catalog, then attach the reconciler to the
// feed. A failed catalog pull leaves the mirror empty and is retried via
// RefreshCatalog; a failed restore starts an empty cart. Neither blocks the
// mount.
func (s *Session) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted || s.unmounted {
		s.mu.Unlock()
		return errors.New(errors.CodeConflict, "session already mounted")
	}
	s.mounted = true
	s.mu.Unlock()

	restored, err := s.store.Restore(ctx)
	if err != nil {
		s.logg.Warn(ctx, "cart restore failed, starting empty: "+err.Error())
		restored = types.Lines{}
	}
	s.ledger.Replace(restored)

	// Every later mutation shadows itself into the store. Persist failures
	// are logged and never roll the ledger back.
	s.ledger.OnChange(func(lines types.Lines) {
		if err := s.store.Save(context.Background(), lines); err != nil {
			s.logg.Error(context.Background(), "persisting cart snapshot", err)
		}
	})

	if err := s.RefreshCatalog(ctx); err != nil {
		s.logg.Warn(ctx, "initial catalog pull failed: "+err.Error())
	}

	if err := s.rec.Start(s.source); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "attaching to inventory feed")
	}

	s.logg.Info(ctx, "session mounted")
	return nil
}

// Unmount tears the session down. Idempotent; teardown errors are
// aggregated, not short-circuited.
func (s *Session) Unmount() error {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return nil
	}
	s.unmounted = true
	s.mu.Unlock()

	s.rec.Stop()

	var err error
	err = multierr.Append(err, s.source.Close())
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "unmounting session")
	}
	return nil
}

// RefreshCatalog re-pulls the product catalog and replaces the mirror.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return err
	}
	s.cache.Load(products)
	return nil
}

// Checkout submits the cart as an order. On success the ledger and the
// persisted snapshot are cleared; on failure both are left untouched and
// the caller gets a single displayable error.
func (s *Session) Checkout(ctx context.Context) (catalogapi.OrderReceipt, error) {
	lines := s.ledger.Lines()
	if len(lines) == 0 {
		return catalogapi.OrderReceipt{}, errors.New(errors.CodeValidation, "cart is empty")
	}

	receipt, err := s.api.CreateOrder(ctx, lines.OrderItems())
	if err != nil {
		return catalogapi.OrderReceipt{}, err
	}

	s.ledger.Clear()
	if err := s.store.Clear(ctx); err != nil {
		s.logg.Error(ctx, "clearing cart snapshot after checkout", err)
	}

	s.logg.Info(s.logg.WithField(ctx, "order_id", receipt.ID), "checkout completed")
	return receipt, nil
}
