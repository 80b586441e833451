package reconcile

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Vjossaab/commercify-client/internal/cart"
	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/feed"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/metrics"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// Catalog is the slice of the catalog cache the reconciler writes to.
type Catalog interface {
	ApplyStockUpdate(productID string, stock int) bool
	ApplyProductEvent(product types.Product, action enums.ProductAction) bool
}

// Cart is the slice of the cart ledger the reconciler writes to.
type Cart interface {
	ApplyStock(productID string, stock int) cart.StockResult
}

// Change describes one applied feed event, for app-frame observers.
type Change struct {
	Event     enums.FeedEvent
	ProductID string
	Stock     int
	Action    enums.ProductAction
	Clamped   bool
	Removed   bool
}

// Reconciler is the single subscriber to the inventory feed. It applies
// stock and product events to the catalog cache first and the cart ledger
// second, so a cart line never references fresher stock than the catalog
// shows. Events older than the last applied one for the same product are
// dropped; events without a timestamp are stamped at arrival.
type Reconciler struct {
	logg  *logger.Logger
	mets  *metrics.ReconcileMetrics
	cache Catalog
	cart  Cart

	mu          sync.Mutex
	lastApplied map[string]time.Time
	unsubs      []feed.Unsubscribe
	observers   []func(Change)

	now func() time.Time
}

// New wires a reconciler against the cache and ledger.
func New(cache Catalog, ledger Cart, logg *logger.Logger, mets *metrics.ReconcileMetrics) *Reconciler {
	return &Reconciler{
		logg:        logg,
		mets:        mets,
		cache:       cache,
		cart:        ledger,
		lastApplied: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Observe registers a hook that fires after every applied event.
func (r *Reconciler) Observe(fn func(Change)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Start subscribes to both feed events. Call Stop (or close the source) to
// detach.
func (r *Reconciler) Start(source feed.Source) error {
	stockUnsub, err := source.Subscribe(enums.FeedEventStockUpdate, r.handleStockUpdate)
	if err != nil {
		return err
	}
	productUnsub, err := source.Subscribe(enums.FeedEventProductUpdate, r.handleProductUpdate)
	if err != nil {
		stockUnsub()
		return err
	}

	r.mu.Lock()
	r.unsubs = append(r.unsubs, stockUnsub, productUnsub)
	r.mu.Unlock()
	return nil
}

// Stop detaches from the feed. Idempotent.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	unsubs := r.unsubs
	r.unsubs = nil
	r.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (r *Reconciler) handleStockUpdate(data json.RawMessage) {
	ctx := r.logg.WithEventType(context.Background(), enums.FeedEventStockUpdate.String())

	var update feed.StockUpdate
	if err := json.Unmarshal(data, &update); err != nil || update.ProductID == "" {
		r.mets.IncDropped(enums.FeedEventStockUpdate.String(), metrics.DropReasonMalformed)
		r.logg.Warn(ctx, "dropping malformed stock update")
		return
	}

	ctx = r.logg.WithProductID(ctx, update.ProductID)
	if !r.admit(update.ProductID, update.Time()) {
		r.mets.IncDropped(enums.FeedEventStockUpdate.String(), metrics.DropReasonStale)
		r.logg.Warn(ctx, "dropping stale stock update")
		return
	}

	r.cache.ApplyStockUpdate(update.ProductID, update.Stock)
	result := r.cart.ApplyStock(update.ProductID, update.Stock)
	r.recordCartResult(result)
	r.mets.IncApplied(enums.FeedEventStockUpdate.String())
	r.logg.Info(r.logg.WithField(ctx, "stock", update.Stock), "applied stock update")

	r.notify(Change{
		Event:     enums.FeedEventStockUpdate,
		ProductID: update.ProductID,
		Stock:     update.Stock,
		Clamped:   result.Clamped,
		Removed:   result.Removed,
	})
}

func (r *Reconciler) handleProductUpdate(data json.RawMessage) {
	ctx := r.logg.WithEventType(context.Background(), enums.FeedEventProductUpdate.String())

	var update feed.ProductUpdate
	if err := json.Unmarshal(data, &update); err != nil || update.Product.ID == "" || !update.Action.IsValid() {
		r.mets.IncDropped(enums.FeedEventProductUpdate.String(), metrics.DropReasonMalformed)
		r.logg.Warn(ctx, "dropping malformed product update")
		return
	}

	ctx = r.logg.WithProductID(ctx, update.Product.ID)
	if !r.admit(update.Product.ID, update.Time()) {
		r.mets.IncDropped(enums.FeedEventProductUpdate.String(), metrics.DropReasonStale)
		r.logg.Warn(ctx, "dropping stale product update")
		return
	}

	r.cache.ApplyProductEvent(update.Product, update.Action)

	stock := update.Product.Stock
	if update.Action == enums.ProductActionDeleted {
		stock = 0
	}
	result := r.cart.ApplyStock(update.Product.ID, stock)
	r.recordCartResult(result)
	r.mets.IncApplied(enums.FeedEventProductUpdate.String())
	r.logg.Info(r.logg.WithField(ctx, "action", update.Action.String()), "applied product update")

	r.notify(Change{
		Event:     enums.FeedEventProductUpdate,
		ProductID: update.Product.ID,
		Stock:     stock,
		Action:    update.Action,
		Clamped:   result.Clamped,
		Removed:   result.Removed,
	})
}

// admit enforces the per-product monotonic timestamp. Events without a
// timestamp are admitted with the arrival time, which keeps later stamped
// events comparable.
func (r *Reconciler) admit(productID string, ts time.Time) bool {
	if ts.IsZero() {
		ts = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.lastApplied[productID]; ok && ts.Before(last) {
		return false
	}
	r.lastApplied[productID] = ts
	return true
}

func (r *Reconciler) recordCartResult(result cart.StockResult) {
	if result.Clamped {
		r.mets.IncClamp()
	}
	if result.Removed {
		r.mets.IncRemoval()
	}
}

func (r *Reconciler) notify(change Change) {
	r.mu.Lock()
	observers := make([]func(Change), len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(change)
	}
}
