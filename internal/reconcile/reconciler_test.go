package reconcile

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/Vjossaab/commercify-client/internal/cart"
	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/feed"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/metrics"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

type stubState struct {
	calls   []string
	stocks  map[string]int
	actions []enums.ProductAction
	result  cart.StockResult
}

type stubCatalog struct{ state *stubState }

func (s *stubCatalog) ApplyStockUpdate(productID string, stock int) bool {
	s.state.calls = append(s.state.calls, "cache:"+productID)
	s.state.stocks[productID] = stock
	return true
}

func (s *stubCatalog) ApplyProductEvent(product types.Product, action enums.ProductAction) bool {
	s.state.calls = append(s.state.calls, "cache:"+product.ID)
	s.state.actions = append(s.state.actions, action)
	return true
}

type stubCart struct{ state *stubState }

func (s *stubCart) ApplyStock(productID string, stock int) cart.StockResult {
	s.state.calls = append(s.state.calls, "ledger:"+productID)
	s.state.stocks["ledger:"+productID] = stock
	return s.state.result
}

type stubSource struct {
	handlers map[enums.FeedEvent]map[int]feed.Handler
	nextID   int
}

func newStubSource() *stubSource {
	return &stubSource{handlers: make(map[enums.FeedEvent]map[int]feed.Handler)}
}

func (s *stubSource) Subscribe(event enums.FeedEvent, handler feed.Handler) (feed.Unsubscribe, error) {
	if s.handlers[event] == nil {
		s.handlers[event] = make(map[int]feed.Handler)
	}
	s.nextID++
	id := s.nextID
	s.handlers[event][id] = handler
	return func() { delete(s.handlers[event], id) }, nil
}

func (s *stubSource) Close() error { return nil }

func (s *stubSource) emit(event enums.FeedEvent, payload string) {
	for _, handler := range s.handlers[event] {
		handler(json.RawMessage(payload))
	}
}

func newTestReconciler(state *stubState) *Reconciler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return New(&stubCatalog{state: state}, &stubCart{state: state}, logg, metrics.NewReconcileMetrics(nil))
}

func newState() *stubState {
	return &stubState{stocks: make(map[string]int)}
}

func TestStockUpdateAppliesCacheThenLedger(t *testing.T) {
	state := newState()
	state.result = cart.StockResult{Updated: true, Clamped: true}
	rec := newTestReconciler(state)

	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var observed []Change
	rec.Observe(func(change Change) { observed = append(observed, change) })

	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":4}`)

	if len(state.calls) != 2 || state.calls[0] != "cache:p1" || state.calls[1] != "ledger:p1" {
		t.Fatalf("expected cache before ledger, got %v", state.calls)
	}
	if state.stocks["p1"] != 4 || state.stocks["ledger:p1"] != 4 {
		t.Fatalf("unexpected stocks %v", state.stocks)
	}
	if len(observed) != 1 || !observed[0].Clamped || observed[0].ProductID != "p1" {
		t.Fatalf("unexpected observations %+v", observed)
	}
}

func TestMalformedEventsAreDropped(t *testing.T) {
	state := newState()
	rec := newTestReconciler(state)
	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	source.emit(enums.FeedEventStockUpdate, `not json`)
	source.emit(enums.FeedEventStockUpdate, `{"stock":4}`)
	source.emit(enums.FeedEventProductUpdate, `{"product":{"id":"p1"},"action":"exploded"}`)

	if len(state.calls) != 0 {
		t.Fatalf("expected no application, got %v", state.calls)
	}
}

func TestStaleEventsAreDroppedPerProduct(t *testing.T) {
	state := newState()
	rec := newTestReconciler(state)
	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":5,"timestamp":"2026-08-30T10:00:05Z"}`)
	// Arrives late, was emitted earlier. Must not roll stock back.
	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":9,"timestamp":"2026-08-30T10:00:01Z"}`)
	// A different product with an old timestamp is unaffected.
	source.emit(enums.FeedEventStockUpdate, `{"productId":"p2","stock":1,"timestamp":"2026-08-30T09:00:00Z"}`)

	if state.stocks["p1"] != 5 {
		t.Fatalf("stale event applied, stock is %d", state.stocks["p1"])
	}
	if state.stocks["p2"] != 1 {
		t.Fatalf("independent product blocked, stock is %d", state.stocks["p2"])
	}
}

func TestUnstampedEventsUseArrivalTime(t *testing.T) {
	state := newState()
	rec := newTestReconciler(state)

	clock := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":5}`)
	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":3}`)

	if state.stocks["p1"] != 3 {
		t.Fatalf("expected later arrival to win, stock is %d", state.stocks["p1"])
	}

	// A stamped event older than the arrival clock is now stale.
	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":9,"timestamp":"2026-08-30T09:00:00Z"}`)
	if state.stocks["p1"] != 3 {
		t.Fatalf("old stamped event applied over arrival time, stock is %d", state.stocks["p1"])
	}
}

func TestProductDeleteZeroesCartStock(t *testing.T) {
	state := newState()
	state.result = cart.StockResult{Updated: true, Removed: true}
	rec := newTestReconciler(state)
	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var observed []Change
	rec.Observe(func(change Change) { observed = append(observed, change) })

	source.emit(enums.FeedEventProductUpdate, `{"product":{"id":"p1","stock":7},"action":"deleted","timestamp":"2026-08-30T10:00:00Z"}`)

	if state.stocks["ledger:p1"] != 0 {
		t.Fatalf("expected delete to zero ledger stock, got %d", state.stocks["ledger:p1"])
	}
	if len(state.actions) != 1 || state.actions[0] != enums.ProductActionDeleted {
		t.Fatalf("unexpected cache actions %v", state.actions)
	}
	if len(observed) != 1 || !observed[0].Removed {
		t.Fatalf("unexpected observations %+v", observed)
	}
}

func TestProductUpdatePropagatesStockToLedger(t *testing.T) {
	state := newState()
	rec := newTestReconciler(state)
	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	source.emit(enums.FeedEventProductUpdate, `{"product":{"id":"p1","stock":2},"action":"updated","timestamp":"2026-08-30T10:00:00Z"}`)

	if state.stocks["ledger:p1"] != 2 {
		t.Fatalf("expected ledger stock 2, got %d", state.stocks["ledger:p1"])
	}
}

func TestStopDetachesFromFeed(t *testing.T) {
	state := newState()
	rec := newTestReconciler(state)
	source := newStubSource()
	if err := rec.Start(source); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	rec.Stop()
	rec.Stop()

	source.emit(enums.FeedEventStockUpdate, `{"productId":"p1","stock":4}`)
	if len(state.calls) != 0 {
		t.Fatalf("events applied after stop: %v", state.calls)
	}
}
