package feed

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// Handler receives the raw JSON payload of a single feed event.
type Handler func(data json.RawMessage)

// Unsubscribe detaches a previously registered handler. Safe to call more
// than once.
type Unsubscribe func()

// Source is the inventory event feed as seen by the reconciler: register a
// handler per event name, tear the connection down once when done.
type Source interface {
	Subscribe(event enums.FeedEvent, handler Handler) (Unsubscribe, error)
	Close() error
}

// ErrSourceClosed rejects subscriptions against a closed source.
var ErrSourceClosed = errors.New("feed source is closed")

// StockUpdate is the payload of a stock_update event.
type StockUpdate struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Time returns the event timestamp, or the zero time when the relay did not
// attach one.
func (u StockUpdate) Time() time.Time {
	ts, _ := types.ParseTimestamp(u.Timestamp)
	return ts
}

// ProductUpdate is the payload of a product_update event.
type ProductUpdate struct {
	Product   types.Product       `json:"product"`
	Action    enums.ProductAction `json:"action"`
	Timestamp string              `json:"timestamp"`
}

// Time returns the event timestamp, or the zero time when absent.
func (u ProductUpdate) Time() time.Time {
	ts, _ := types.ParseTimestamp(u.Timestamp)
	return ts
}

// dispatcher is the handler registry shared by the feed transports.
// Handlers run while the registry lock is held so that no handler fires
// after Unsubscribe or Close returns.
type dispatcher struct {
	mu       sync.Mutex
	closed   bool
	nextID   int
	handlers map[enums.FeedEvent]map[int]Handler
}

func (d *dispatcher) subscribe(event enums.FeedEvent, handler Handler) (Unsubscribe, error) {
	if handler == nil {
		return nil, errors.New("feed handler is required")
	}
	if !event.IsValid() {
		return nil, errors.New("unknown feed event " + event.String())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrSourceClosed
	}
	if d.handlers == nil {
		d.handlers = make(map[enums.FeedEvent]map[int]Handler)
	}
	if d.handlers[event] == nil {
		d.handlers[event] = make(map[int]Handler)
	}
	d.nextID++
	id := d.nextID
	d.handlers[event][id] = handler

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[event], id)
	}, nil
}

func (d *dispatcher) dispatch(event enums.FeedEvent, data json.RawMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for _, handler := range d.handlers[event] {
		handler(data)
	}
}

func (d *dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// markClosed flips the registry into its terminal state. Returns false if it
// was already closed.
func (d *dispatcher) markClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.closed = true
	d.handlers = nil
	return true
}
