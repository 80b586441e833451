package cart

import (
	"sync"

	"github.com/Vjossaab/commercify-client/pkg/types"
	"github.com/shopspring/decimal"
)

// Ledger is the authoritative in-memory cart state. User actions and
// reconciliation events mutate it from independent goroutines, so every
// operation runs under the ledger lock as one atomic step.
//
// Invariant held across all mutations: every line satisfies
// 0 < quantity <= product.Stock for its embedded snapshot.
type Ledger struct {
	mu       sync.Mutex
	lines    types.Lines
	onChange func(types.Lines)
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// OnChange registers a hook invoked with a snapshot after every state
// change. The hook is fire-and-forget: its failures never roll back the
// mutation that triggered it.
func (l *Ledger) OnChange(fn func(types.Lines)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Replace installs a restored line sequence. Lines are merged by product id
// and re-clamped so a stale snapshot can never smuggle in an invalid state.
func (l *Ledger) Replace(lines types.Lines) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = nil
	for _, line := range lines {
		l.upsertLocked(line.Product, line.Quantity, false)
	}
}

// AddItem merges quantity into the line for product.ID, clamped to the
// incoming stock. Adding a non-positive quantity or an out-of-stock product
// is a no-op: availability mistakes degrade to nothing, never to an invalid
// line.
func (l *Ledger) AddItem(product types.Product, quantity int) {
	if quantity <= 0 || product.Stock <= 0 {
		return
	}

	l.mu.Lock()
	changed := l.upsertLocked(product, quantity, true)
	snapshot := l.copyLocked()
	hook := l.onChange
	l.mu.Unlock()

	if changed {
		notify(hook, snapshot)
	}
}

// upsertLocked inserts or merges a line. When merge is true the quantity is
// added to any existing line; otherwise it replaces it. The embedded
// snapshot is refreshed to the incoming product so the clamp and the
// snapshot can never disagree.
func (l *Ledger) upsertLocked(product types.Product, quantity int, merge bool) bool {
	if quantity <= 0 || product.Stock <= 0 || product.ID == "" {
		return false
	}

	for i := range l.lines {
		if l.lines[i].Product.ID != product.ID {
			continue
		}
		next := quantity
		if merge {
			next += l.lines[i].Quantity
		}
		l.lines[i] = types.CartLine{Product: product, Quantity: clamp(next, product.Stock)}
		return true
	}

	l.lines = append(l.lines, types.CartLine{Product: product, Quantity: clamp(quantity, product.Stock)})
	return true
}

// RemoveItem deletes the matching line. Removing an absent product is a
// no-op.
func (l *Ledger) RemoveItem(productID string) {
	l.mu.Lock()
	changed := l.removeLocked(productID)
	snapshot := l.copyLocked()
	hook := l.onChange
	l.mu.Unlock()

	if changed {
		notify(hook, snapshot)
	}
}

func (l *Ledger) removeLocked(productID string) bool {
	for i := range l.lines {
		if l.lines[i].Product.ID == productID {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity on an existing line, clamped to the
// line's last-known stock. A non-positive quantity removes the line; an
// unknown product id is a no-op.
func (l *Ledger) UpdateQuantity(productID string, quantity int) {
	l.mu.Lock()
	var changed bool
	if quantity <= 0 {
		changed = l.removeLocked(productID)
	} else {
		for i := range l.lines {
			if l.lines[i].Product.ID != productID {
				continue
			}
			next := clamp(quantity, l.lines[i].Product.Stock)
			changed = next != l.lines[i].Quantity
			l.lines[i].Quantity = next
			break
		}
	}
	snapshot := l.copyLocked()
	hook := l.onChange
	l.mu.Unlock()

	if changed {
		notify(hook, snapshot)
	}
}

// Clear empties the cart unconditionally.
func (l *Ledger) Clear() {
	l.mu.Lock()
	changed := len(l.lines) > 0
	l.lines = nil
	hook := l.onChange
	l.mu.Unlock()

	if changed {
		notify(hook, nil)
	}
}

// StockResult reports what ApplyStock did to the matching line.
type StockResult struct {
	Updated bool
	Clamped bool
	Removed bool
}

// ApplyStock is the reconciliation entry point: it refreshes the embedded
// stock for productID and re-clamps the quantity downward. A stock of zero
// removes the line, matching UpdateQuantity's treatment of quantity zero.
// ApplyStock never grows a quantity and re-applying the same stock value is
// a no-op.
func (l *Ledger) ApplyStock(productID string, stock int) StockResult {
	l.mu.Lock()
	var result StockResult
	for i := range l.lines {
		if l.lines[i].Product.ID != productID {
			continue
		}
		if stock <= 0 {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			result = StockResult{Updated: true, Clamped: true, Removed: true}
			break
		}
		if l.lines[i].Product.Stock == stock && l.lines[i].Quantity <= stock {
			break
		}
		result.Updated = true
		l.lines[i].Product.Stock = stock
		if l.lines[i].Quantity > stock {
			l.lines[i].Quantity = stock
			result.Clamped = true
		}
		break
	}
	snapshot := l.copyLocked()
	hook := l.onChange
	l.mu.Unlock()

	if result.Updated {
		notify(hook, snapshot)
	}
	return result
}

// Lines returns a copy of the current line sequence.
func (l *Ledger) Lines() types.Lines {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

// Total recomputes the cart total from the current lines.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines.Total()
}

// ItemCount recomputes the unit count from the current lines.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines.ItemCount()
}

// Len returns the number of lines.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func (l *Ledger) copyLocked() types.Lines {
	if len(l.lines) == 0 {
		return nil
	}
	out := make(types.Lines, len(l.lines))
	copy(out, l.lines)
	return out
}

func notify(hook func(types.Lines), snapshot types.Lines) {
	if hook != nil {
		hook(snapshot)
	}
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
