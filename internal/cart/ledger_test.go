package cart

import (
	"testing"

	"github.com/Vjossaab/commercify-client/pkg/types"
	"github.com/shopspring/decimal"
)

func product(id string, price float64, stock int) types.Product {
	return types.Product{ID: id, Name: "product " + id, Price: decimal.NewFromFloat(price), Stock: stock}
}

func TestAddItemMergesAndClamps(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	p := product("p1", 10, 10)

	ledger.AddItem(p, 4)
	ledger.AddItem(p, 4)

	lines := ledger.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 8 {
		t.Fatalf("expected merged quantity 8, got %d", lines[0].Quantity)
	}

	ledger.AddItem(p, 4)
	if got := ledger.Lines()[0].Quantity; got != 10 {
		t.Fatalf("expected clamp to stock 10, got %d", got)
	}
}

func TestAddItemIgnoresInvalidInput(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()

	ledger.AddItem(product("p1", 5, 0), 1)
	ledger.AddItem(product("p2", 5, 3), 0)
	ledger.AddItem(product("p3", 5, 3), -2)

	if ledger.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d lines", ledger.Len())
	}
}

func TestAddItemRefreshesSnapshot(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("p1", 5, 2), 2)
	ledger.AddItem(product("p1", 5, 10), 5)

	lines := ledger.Lines()
	if lines[0].Product.Stock != 10 {
		t.Fatalf("expected refreshed snapshot stock 10, got %d", lines[0].Product.Stock)
	}
	if lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", lines[0].Quantity)
	}
}

func TestUpdateQuantitySemantics(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("p1", 5, 5), 1)

	ledger.UpdateQuantity("p1", 9)
	if got := ledger.Lines()[0].Quantity; got != 5 {
		t.Fatalf("expected clamp to 5, got %d", got)
	}

	ledger.UpdateQuantity("missing", 3)
	if ledger.Len() != 1 {
		t.Fatalf("updating unknown product must be a no-op")
	}

	ledger.UpdateQuantity("p1", 0)
	if ledger.Len() != 0 {
		t.Fatalf("quantity zero must remove the line")
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("p1", 5, 5), 1)

	ledger.RemoveItem("p1")
	ledger.RemoveItem("p1")

	if ledger.Len() != 0 {
		t.Fatalf("expected empty ledger after remove")
	}
}

func TestApplyStockClampsAndRemoves(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("x", 2, 5), 3)

	res := ledger.ApplyStock("x", 2)
	if !res.Updated || !res.Clamped || res.Removed {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := ledger.Lines()[0].Quantity; got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}

	// Re-applying the same stock value is a no-op.
	res = ledger.ApplyStock("x", 2)
	if res.Updated {
		t.Fatalf("expected idempotent re-apply, got %+v", res)
	}

	res = ledger.ApplyStock("x", 0)
	if !res.Removed {
		t.Fatalf("expected removal at stock zero, got %+v", res)
	}
	if ledger.Len() != 0 {
		t.Fatalf("expected empty ledger after stock zero")
	}
}

func TestApplyStockNeverGrowsQuantity(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("x", 2, 3), 3)

	ledger.ApplyStock("x", 50)
	if got := ledger.Lines()[0].Quantity; got != 3 {
		t.Fatalf("reconciliation must not grow quantity, got %d", got)
	}
	if got := ledger.Lines()[0].Product.Stock; got != 50 {
		t.Fatalf("expected refreshed stock 50, got %d", got)
	}
}

func TestDerivedValuesMatchRecomputation(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.AddItem(product("a", 3, 10), 2)
	ledger.AddItem(product("b", 1.5, 10), 4)

	if !ledger.Total().Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected total 12, got %s", ledger.Total())
	}
	if ledger.ItemCount() != 6 {
		t.Fatalf("expected item count 6, got %d", ledger.ItemCount())
	}

	if !ledger.Total().Equal(ledger.Lines().Total()) {
		t.Fatalf("total must equal fresh recomputation")
	}
	if ledger.ItemCount() != ledger.Lines().ItemCount() {
		t.Fatalf("item count must equal fresh recomputation")
	}
}

func TestReplaceMergesDuplicatesAndClamps(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Replace(types.Lines{
		{Product: product("a", 3, 4), Quantity: 9},
		{Product: product("b", 1, 2), Quantity: 1},
		{Product: product("b", 1, 2), Quantity: 1},
		{Product: product("c", 1, 0), Quantity: 1},
	})

	lines := ledger.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after replace, got %d", len(lines))
	}
	if lines[0].Quantity != 4 {
		t.Fatalf("expected restored quantity clamped to 4, got %d", lines[0].Quantity)
	}
}

func TestInvariantHoldsAcrossMutationSequences(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	products := []types.Product{product("a", 2, 3), product("b", 4, 1), product("c", 1, 7)}

	ledger.AddItem(products[0], 5)
	ledger.AddItem(products[1], 1)
	ledger.UpdateQuantity("a", 2)
	ledger.AddItem(products[2], 7)
	ledger.UpdateQuantity("c", 9)
	ledger.RemoveItem("b")
	ledger.AddItem(products[1], 3)

	for _, line := range ledger.Lines() {
		if line.Quantity <= 0 || line.Quantity > line.Product.Stock {
			t.Fatalf("invariant violated for %s: qty=%d stock=%d", line.Product.ID, line.Quantity, line.Product.Stock)
		}
	}
}

func TestOnChangeFiresWithSnapshot(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	var calls int
	var last types.Lines
	ledger.OnChange(func(lines types.Lines) {
		calls++
		last = lines
	})

	ledger.AddItem(product("a", 2, 3), 1)
	ledger.AddItem(product("a", 2, 0), 1) // no-op, must not fire
	ledger.Clear()
	ledger.Clear() // already empty, must not fire

	if calls != 2 {
		t.Fatalf("expected 2 change notifications, got %d", calls)
	}
	if len(last) != 0 {
		t.Fatalf("expected final snapshot empty, got %d lines", len(last))
	}
}
