package catalog

import (
	"testing"

	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

func seed() []types.Product {
	return []types.Product{
		{ID: "p1", Name: "Blue Mug", Description: "ceramic mug", Category: "kitchen", Stock: 5},
		{ID: "p2", Name: "Desk Lamp", Description: "warm light", Category: "office", Stock: 3},
		{ID: "p3", Name: "Notebook", Description: "ruled paper", Category: "office", Stock: 0},
	}
}

func TestLoadReplacesSnapshot(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())
	if cache.Len() != 3 {
		t.Fatalf("expected 3 products, got %d", cache.Len())
	}

	cache.Load([]types.Product{{ID: "p9", Name: "Chair", Stock: 1}})
	if cache.Len() != 1 {
		t.Fatalf("expected full replace, got %d products", cache.Len())
	}
	if _, ok := cache.Get("p1"); ok {
		t.Fatal("expected p1 to be gone after replace")
	}
}

func TestApplyStockUpdateSemantics(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())

	if !cache.ApplyStockUpdate("p1", 2) {
		t.Fatal("expected stock update to apply")
	}
	p, _ := cache.Get("p1")
	if p.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", p.Stock)
	}

	// Idempotent re-apply.
	if cache.ApplyStockUpdate("p1", 2) {
		t.Fatal("expected re-apply of same stock to be a no-op")
	}

	// Unknown product is advisory, not an error.
	if cache.ApplyStockUpdate("ghost", 7) {
		t.Fatal("expected unknown product update to be dropped")
	}
}

func TestApplyProductEventLifecycle(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())

	created := types.Product{ID: "p4", Name: "Poster", Category: "decor", Stock: 9}
	if !cache.ApplyProductEvent(created, enums.ProductActionCreated) {
		t.Fatal("expected created event to apply")
	}

	created.Name = "Framed Poster"
	if !cache.ApplyProductEvent(created, enums.ProductActionUpdated) {
		t.Fatal("expected updated event to apply")
	}
	p, _ := cache.Get("p4")
	if p.Name != "Framed Poster" {
		t.Fatalf("expected upserted name, got %q", p.Name)
	}

	if !cache.ApplyProductEvent(created, enums.ProductActionDeleted) {
		t.Fatal("expected deleted event to apply")
	}
	if _, ok := cache.Get("p4"); ok {
		t.Fatal("expected p4 removed")
	}
	if cache.ApplyProductEvent(created, enums.ProductActionDeleted) {
		t.Fatal("expected second delete to be a no-op")
	}
}

func TestListFiltering(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"p1", "p2", "p3"}},
		{name: "free text on name", filter: Filter{Query: "mug"}, want: []string{"p1"}},
		{name: "free text on description", filter: Filter{Query: "paper"}, want: []string{"p3"}},
		{name: "category", filter: Filter{Category: "office"}, want: []string{"p2", "p3"}},
		{name: "category and text", filter: Filter{Category: "office", Query: "lamp"}, want: []string{"p2"}},
		{name: "no match", filter: Filter{Query: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cache.List(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d products, got %d", len(tt.want), len(got))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Fatalf("expected %s at index %d, got %s", tt.want[i], i, p.ID)
				}
			}
		})
	}
}

func TestListIsPure(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())

	before := cache.List(Filter{})
	before[0].Stock = 999

	after := cache.List(Filter{})
	if after[0].Stock == 999 {
		t.Fatal("List must return copies, not live references")
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Load(seed())

	got := cache.Categories()
	if len(got) != 2 || got[0] != "kitchen" || got[1] != "office" {
		t.Fatalf("unexpected categories %v", got)
	}
}
