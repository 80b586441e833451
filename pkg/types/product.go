package types

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors a catalog listing as last seen by the client. Stock is
// server-authoritative; the client only overwrites it when applying an
// inventory event.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	SellerID    string          `json:"sellerId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// productWire tolerates the catalog source's inconsistent timestamp field
// naming (createdAt vs created_at) and string-encoded timestamps.
type productWire struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	Category        string          `json:"category"`
	Image           string          `json:"image"`
	SellerID        string          `json:"sellerId"`
	CreatedAt       string          `json:"createdAt"`
	CreatedAtLegacy string          `json:"created_at"`
}

// UnmarshalJSON normalizes wire payloads so every decoded product exposes a
// single canonical creation timestamp.
func (p *Product) UnmarshalJSON(data []byte) error {
	var wire productWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.ID = wire.ID
	p.Name = wire.Name
	p.Description = wire.Description
	p.Price = wire.Price
	p.Stock = wire.Stock
	p.Category = wire.Category
	p.Image = wire.Image
	p.SellerID = wire.SellerID
	p.CreatedAt = normalizeTimestamp(wire.CreatedAt, wire.CreatedAtLegacy)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999", // naive isoformat, no zone
	"2006-01-02T15:04:05",
}

func normalizeTimestamp(values ...string) time.Time {
	for _, value := range values {
		if ts, ok := ParseTimestamp(value); ok {
			return ts
		}
	}
	return time.Now().UTC()
}

// ParseTimestamp decodes a wire timestamp in any of the layouts the backend
// emits. The second return value is false for empty or unparseable input.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// InStock reports whether the product can still be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}
