package types

import "github.com/shopspring/decimal"

// CartLine pairs a point-in-time product snapshot with a quantity. The
// snapshot is refreshed by reconciliation, never shared by reference with
// the catalog.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Lines is the ordered cart line sequence, unique by product id.
type Lines []CartLine

// Total recomputes the cart total from the current line sequence.
func (l Lines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemCount recomputes the total unit count from the current line sequence.
func (l Lines) ItemCount() int {
	count := 0
	for _, line := range l {
		count += line.Quantity
	}
	return count
}

// OrderItem is the order sink's line item shape.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderItems projects the cart into the order submission payload.
func (l Lines) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(l))
	for _, line := range l {
		items = append(items, OrderItem{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	return items
}
