package enums

import "fmt"

// ProductAction describes the mutation carried by a product_update event.
type ProductAction string

const (
	ProductActionCreated ProductAction = "created"
	ProductActionUpdated ProductAction = "updated"
	ProductActionDeleted ProductAction = "deleted"
)

var validProductActions = []ProductAction{
	ProductActionCreated,
	ProductActionUpdated,
	ProductActionDeleted,
}

// String implements fmt.Stringer.
func (a ProductAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ProductAction.
func (a ProductAction) IsValid() bool {
	for _, candidate := range validProductActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseProductAction converts raw input into a ProductAction.
func ParseProductAction(value string) (ProductAction, error) {
	for _, candidate := range validProductActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product action %q", value)
}
