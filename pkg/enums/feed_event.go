package enums

import "fmt"

// FeedEvent names the events delivered on the inventory event feed.
type FeedEvent string

const (
	FeedEventStockUpdate   FeedEvent = "stock_update"
	FeedEventProductUpdate FeedEvent = "product_update"
)

var validFeedEvents = []FeedEvent{
	FeedEventStockUpdate,
	FeedEventProductUpdate,
}

// String implements fmt.Stringer.
func (e FeedEvent) String() string {
	return string(e)
}

// IsValid reports whether the value is a known FeedEvent.
func (e FeedEvent) IsValid() bool {
	for _, candidate := range validFeedEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseFeedEvent converts raw input into a FeedEvent.
func ParseFeedEvent(value string) (FeedEvent, error) {
	for _, candidate := range validFeedEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feed event %q", value)
}
