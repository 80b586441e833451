package cartstore

import (
	"context"
	"encoding/json"

	"github.com/Vjossaab/commercify-client/pkg/types"
)

// Store persists the cart between sessions. Implementations hold exactly one
// snapshot per storage key; the in-memory ledger stays authoritative and a
// failed Save never rolls it back.
type Store interface {
	Save(ctx context.Context, lines types.Lines) error
	Restore(ctx context.Context) (types.Lines, error)
	Clear(ctx context.Context) error
}

// storedLine is the persisted wire shape of one cart line.
type storedLine struct {
	Product  types.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

func encodeLines(lines types.Lines) (string, error) {
	out := make([]storedLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, storedLine{Product: line.Product, Quantity: line.Quantity})
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// decodeLines rejects anything that is not a JSON array of lines. Callers
// treat a decode failure as a corrupt snapshot to discard, never as data.
func decodeLines(payload string) (types.Lines, error) {
	var stored []storedLine
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return nil, err
	}
	lines := make(types.Lines, 0, len(stored))
	for _, entry := range stored {
		lines = append(lines, types.CartLine{Product: entry.Product, Quantity: entry.Quantity})
	}
	return lines, nil
}
