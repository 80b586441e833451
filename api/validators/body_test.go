package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
)

type samplePayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var payload samplePayload
	return DecodeJSONBody(req, &payload)
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	t.Parallel()

	if err := decode(t, `{"productId":"p1","quantity":2}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeJSONBodyRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"productId":`},
		{name: "unknown field", body: `{"productId":"p1","quantity":1,"extra":true}`},
		{name: "missing required", body: `{"quantity":1}`},
		{name: "quantity below minimum", body: `{"productId":"p1","quantity":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decode(t, tt.body)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected coded validation error, got %v", err)
			}
		})
	}
}
