package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vjossaab/commercify-client/api/responses"
	"github.com/Vjossaab/commercify-client/api/validators"
	"github.com/Vjossaab/commercify-client/internal/session"
	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

type cartResponse struct {
	Items     types.Lines `json:"items"`
	Total     string      `json:"total"`
	ItemCount int         `json:"itemCount"`
}

func newCartResponse(lines types.Lines) cartResponse {
	return cartResponse{
		Items:     lines,
		Total:     lines.Total().StringFixed(2),
		ItemCount: lines.ItemCount(),
	}
}

// CartGet returns the current cart with derived totals.
func CartGet(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(sess.Ledger().Lines()))
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CartAddItem adds (or merges) a line for a cached product. Quantities are
// clamped against the product's known stock; an out-of-stock product is a
// conflict, not a silent no-op.
func CartAddItem(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := requireProduct(sess, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.InStock() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock"))
			return
		}

		sess.Ledger().AddItem(product, payload.Quantity)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(sess.Ledger().Lines()))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartUpdateQuantity sets the absolute quantity of a line. Zero removes it.
func CartUpdateQuantity(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !hasLine(sess, productID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart"))
			return
		}

		sess.Ledger().UpdateQuantity(productID, payload.Quantity)
		responses.WriteSuccess(w, newCartResponse(sess.Ledger().Lines()))
	}
}

// CartRemoveItem removes a line. Removing an absent line is fine.
func CartRemoveItem(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.Ledger().RemoveItem(chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, newCartResponse(sess.Ledger().Lines()))
	}
}

// CartClear empties the cart.
func CartClear(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.Ledger().Clear()
		responses.WriteSuccess(w, newCartResponse(sess.Ledger().Lines()))
	}
}

func hasLine(sess *session.Session, productID string) bool {
	for _, line := range sess.Ledger().Lines() {
		if line.Product.ID == productID {
			return true
		}
	}
	return false
}
