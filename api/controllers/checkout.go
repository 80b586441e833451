package controllers

import (
	"net/http"

	"github.com/Vjossaab/commercify-client/api/responses"
	"github.com/Vjossaab/commercify-client/internal/session"
	"github.com/Vjossaab/commercify-client/pkg/logger"
)

// Checkout submits the cart to the order sink. Success clears both the
// in-memory cart and its persisted snapshot; failure leaves them untouched.
func Checkout(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receipt, err := sess.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
