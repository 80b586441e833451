package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Vjossaab/commercify-client/api/responses"
	"github.com/Vjossaab/commercify-client/api/validators"
	"github.com/Vjossaab/commercify-client/internal/catalog"
	"github.com/Vjossaab/commercify-client/internal/session"
	"github.com/Vjossaab/commercify-client/pkg/catalogapi"
	"github.com/Vjossaab/commercify-client/pkg/enums"
	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// ProductWriter is the slice of the backend client serving seller
// pass-through mutations.
type ProductWriter interface {
	CreateProduct(ctx context.Context, input catalogapi.ProductInput) (types.Product, error)
	UpdateProduct(ctx context.Context, productID string, input catalogapi.ProductInput) (types.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	UpdateStock(ctx context.Context, productID string, stock int) (types.Product, error)
}

// CatalogList serves the cached catalog with optional free-text and
// category filters. Reads never hit the backend.
func CatalogList(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.Filter{
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
		}

		products := sess.Cache().List(filter)
		responses.WriteSuccess(w, map[string]any{
			"products":   products,
			"categories": sess.Cache().Categories(),
		})
	}
}

// CatalogRefresh re-pulls the catalog from the backend on demand.
func CatalogRefresh(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sess.RefreshCatalog(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"products": sess.Cache().Len()})
	}
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"min=0"`
	Stock       int     `json:"stock" validate:"min=0"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image"`
}

func (p productRequest) toInput() catalogapi.ProductInput {
	return catalogapi.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromFloat(p.Price),
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       p.Image,
	}
}

// ProductCreate forwards a seller listing to the backend and mirrors the
// result into the local cache.
func ProductCreate(sess *session.Session, writer ProductWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := writer.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess.Cache().ApplyProductEvent(product, enums.ProductActionCreated)
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate forwards a listing replacement to the backend.
func ProductUpdate(sess *session.Session, writer ProductWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := writer.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess.Cache().ApplyProductEvent(product, enums.ProductActionUpdated)
		responses.WriteSuccess(w, product)
	}
}

// ProductDelete forwards a listing removal and drops it locally.
func ProductDelete(sess *session.Session, writer ProductWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")

		if err := writer.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if product, ok := sess.Cache().Get(productID); ok {
			sess.Cache().ApplyProductEvent(product, enums.ProductActionDeleted)
			sess.Ledger().ApplyStock(productID, 0)
		}
		responses.WriteSuccess(w, map[string]string{"id": productID, "status": "deleted"})
	}
}

type stockRequest struct {
	Stock int `json:"stock" validate:"min=0"`
}

// ProductStockUpdate forwards an absolute stock change to the backend. The
// local mirror is updated from the authoritative response rather than the
// request, matching what the feed will later confirm.
func ProductStockUpdate(sess *session.Session, writer ProductWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")

		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := writer.UpdateStock(r.Context(), productID, payload.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess.Cache().ApplyStockUpdate(product.ID, product.Stock)
		sess.Ledger().ApplyStock(product.ID, product.Stock)
		responses.WriteSuccess(w, product)
	}
}

func requireProduct(sess *session.Session, productID string) (types.Product, error) {
	product, ok := sess.Cache().Get(productID)
	if !ok {
		return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
