package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vjossaab/commercify-client/pkg/config"
	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 1024
	catalogProductsPath        = "/catalog/products"
	ordersPath                 = "/orders"
)

// TokenFunc supplies the bearer token attached to outgoing requests. An
// empty return sends the request anonymously.
type TokenFunc func() string

// Client talks to the Catalog Source for product reads and seller
// mutations, and to the Order Sink for checkout.
type Client struct {
	httpClient     *http.Client
	catalogBaseURL string
	ordersBaseURL  string
	token          TokenFunc
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource attaches a bearer token supplier.
func WithTokenSource(token TokenFunc) Option {
	return func(c *Client) {
		if token != nil {
			c.token = token
		}
	}
}

// New builds the backend client from the catalog and orders configuration.
func New(catalog config.CatalogConfig, orders config.OrdersConfig, opts ...Option) (*Client, error) {
	catalogBase := strings.TrimRight(strings.TrimSpace(catalog.BaseURL), "/")
	if catalogBase == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog base url is required")
	}

	timeout := catalog.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient:     &http.Client{Timeout: timeout},
		catalogBaseURL: catalogBase,
		ordersBaseURL:  strings.TrimRight(orders.ResolveBaseURL(catalog), "/"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ProductInput is the seller-facing payload for product mutations.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image,omitempty"`
}

// OrderReceipt is the Order Sink's acknowledgment of a submitted order.
type OrderReceipt struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// ListProducts pulls the full catalog. Timestamps are normalized during
// decoding regardless of which field name the backend used.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.doJSON(ctx, http.MethodGet, c.catalogURL(catalogProductsPath), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct registers a new listing on behalf of a seller.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (types.Product, error) {
	var product types.Product
	if err := validateInput(input); err != nil {
		return product, err
	}
	err := c.doJSON(ctx, http.MethodPost, c.catalogURL(catalogProductsPath), input, &product)
	return product, err
}

// UpdateProduct replaces a listing's attributes.
func (c *Client) UpdateProduct(ctx context.Context, productID string, input ProductInput) (types.Product, error) {
	var product types.Product
	if strings.TrimSpace(productID) == "" {
		return product, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateInput(input); err != nil {
		return product, err
	}
	err := c.doJSON(ctx, http.MethodPut, c.productURL(productID), input, &product)
	return product, err
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, c.productURL(productID), nil, nil)
}

// UpdateStock sets the absolute stock level of a listing.
func (c *Client) UpdateStock(ctx context.Context, productID string, stock int) (types.Product, error) {
	var product types.Product
	if strings.TrimSpace(productID) == "" {
		return product, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if stock < 0 {
		return product, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	body := map[string]int{"stock": stock}
	err := c.doJSON(ctx, http.MethodPatch, c.productURL(productID)+"/stock", body, &product)
	return product, err
}

// CreateOrder submits the cart contents to the Order Sink.
func (c *Client) CreateOrder(ctx context.Context, items []types.OrderItem) (OrderReceipt, error) {
	var receipt OrderReceipt
	if len(items) == 0 {
		return receipt, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	body := map[string]any{"items": items}
	err := c.doJSON(ctx, http.MethodPost, c.ordersBaseURL+ordersPath, body, &receipt)
	return receipt, err
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}

func (c *Client) catalogURL(path string) string {
	return c.catalogBaseURL + path
}

func (c *Client) productURL(productID string) string {
	return c.catalogURL(catalogProductsPath) + "/" + url.PathEscape(productID)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute backend request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return pkgerrors.Wrap(codeForStatus(resp.StatusCode), cause, "backend request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		return pkgerrors.CodeDependency
	}
}
