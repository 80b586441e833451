package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vjossaab/commercify-client/api/controllers"
	"github.com/Vjossaab/commercify-client/api/middleware"
	"github.com/Vjossaab/commercify-client/internal/session"
	"github.com/Vjossaab/commercify-client/pkg/config"
	"github.com/Vjossaab/commercify-client/pkg/logger"
)

// NewRouter wires the local app-frame surface. Catalog and cart reads serve
// straight from the mounted session; seller mutations pass through to the
// backend via the product writer.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sess *session.Session,
	writer controllers.ProductWriter,
	registry *prometheus.Registry,
	stores ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, sess, stores...))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/catalog/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(sess, logg))
			r.Post("/refresh", controllers.CatalogRefresh(sess, logg))
			r.Post("/", controllers.ProductCreate(sess, writer, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Put("/", controllers.ProductUpdate(sess, writer, logg))
				r.Delete("/", controllers.ProductDelete(sess, writer, logg))
				r.Patch("/stock", controllers.ProductStockUpdate(sess, writer, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(sess, logg))
			r.Delete("/", controllers.CartClear(sess, logg))
			r.Post("/items", controllers.CartAddItem(sess, logg))
			r.Route("/items/{productId}", func(r chi.Router) {
				r.Patch("/", controllers.CartUpdateQuantity(sess, logg))
				r.Delete("/", controllers.CartRemoveItem(sess, logg))
			})
		})

		r.Post("/checkout", controllers.Checkout(sess, logg))
	})

	return r
}
