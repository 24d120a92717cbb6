package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mallcart/api/controllers"
	cartcontrollers "github.com/angelmondragon/mallcart/api/controllers/cart"
	"github.com/angelmondragon/mallcart/api/middleware"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/logger"
)

// NewRouter wires the cart API. checks feeds readiness; a nil gatherer disables /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	carts cartcontrollers.Opener,
	checks map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.Cart, logg))

		r.Get("/", cartcontrollers.CartFetch(carts, logg))
		r.Delete("/", cartcontrollers.CartClear(carts, logg))
		r.Post("/items", cartcontrollers.CartAddItem(carts, logg))
		r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(carts, logg))
		r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(carts, logg))
	})

	return r
}
