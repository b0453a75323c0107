package router

import (
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health  *handler.HealthHandler
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Sale    *handler.SaleHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, requestTimeout time.Duration, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Correlation -> Recovery -> Logging -> CORS -> Timeout
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Timeout(requestTimeout))

	// Health check endpoint (no authentication required)
	r.Get("/health", h.Health.Check)

	admins := middleware.RequireRole(middleware.RoleSuperAdmin, middleware.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(apiKey, logger))
		r.Use(middleware.Authenticate(logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.GetAll)
			r.Get("/{id}", h.Product.GetByID)
			r.Get("/{id}/sales", h.Product.ListSales)
		})

		r.Route("/product-sales", func(r chi.Router) {
			r.Get("/", h.Sale.List)
			r.Get("/active", h.Sale.ListActive)
			r.Get("/{id}", h.Sale.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(admins)
				r.Post("/", h.Sale.Create)
				r.Put("/{id}", h.Sale.Update)
				r.Delete("/{id}", h.Sale.Delete)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(middleware.RoleSuperAdmin, middleware.RoleAdmin, middleware.RoleCustomer)).
				Post("/", h.Order.Create)
			r.With(middleware.RequireRole()).Get("/my-orders", h.Order.MyOrders)

			r.Group(func(r chi.Router) {
				r.Use(admins)
				r.Get("/", h.Order.List)
				r.Get("/{id}", h.Order.GetByID)
				r.Put("/{id}", h.Order.Update)
			})

			r.With(middleware.RequireRole(middleware.RoleSuperAdmin)).Delete("/{id}", h.Order.Delete)
		})
	})

	return r
}
