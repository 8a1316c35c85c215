package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes constructs the chi router containing all endpoints. The event
// stream is mounted outside the timeout group so long-lived SSE connections
// are not cut off.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(a.config.RateLimit, a.config.RatePeriod))

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", a.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.config.RequestTimeout))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", a.handleListItems)
				r.Post("/", a.handleCreateItem)
				r.Get("/next-id", a.handleNextItemID)
				r.Route("/{serial}", func(r chi.Router) {
					r.Get("/", a.handleGetItem)
					r.Put("/", a.handleUpdateItem)
					r.Delete("/", a.handleDeleteItem)
					r.Get("/history", a.handleItemHistory)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.handleListCategories)
				r.Post("/", a.handleCreateCategory)
				r.Delete("/{name}", a.handleDeleteCategory)
			})

			r.Route("/custom-fields", func(r chi.Router) {
				r.Get("/", a.handleListCustomFields)
				r.Post("/", a.handleCreateCustomField)
				r.Put("/{id}", a.handleUpdateCustomField)
				r.Delete("/{id}", a.handleDeleteCustomField)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", a.handleListNotifications)
				r.Delete("/", a.handleClearNotifications)
				r.Delete("/{id}", a.handleDeleteNotification)
			})

			r.Route("/rentals", func(r chi.Router) {
				r.Get("/", a.handleListRentals)
				r.Post("/", a.handleCreateRental)
				r.Put("/{id}", a.handleUpdateRental)
				r.Delete("/{id}", a.handleDeleteRental)
			})

			r.Route("/rental-statuses", func(r chi.Router) {
				r.Get("/", a.handleListRentalStatuses)
				r.Post("/", a.handleCreateRentalStatus)
			})

			r.Get("/catalog/{gtin}", a.handleCatalogLookup)
		})
	})

	return otelhttp.NewHandler(r, "stockd-api")
}
