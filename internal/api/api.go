// Package api exposes the inventory engine over HTTP: REST routes for
// items, categories, custom fields, notifications, and rentals, plus the
// SSE event stream.
package api

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"stockd/internal/catalog"
	"stockd/internal/hub"
	"stockd/internal/inventory"
)

// Config controls runtime behaviour for the HTTP layer.
type Config struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	RateLimit      int
	RatePeriod     time.Duration
}

// API wires dependencies and configuration for the HTTP handlers. Pool and
// Catalog are optional; routes that need them report service unavailable
// when absent.
type API struct {
	svc     *inventory.Service
	hub     *hub.Hub
	pool    *pgxpool.Pool
	catalog *catalog.Client
	config  Config
	log     zerolog.Logger
}

// New initialises the API layer with defaults applied to the configuration.
func New(svc *inventory.Service, h *hub.Hub, pool *pgxpool.Pool, cat *catalog.Client, cfg Config, log zerolog.Logger) (*API, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	if h == nil {
		return nil, errors.New("hub is required")
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 300
	}
	if cfg.RatePeriod <= 0 {
		cfg.RatePeriod = time.Minute
	}

	return &API{
		svc:     svc,
		hub:     h,
		pool:    pool,
		catalog: cat,
		config:  cfg,
		log:     log,
	}, nil
}
