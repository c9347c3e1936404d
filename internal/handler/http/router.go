package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/health"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/middleware"
)

// RouterConfig carries the settings the router needs besides its handlers.
type RouterConfig struct {
	Service        string
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all producer routes registered.
func NewRouter(
	productService ProductSyncer,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.Service))
	r.Use(middleware.Tracing(cfg.Service))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(productService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// A full synchronization may outlive the per-request timeout.
		r.Post("/synchronize", productHandler.SynchronizeAll)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(cfg.RequestTimeout))

			r.Get("/", productHandler.ListProducts)

			r.Route("/{code}", func(r chi.Router) {
				r.Use(middleware.ProductScope("code"))

				r.Get("/payload", productHandler.PreviewProduct)
				r.Post("/synchronize", productHandler.SynchronizeProduct)
				r.Delete("/", productHandler.RemoveProduct)
			})
		})
	})

	return r
}
