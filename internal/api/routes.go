package api

import (
	"net/http"
	"time"

	custommiddleware "biodiversity/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	// Registry receives request metrics and is exposed on /metrics.
	// A nil Registry disables both.
	Registry *prometheus.Registry
}

// NewRouter builds the full middleware stack around the API routes.
func NewRouter(handlers *Handlers, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(opts.Logger))
	// Metrics sit outside Recoverer so recovered panics are counted as 500s.
	if opts.Registry != nil {
		r.Use(custommiddleware.NewMetricsCollector(opts.Registry).Handler)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	// Security middleware
	r.Use(custommiddleware.SecurityHeaders)
	r.Use(custommiddleware.Cors(opts.AllowedOrigins))
	r.Use(middleware.Compress(5))

	SetupRoutes(r, handlers)

	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func SetupRoutes(r chi.Router, handlers *Handlers) {
	// Landing page and its assets
	r.Get("/", handlers.getIndex)
	r.Handle("/static/*", handlers.staticAssets())

	// Dataset endpoints
	r.Get("/names", handlers.getNames)
	r.Get("/otu", handlers.getOTUs)
	r.Get("/sample/{sample}", handlers.getSampleMetadata)
	r.Get("/wfreq/{sample}", handlers.getWashingFrequency)
	r.Get("/samples/{sampleName}", handlers.getSampleValues)

	// Readiness
	r.Method(http.MethodGet, "/healthz", handlers.health)
}
