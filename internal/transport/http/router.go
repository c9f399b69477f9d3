package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"gangland/internal/platform/middleware"
	"gangland/pkg/platform/httputil"
	"gangland/pkg/platform/middleware/metadata"
	"gangland/pkg/platform/middleware/requesttime"
	"gangland/pkg/requestcontext"
)

// SOAP endpoints the game client posts envelopes to.
const (
	AccountManagementPath      = "/CLS/WbAccountManagement.asmx"
	SubscriptionManagementPath = "/CLS/WbSubscriptionManagement.asmx"
)

// Module is a feature package that owns a set of routes.
type Module interface {
	Register(r chi.Router)
}

// Metrics is what the router reports to.
type Metrics interface {
	middleware.LatencyObserver
	middleware.RejectionObserver
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Metrics        Metrics
	MetricsHandler http.Handler
	SOAP           http.Handler
	Modules        []Module
	HealthChecks   map[string]HealthCheck
	Limiter        *middleware.MapLimiter
	TrustProxy     bool
	RequestTimeout time.Duration
}

// NewRouter wires the middleware chain and every public endpoint.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(cfg.TrustProxy))
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}
	r.Use(middleware.RateLimit(cfg.Limiter, cfg.Metrics, cfg.Logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Post(AccountManagementPath, cfg.SOAP.ServeHTTP)
	r.Post(SubscriptionManagementPath, cfg.SOAP.ServeHTTP)

	for _, m := range cfg.Modules {
		m.Register(r)
	}

	r.HandleFunc("/actions/{action}", notImplemented(cfg.Logger))
	r.Get("/healthz", health(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	return r
}

func notImplemented(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "request for unknown action",
			"action", chi.URLParam(r, "action"),
			"method", r.Method,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteText(w, http.StatusNotImplemented, "Not Implemented")
	}
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}
