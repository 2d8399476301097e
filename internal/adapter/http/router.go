package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/textileledger/internal/adapter/http/handler"
	"github.com/iho/textileledger/internal/adapter/http/middleware"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/metrics"
	"github.com/iho/textileledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ItemHandler           *handler.ItemHandler
	StakeholderHandler    *handler.StakeholderHandler
	PackagingStyleHandler *handler.PackagingStyleHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	AuditHandler          *handler.AuditHandler // optional
	LedgerHandlers        []*handler.LedgerHandler

	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore // optional
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter // optional
	Metrics          *metrics.Metrics        // optional
	MetricsHandler   http.Handler            // optional, served on /metrics
	TokenVerifier    middleware.TokenVerifier
	AuthEnabled      bool
}

// KindSegment returns the URL segment of a ledger kind.
func KindSegment(kind domain.ItemKind) string {
	switch kind {
	case domain.ItemKindWarpBeam:
		return "warp-beams"
	default:
		return string(kind)
	}
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	requireAdmin := func(next http.Handler) http.Handler { return next }

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled {
			var onFailure middleware.FailureCounter
			if cfg.Metrics != nil {
				onFailure = func(reason string) { cfg.Metrics.AuthFailures.WithLabelValues(reason).Inc() }
			}
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, onFailure))
			r.Use(middleware.RequireWriteRole)
			requireAdmin = middleware.RequireRole(domain.RoleAdmin)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.ItemHandler.Create)
			r.Get("/", cfg.ItemHandler.List)
			r.Get("/{id}", cfg.ItemHandler.Get)
			r.Put("/{id}", cfg.ItemHandler.Update)
			r.Put("/{id}/status", cfg.ItemHandler.SetStatus)
			r.With(requireAdmin).Delete("/{id}", cfg.ItemHandler.Delete)
			r.Get("/{id}/lineage", cfg.ItemHandler.Lineage)
		})

		r.Route("/stakeholders", func(r chi.Router) {
			r.Post("/", cfg.StakeholderHandler.Create)
			r.Get("/", cfg.StakeholderHandler.List)
			r.Get("/{id}", cfg.StakeholderHandler.Get)
			r.Put("/{id}", cfg.StakeholderHandler.Update)
			r.Put("/{id}/status", cfg.StakeholderHandler.SetStatus)
		})

		r.Route("/packaging-styles", func(r chi.Router) {
			r.Post("/", cfg.PackagingStyleHandler.Create)
			r.Get("/", cfg.PackagingStyleHandler.List)
			r.Get("/{id}", cfg.PackagingStyleHandler.Get)
			r.Put("/{id}", cfg.PackagingStyleHandler.Update)
			r.Put("/{id}/status", cfg.PackagingStyleHandler.SetStatus)
		})

		// One sub-tree per ledger kind
		for _, lh := range cfg.LedgerHandlers {
			lh := lh
			r.Route("/"+KindSegment(lh.Kind()), func(r chi.Router) {
				r.Post("/transactions", lh.Record)
				r.Get("/transactions", lh.List)
				r.Get("/transactions/{id}", lh.Get)
				r.Get("/items/{id}/balance", lh.Balance)
				r.With(requireAdmin).Post("/items/{id}/reset", lh.Reset)
				r.Get("/items/{id}/statement.xlsx", lh.Statement)
			})
		}

		r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
		if cfg.AuditHandler != nil {
			r.With(requireAdmin).Get("/audit", cfg.AuditHandler.List)
		}
	})

	return r
}
