package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sampad/internal/antiforgery"
	"sampad/internal/platform/health"
	registrationhandler "sampad/internal/registration/handler"
	"sampad/pkg/i18n"
	"sampad/pkg/platform/middleware/metadata"
	"sampad/pkg/platform/middleware/request"
	"sampad/pkg/platform/middleware/requesttime"
)

// DefaultMaxBodyBytes caps request bodies when RouterDeps leaves it unset.
const DefaultMaxBodyBytes = 64 << 10

// RouterDeps are the handlers and middleware collaborators the router mounts.
// Guard, Health, Metrics and RequestMetrics are optional.
type RouterDeps struct {
	Logger         *slog.Logger
	Registrations  *registrationhandler.Handler
	Guard          *antiforgery.Guard
	Health         *health.Handler
	Metrics        http.Handler
	RequestMetrics *request.Metrics
	Metadata       *metadata.Middleware
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	meta := deps.Metadata
	if meta == nil {
		meta = metadata.NewMiddleware(nil)
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(meta.Handler)
	r.Use(i18n.Middleware)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(deps.RequestMetrics))
	if deps.RequestTimeout > 0 {
		r.Use(request.Timeout(deps.RequestTimeout))
	}
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(maxBody))

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	var guard func(http.Handler) http.Handler
	if deps.Guard != nil {
		r.Get("/antiforgery-token", deps.Guard.HandleIssue)
		guard = deps.Guard.Require
	}
	deps.Registrations.Register(r, guard)

	return r
}
