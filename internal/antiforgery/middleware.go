package antiforgery

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/platform/httputil"
	"sampad/pkg/requestcontext"
)

// Rejection reasons used as metric labels.
const (
	ReasonMissing     = "missing"
	ReasonInvalid     = "invalid"
	ReasonReplayed    = "replayed"
	ReasonUnavailable = "store_unavailable"
)

type Metrics struct {
	Issued   prometheus.Counter
	Rejected *prometheus.CounterVec
}

// NewMetrics registers with reg; nil means the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Issued: f.NewCounter(prometheus.CounterOpts{
			Name: "sampad_antiforgery_tokens_issued_total",
			Help: "Anti-forgery tokens issued",
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sampad_antiforgery_rejections_total",
			Help: "Submissions rejected by the anti-forgery check, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) reject(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}

// Guard verifies and consumes the token of every request it wraps.
type Guard struct {
	issuer  *Issuer
	replay  ReplayStore
	logger  *slog.Logger
	metrics *Metrics
}

func NewGuard(issuer *Issuer, replay ReplayStore, logger *slog.Logger, metrics *Metrics) *Guard {
	return &Guard{issuer: issuer, replay: replay, logger: logger, metrics: metrics}
}

// Require rejects requests without a valid, unused token with 403.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		raw := r.Header.Get(HeaderName)
		if raw == "" {
			g.metrics.reject(ReasonMissing)
			httputil.WriteError(ctx, w, dErrors.New(dErrors.CodeForbidden, "antiforgery token missing"))
			return
		}
		token, err := g.issuer.Verify(ctx, raw)
		if err != nil {
			g.metrics.reject(ReasonInvalid)
			g.logger.InfoContext(ctx, "antiforgery token rejected", "error", err, "request_id", requestID)
			httputil.WriteError(ctx, w, err)
			return
		}

		// the id only needs remembering while the token could still verify
		ttl := max(token.ExpiresAt.Sub(requestcontext.Now(ctx)), time.Second)
		fresh, err := g.replay.Consume(ctx, token.ID, ttl)
		if err != nil {
			g.metrics.reject(ReasonUnavailable)
			g.logger.ErrorContext(ctx, "antiforgery replay store failed", "error", err, "request_id", requestID)
			httputil.WriteError(ctx, w, dErrors.Wrap(err, dErrors.CodeUnavailable, "antiforgery check unavailable"))
			return
		}
		if !fresh {
			g.metrics.reject(ReasonReplayed)
			g.logger.WarnContext(ctx, "antiforgery token replayed", "token_id", token.ID.String(), "request_id", requestID)
			httputil.WriteError(ctx, w, dErrors.New(dErrors.CodeForbidden, "antiforgery token already used"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenResponse is the body of GET /antiforgery-token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleIssue mints a token for the next submission.
func (g *Guard) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := g.issuer.Issue(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "issue antiforgery token failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(ctx, w, err)
		return
	}
	if g.metrics != nil {
		g.metrics.Issued.Inc()
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}
