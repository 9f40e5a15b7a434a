package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/drivehr/jobsync/internal/metrics"
	"github.com/drivehr/jobsync/internal/ratelimit"
	"github.com/drivehr/jobsync/internal/reconcile"
	"github.com/drivehr/jobsync/internal/webhook"
	"github.com/drivehr/jobsync/internal/xerrors"
	"github.com/drivehr/jobsync/internal/xhttp"
	"github.com/drivehr/jobsync/internal/xslog"
	go_json "github.com/goccy/go-json"
)

// Webhook bodies above this size are rejected before JSON decoding.
const maxBodyBytes = 1 << 20

// Reconciler is the reconciliation engine as seen by the endpoint.
type Reconciler interface {
	Reconcile(ctx context.Context, rawJobs []go_json.RawMessage) (*reconcile.Result, error)
}

type WebhookConfig struct {
	Enabled         bool
	RateLimitWindow time.Duration
}

// Webhook drives one sync request through its checks in fixed order:
// service enabled, method, rate limit, signature, body parse, payload
// shape, reconcile. The first failing check responds and stops.
type Webhook struct {
	cfg       WebhookConfig
	limiter   ratelimit.Limiter
	verifier  *webhook.Verifier
	validator *webhook.PayloadValidator
	engine    Reconciler
}

func NewWebhook(cfg WebhookConfig, limiter ratelimit.Limiter, verifier *webhook.Verifier, validator *webhook.PayloadValidator, engine Reconciler) *Webhook {
	return &Webhook{
		cfg:       cfg,
		limiter:   limiter,
		verifier:  verifier,
		validator: validator,
		engine:    engine,
	}
}

// HandleSync handles POST requests on the fixed webhook path.
func (h *Webhook) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	if !h.cfg.Enabled {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeDisabled).Inc()
		xerrors.WriteError(ctx, w, xerrors.ServiceUnavailable(xerrors.WithMessage("webhook sync is disabled")))
		return
	}

	if r.Method != http.MethodPost {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeBadMethod).Inc()
		xerrors.WriteError(ctx, w, xerrors.MethodNotAllowed(
			xerrors.WithMessage("method not allowed"),
			xerrors.WithAllowedMethods(http.MethodPost),
		))
		return
	}

	ip := xhttp.ClientIP(r)
	allowed, err := h.limiter.Allow(ctx, ip)
	if err != nil {
		logger.ErrorContext(ctx, "rate limit check failed", xslog.Error(err), xslog.IP(ip))
		xerrors.WriteError(ctx, w, xerrors.ServiceUnavailable(xerrors.WithMessage("rate limit check failed")))
		return
	}
	if !allowed {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		xerrors.WriteError(ctx, w, xerrors.TooManyRequests(
			xerrors.WithMessage("rate limit exceeded"),
			xerrors.WithRetryAfter(h.cfg.RateLimitWindow),
		))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("failed to read request body")))
		return
	}

	// No detail beyond "unauthorized": distinguishing the failing check
	// would give an oracle to attackers probing the verifier.
	if !h.verifier.Verify(body, r.Header.Get(webhook.HeaderSignature), r.Header.Get(webhook.HeaderTimestamp)) {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		logger.WarnContext(ctx, "webhook signature rejected", xslog.IP(ip))
		xerrors.WriteError(ctx, w, xerrors.Unauthorized())
		return
	}

	var decoded any
	if err := go_json.Unmarshal(body, &decoded); err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeBadPayload).Inc()
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("request body is not valid JSON")))
		return
	}

	if result := h.validator.Validate(decoded); !result.OK {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeBadPayload).Inc()
		xerrors.WriteError(ctx, w, xerrors.BadRequest(
			xerrors.WithMessage(result.Reason),
			xerrors.WithExpected(webhook.ExpectedShape),
		))
		return
	}

	var payload struct {
		Jobs []go_json.RawMessage `json:"jobs"`
	}
	if err := go_json.Unmarshal(body, &payload); err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeBadPayload).Inc()
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("request body is not valid JSON")))
		return
	}

	start := time.Now()
	result, err := h.engine.Reconcile(ctx, payload.Jobs)
	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeBatchError).Inc()
		logger.ErrorContext(ctx, "reconciliation failed", xslog.Error(err), xslog.Count(len(payload.Jobs)))
		xerrors.WriteError(ctx, w, xerrors.Internal(
			xerrors.WithMessage("failed to process jobs"),
			xerrors.WithCause(err),
		))
		return
	}

	metrics.WebhookRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ListingsCreated.Add(float64(result.Processed))
	metrics.ListingsUpdated.Add(float64(result.Updated))
	metrics.ListingsSkipped.Add(float64(result.Skipped))
	metrics.ListingsRemoved.Add(float64(result.Removed))

	logger.InfoContext(ctx, "sync batch processed",
		xslog.Source(result.Source),
		xslog.Created(result.Processed),
		xslog.Updated(result.Updated),
		xslog.Skipped(result.Skipped),
		xslog.Removed(result.Removed),
	)

	xhttp.WriteOK(w, result)
}
