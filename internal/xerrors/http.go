package xerrors

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/drivehr/jobsync/internal/xhttp"
	"github.com/drivehr/jobsync/internal/xslog"
	go_json "github.com/goccy/go-json"
)

type errorResponse struct {
	Error          string   `json:"error"`
	RetryAfter     *int     `json:"retry_after,omitempty"`
	AllowedMethods []string `json:"allowed_methods,omitempty"`
	Expected       string   `json:"expected,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

// WriteError emits an error response body in the fixed
// {error, ..., timestamp} shape. Error responses are never cacheable.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := As(err)
	if appErr == nil {
		appErr = Internal(WithCause(err))
	}

	logError(ctx, appErr)

	xhttp.SetHeaderContentTypeApplicationJSON(w)
	xhttp.SetHeadersNoCache(w)

	if appErr.RetryAfter > 0 {
		xhttp.SetHeaderRetryAfter(w, appErr.RetryAfter)
	}
	if len(appErr.AllowedMethods) > 0 {
		xhttp.SetHeaderAllow(w, appErr.AllowedMethods...)
	}

	w.WriteHeader(appErr.StatusCode)

	resp := errorResponse{
		Error:          appErr.Message,
		AllowedMethods: appErr.AllowedMethods,
		Expected:       appErr.Expected,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	if appErr.RetryAfter > 0 {
		seconds := int(appErr.RetryAfter.Seconds())
		resp.RetryAfter = &seconds
	}

	_ = go_json.NewEncoder(w).Encode(resp)
}

func logError(ctx context.Context, err *Error) {
	logger := xslog.FromContext(ctx)
	attrs := []any{
		xslog.HTTPStatus(err.StatusCode),
		slog.String("message", err.Message),
	}
	if err.Cause != nil {
		attrs = append(attrs, xslog.Error(err.Cause))
	}

	switch err.StatusCode / 100 {
	case 5:
		logger.ErrorContext(ctx, "server error", attrs...)
	case 4:
		logger.WarnContext(ctx, "client error", attrs...)
	default:
		logger.InfoContext(ctx, "error response", attrs...)
	}
}
