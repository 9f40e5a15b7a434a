package middleware

import (
	"log/slog"
	"net/http"

	"github.com/drivehr/jobsync/internal/xslog"
)

// Logger injects the process logger into the request context so
// downstream packages can use xslog.FromContext.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xslog.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
