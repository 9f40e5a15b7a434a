// Package server assembles the HTTP surface of the sync service.
package server

import (
	"log/slog"
	"net/http"

	"github.com/drivehr/jobsync/internal/server/handler"
	"github.com/drivehr/jobsync/internal/xhttp/middleware"
)

// New builds the root handler. The webhook handler is mounted only on
// its fixed path; requests anywhere else fall through to the mux 404 and
// never touch the sync pipeline.
func New(logger *slog.Logger, webhookPath string, webhookHandler *handler.Webhook) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(webhookPath, webhookHandler.HandleSync)
	mux.HandleFunc("GET /health", handler.HandleHealth)

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.Logging,
		middleware.Logger(logger),
		middleware.RequestID(),
		middleware.SecurityHeaders,
	)
}
