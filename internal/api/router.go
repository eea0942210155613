// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cryptonel-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(transferHandler *handler.TransferHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(newIPThrottle(10, 20).Handler)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Wallet API routes
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{userID}/balance", transferHandler.GetBalance)
		r.Get("/{userID}/address", transferHandler.GetAddress)
		r.Get("/{userID}/transactions", transferHandler.GetHistory)
	})

	// Transfers move funds between two accounts, so they get their own
	// top-level endpoints.
	r.Post("/transfers", transferHandler.Transfer)
	r.Post("/transfers/quote", transferHandler.QuoteFee)

	return r
}
