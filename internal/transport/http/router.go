// Package httptransport assembles the public router. Handlers stay thin;
// business logic lives in the query and billing services.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	queryhandler "padron/internal/query/handler"
	"padron/pkg/platform/middleware/auth"
	"padron/pkg/platform/middleware/metadata"
	"padron/pkg/platform/middleware/requestid"
)

// NewRouter wires all public endpoints. Query endpoints require a bearer
// token identifying the billing account; metrics and health stay open.
func NewRouter(queryHandler *queryhandler.Handler, jwtSigningKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(metadata.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAccount(jwtSigningKey, logger))
		queryHandler.Register(r)
	})

	return r
}
