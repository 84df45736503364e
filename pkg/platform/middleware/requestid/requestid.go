// Package requestid assigns a request ID and a receipt timestamp to every
// inbound request so logs and ledger entries correlate across layers.
package requestid

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"padron/pkg/requestcontext"
)

// Header carries the request ID back to the caller.
const Header = "X-Request-ID"

// Middleware honors a caller-provided request ID and generates one otherwise.
// The receipt time is stamped once here so every layer handling the request
// sees the same instant.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
