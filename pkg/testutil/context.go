package testutil

import (
	"net/http"

	id "padron/pkg/domain"
	"padron/pkg/requestcontext"
)

// WithAccount adds a billing account ID to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithAccount(req *http.Request, accountID string) *http.Request {
	ctx := requestcontext.WithAccountID(req.Context(), id.AccountID(accountID))
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}
