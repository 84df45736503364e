// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
// Usage in services (read values):
//
//	account := requestcontext.AccountID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithAccountID(ctx, "acct-1")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "padron/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	accountIDKey   struct{}
	requestIDKey   struct{}
	channelKey     struct{}
	clientIPKey    struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyAccountID   = accountIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyChannel     = channelKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// AccountID retrieves the authenticated billing account from the context.
// Returns the empty value if not set.
func AccountID(ctx context.Context) id.AccountID {
	if account, ok := ctx.Value(ContextKeyAccountID).(id.AccountID); ok {
		return account
	}
	return ""
}

// WithAccountID injects an account ID into the context.
func WithAccountID(ctx context.Context, account id.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeyAccountID, account)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Channel retrieves the client channel ("web", "mobile", "bot") derived from
// the User-Agent. Used for ledger attribution only.
func Channel(ctx context.Context) string {
	if ch, ok := ctx.Value(ContextKeyChannel).(string); ok {
		return ch
	}
	return ""
}

// WithChannel injects a client channel into the context.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, ContextKeyChannel, channel)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects a client IP into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for tests that need
// deterministic timestamps without the HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
