// Package metadata extracts client attribution (IP, channel) from the
// request so ledger entries can say where a query came from.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"padron/pkg/requestcontext"
)

// Channels recorded on ledger entries.
const (
	ChannelWeb    = "web"
	ChannelMobile = "mobile"
	ChannelBot    = "bot"
	ChannelAPI    = "api"
)

// Middleware classifies the User-Agent into a coarse channel and records the
// client IP. Attribution only; never used for authorization decisions.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithChannel(ctx, classify(r.Header.Get("User-Agent")))
		ctx = requestcontext.WithClientIP(ctx, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func classify(rawUA string) string {
	if rawUA == "" {
		return ChannelAPI
	}
	ua := useragent.New(rawUA)
	switch {
	case ua.Bot():
		return ChannelBot
	case ua.Mobile():
		return ChannelMobile
	}
	if name, _ := ua.Browser(); name != "" {
		return ChannelWeb
	}
	return ChannelAPI
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the original client.
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
