package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"padron/pkg/requestcontext"
)

func capture(r *http.Request) (channel, ip string) {
	var gotChannel, gotIP string
	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotChannel = requestcontext.Channel(r.Context())
		gotIP = requestcontext.ClientIP(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return gotChannel, gotIP
}

func TestMiddleware_Channel(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name:      "desktop browser",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			want:      ChannelWeb,
		},
		{
			name:      "mobile browser",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want:      ChannelMobile,
		},
		{
			name:      "crawler",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want:      ChannelBot,
		},
		{
			name:      "no user agent",
			userAgent: "",
			want:      ChannelAPI,
		},
		{
			name:      "programmatic client",
			userAgent: "curl/8.4.0",
			want:      ChannelAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}
			channel, _ := capture(req)
			assert.Equal(t, tt.want, channel)
		})
	}
}

func TestMiddleware_ClientIP(t *testing.T) {
	t.Run("remote addr host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:43210"
		_, ip := capture(req)
		assert.Equal(t, "10.0.0.9", ip)
	})

	t.Run("forwarded-for first hop wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 10.0.0.2")
		_, ip := capture(req)
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("single forwarded-for", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		_, ip := capture(req)
		assert.Equal(t, "203.0.113.7", ip)
	})
}
