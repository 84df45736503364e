package auth

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "padron/pkg/domain"
	"padron/pkg/requestcontext"
	"padron/pkg/testutil"
)

const signingKey = "test-signing-key"

func signToken(t *testing.T, claims jwt.MapClaims, key string, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func protected(captured *id.AccountID) http.Handler {
	mw := RequireAccount(signingKey, slog.New(slog.DiscardHandler))
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = requestcontext.AccountID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAccount(t *testing.T) {
	t.Run("valid token injects account", func(t *testing.T) {
		var got id.AccountID
		token := signToken(t, jwt.MapClaims{
			"sub": "acct-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, signingKey, jwt.SigningMethodHS256)

		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, id.AccountID("acct-42"), got)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		var got id.AccountID
		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		testutil.AssertJSONContains(t, rr, "error_description", "missing or invalid Authorization header")
	})

	t.Run("malformed scheme rejected", func(t *testing.T) {
		var got id.AccountID
		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		var got id.AccountID
		token := signToken(t, jwt.MapClaims{"sub": "acct-42"}, "otra-clave", jwt.SigningMethodHS256)

		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		testutil.AssertJSONContains(t, rr, "error_description", "invalid or expired token")
	})

	t.Run("expired token rejected", func(t *testing.T) {
		var got id.AccountID
		token := signToken(t, jwt.MapClaims{
			"sub": "acct-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, signingKey, jwt.SigningMethodHS256)

		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("token without subject rejected", func(t *testing.T) {
		var got id.AccountID
		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, signingKey, jwt.SigningMethodHS256)

		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(protected(&got), req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}
