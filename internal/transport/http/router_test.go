package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padron/internal/billing"
	billingmemory "padron/internal/billing/store/memory"
	"padron/internal/query"
	queryhandler "padron/internal/query/handler"
	querystore "padron/internal/query/store"
	"padron/internal/registry"
	"padron/internal/transport/upstream"
	id "padron/pkg/domain"
	"padron/pkg/testutil"
)

const signingKey = "router-test-key"

// noCallClient fails the test if any upstream call is attempted.
type noCallClient struct{ t *testing.T }

func (c noCallClient) Post(context.Context, string, id.QueryField, string) (*upstream.Response, error) {
	c.t.Fatal("unexpected upstream call")
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reg, err := registry.Default(registry.Endpoints{})
	require.NoError(t, err)

	billingSvc, err := billing.New(
		billingmemory.NewLedgerStore(),
		billingmemory.NewUsageStore(10, billing.PlanStandard),
	)
	require.NoError(t, err)

	svc, err := query.New(reg, querystore.New(), noCallClient{t: t}, billingSvc)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	return NewRouter(queryhandler.New(svc, logger), signingKey, logger)
}

func bearerToken(t *testing.T, account string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": account,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return token
}

func TestRouter_OpenEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("healthz", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRouter_QueryEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	t.Run("no token rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/soat", map[string]string{"value": "ABC123"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("usage requires token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/usage"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/usage")
		req.Header.Set("Authorization", "Bearer "+bearerToken(t, "acct-1"))
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "plan", "standard")
	})

	t.Run("request id echoed back", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/healthz")
		req.Header.Set("X-Request-ID", "req-77")
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, "req-77", rr.Header().Get("X-Request-ID"))
	})
}
