package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padron/internal/billing"
	"padron/internal/query"
	"padron/internal/query/handler"
	"padron/internal/query/models"
	id "padron/pkg/domain"
	dErrors "padron/pkg/domain-errors"
	"padron/pkg/testutil"
)

// stubService records calls and returns canned results.
type stubService struct {
	issueState    models.QueryState
	issueErr      error
	issueCalls    []issueCall
	issueAllState map[id.ServiceID]models.QueryState
	issueAllErr   error
	stateErr      error
	usage         *billing.UsageSnapshot
	usageErr      error
}

type issueCall struct {
	serviceID id.ServiceID
	value     string
	force     bool
}

func (s *stubService) Issue(_ context.Context, serviceID id.ServiceID, value string, opts query.IssueOptions) (models.QueryState, error) {
	s.issueCalls = append(s.issueCalls, issueCall{serviceID: serviceID, value: value, force: opts.Force})
	return s.issueState, s.issueErr
}

func (s *stubService) IssueAll(context.Context, id.Scope, string) (map[id.ServiceID]models.QueryState, error) {
	return s.issueAllState, s.issueAllErr
}

func (s *stubService) State(id.ServiceID) (models.QueryState, error) {
	return s.issueState, s.stateErr
}

func (s *stubService) Usage(context.Context) (*billing.UsageSnapshot, error) {
	return s.usage, s.usageErr
}

func newRouter(svc *stubService) http.Handler {
	h := handler.New(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func settledState() models.QueryState {
	return models.QueryState{
		Record: &models.Record{
			Category:  models.CategoryInsurance,
			Insurance: &models.InsuranceRecord{Company: "MAPFRE", Status: "Vigente"},
		},
		LastValue: "ABC123",
		FetchedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleIssue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubService{issueState: settledState()}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/soat", handler.IssueRequest{Value: "ABC123", Force: true})
		rr := testutil.DoRequest(router, testutil.WithAccount(req, "acct-1"))

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "last_value", "ABC123")

		require.Len(t, svc.issueCalls, 1)
		assert.Equal(t, id.ServiceID("soat"), svc.issueCalls[0].serviceID)
		assert.Equal(t, "ABC123", svc.issueCalls[0].value)
		assert.True(t, svc.issueCalls[0].force)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &stubService{}
		router := newRouter(svc)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/query/soat", "{not json")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
		assert.Empty(t, svc.issueCalls)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := &stubService{issueErr: dErrors.New(dErrors.CodeBadRequest, "plate must have exactly 6 alphanumeric characters")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/soat", handler.IssueRequest{Value: "X"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("exhausted credits map to 402", func(t *testing.T) {
		svc := &stubService{issueErr: dErrors.New(dErrors.CodeQuotaExceeded, "query credits exhausted")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/soat", handler.IssueRequest{Value: "ABC123"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusPaymentRequired, "quota_exceeded")
	})

	t.Run("in-flight conflict maps to 409", func(t *testing.T) {
		svc := &stubService{issueErr: dErrors.New(dErrors.CodeConflict, "query already in flight for soat")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/soat", handler.IssueRequest{Value: "ABC123"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func TestIssueLifecycle(t *testing.T) {
	svc := &stubService{issueState: settledState()}
	router := newRouter(svc)

	testutil.Given(t, "an authenticated account", func(t *testing.T) {
		body := testutil.MustMarshal(t, handler.IssueRequest{Value: "ABC123"})
		req := testutil.WithAccount(testutil.NewRequestWithBody(t, http.MethodPost, "/query/soat", body), "acct-1")

		testutil.When(t, "it queries the insurance service", func(t *testing.T) {
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the settled record comes back", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONHasKey(t, rr, "record")
				testutil.AssertJSONContains(t, rr, "last_value", "ABC123")
			})
		})
	})
}

func TestHandleIssueAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubService{issueAllState: map[id.ServiceID]models.QueryState{
			"soat":     settledState(),
			"revision": {Error: "upstream returned status 500"},
		}}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/vehicle/all", handler.IssueRequest{Value: "ABC123"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		results := testutil.UnmarshalResponse[map[string]models.QueryState](t, rr)
		assert.Len(t, *results, 2)
		assert.NotNil(t, (*results)["soat"].Record)
		assert.NotEmpty(t, (*results)["revision"].Error)
	})

	t.Run("unknown scope maps to 400", func(t *testing.T) {
		svc := &stubService{}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/query/fleet/all", handler.IssueRequest{Value: "ABC123"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestHandleState(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubService{issueState: settledState()}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/query/soat/state"))

		testutil.AssertStatusOK(t, rr)
		state := testutil.UnmarshalResponse[models.QueryState](t, rr)
		require.NotNil(t, state.Record)
		assert.Equal(t, "MAPFRE", state.Record.Insurance.Company)
	})

	t.Run("unknown service maps to 404", func(t *testing.T) {
		svc := &stubService{stateErr: dErrors.New(dErrors.CodeNotFound, "unknown service id: nadie")}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/query/nadie/state"))

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestHandleUsage(t *testing.T) {
	credits := 7
	svc := &stubService{usage: &billing.UsageSnapshot{
		AccountID:        "acct-1",
		CreditsRemaining: &credits,
		Plan:             billing.PlanStandard,
	}}
	router := newRouter(svc)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/usage"))

	testutil.AssertStatusOK(t, rr)
	snap := testutil.UnmarshalResponse[billing.UsageSnapshot](t, rr)
	require.NotNil(t, snap.CreditsRemaining)
	assert.Equal(t, 7, *snap.CreditsRemaining)
	assert.Equal(t, billing.PlanStandard, snap.Plan)
}
