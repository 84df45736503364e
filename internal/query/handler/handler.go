package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"padron/internal/billing"
	"padron/internal/query"
	"padron/internal/query/models"
	id "padron/pkg/domain"
	"padron/pkg/platform/httputil"
	"padron/pkg/requestcontext"
)

// Service defines the query operations the HTTP layer exposes.
type Service interface {
	Issue(ctx context.Context, serviceID id.ServiceID, value string, opts query.IssueOptions) (models.QueryState, error)
	IssueAll(ctx context.Context, scope id.Scope, value string) (map[id.ServiceID]models.QueryState, error)
	State(serviceID id.ServiceID) (models.QueryState, error)
	Usage(ctx context.Context) (*billing.UsageSnapshot, error)
}

// Handler wires query endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts query endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/query/{service}", h.HandleIssue)
	r.Post("/query/{scope}/all", h.HandleIssueAll)
	r.Get("/query/{service}/state", h.HandleState)
	r.Get("/usage", h.HandleUsage)
}

// IssueRequest is the body for single and batch queries.
type IssueRequest struct {
	Value string `json:"value"`
	Force bool   `json:"force,omitempty"`
}

// HandleIssue handles POST /query/{service}.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	serviceID := id.ServiceID(chi.URLParam(r, "service"))
	state, err := h.service.Issue(ctx, serviceID, req.Value, query.IssueOptions{Force: req.Force})
	if err != nil {
		h.logger.WarnContext(ctx, "query issue rejected",
			"request_id", requestID,
			"service_id", serviceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleIssueAll handles POST /query/{scope}/all.
func (h *Handler) HandleIssueAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	scope, err := id.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	states, err := h.service.IssueAll(ctx, scope, req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "batch query rejected",
			"request_id", requestID,
			"scope", scope,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, states)
}

// HandleState handles GET /query/{service}/state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	serviceID := id.ServiceID(chi.URLParam(r, "service"))
	state, err := h.service.State(serviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleUsage handles GET /usage.
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Usage(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshot)
}
