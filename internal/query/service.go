// Package query implements the orchestration engine: it fans user queries
// out to upstream registry services, normalizes and enriches the responses,
// short-circuits repeats through the per-service cache, enforces the credit
// gate, and records every transport attempt in the billing ledger.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"padron/internal/billing"
	"padron/internal/query/enrich"
	"padron/internal/query/metrics"
	"padron/internal/query/models"
	"padron/internal/query/store"
	"padron/internal/registry"
	"padron/internal/transport/upstream"
	id "padron/pkg/domain"
	dErrors "padron/pkg/domain-errors"
	"padron/pkg/platform/sentinel"
	"padron/pkg/requestcontext"
)

// Candidate keys under which upstreams embed their free-text result blob.
var rawTextKeys = []string{"data", "raw", "texto", "detalle", "resultado"}

// maxLedgerBody caps the raw response stored per ledger entry.
const maxLedgerBody = 4096

// Billing is the slice of the billing collaborator the orchestrator needs.
type Billing interface {
	RecordAttempt(ctx context.Context, entry billing.LedgerEntry)
	Snapshot(ctx context.Context, account id.AccountID) (*billing.UsageSnapshot, error)
}

// IssueOptions controls a single query.
type IssueOptions struct {
	// Force bypasses the result cache and always re-executes the call.
	Force bool
}

// Service is the query orchestrator.
type Service struct {
	registry  *registry.Registry
	store     *store.MemoryStore
	transport upstream.Client
	billing   Billing
	enricher  *enrich.Enricher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	mu    sync.RWMutex
	usage map[id.AccountID]*billing.UsageSnapshot
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEnricher(e *enrich.Enricher) Option {
	return func(s *Service) {
		s.enricher = e
	}
}

func New(reg *registry.Registry, stateStore *store.MemoryStore, transport upstream.Client, billingSvc Billing, opts ...Option) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if stateStore == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if billingSvc == nil {
		return nil, fmt.Errorf("billing service is required")
	}

	svc := &Service{
		registry:  reg,
		store:     stateStore,
		transport: transport,
		billing:   billingSvc,
		tracer:    otel.Tracer("padron/query"),
		usage:     make(map[id.AccountID]*billing.UsageSnapshot),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Issue runs one query against one service. Validation failures and credit
// gate blocks abort before any state transition or network attempt and are
// never ledgered. Upstream failures settle into the QueryState's error and
// are always ledgered; the returned error stays nil so callers read the
// outcome from the state, deciding themselves whether to retry with Force.
func (s *Service) Issue(ctx context.Context, serviceID id.ServiceID, value string, opts IssueOptions) (models.QueryState, error) {
	desc, ok := s.registry.Lookup(serviceID)
	if !ok {
		return models.QueryState{}, dErrors.New(dErrors.CodeInternal, "unknown service id: "+serviceID.String())
	}

	ctx, span := s.tracer.Start(ctx, "query.issue",
		trace.WithAttributes(
			attribute.String("query.service", serviceID.String()),
			attribute.Bool("query.force", opts.Force),
		),
	)
	defer span.End()

	normalized, err := id.ParseValue(desc.Field, value)
	if err != nil {
		return models.QueryState{}, err
	}

	account := requestcontext.AccountID(ctx)
	snapshot, err := s.snapshot(ctx, account)
	if err != nil {
		return models.QueryState{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read usage snapshot")
	}
	if !billing.MayProceed(snapshot) {
		if s.metrics != nil {
			s.metrics.ObserveGateBlocked()
		}
		return models.QueryState{}, dErrors.New(dErrors.CodeQuotaExceeded, "query credits exhausted")
	}

	begin, err := s.store.Begin(serviceID, normalized, opts.Force)
	if err != nil {
		if errors.Is(err, sentinel.ErrInFlight) {
			return s.store.Get(serviceID), dErrors.New(dErrors.CodeConflict, "query already in flight for "+serviceID.String())
		}
		return models.QueryState{}, dErrors.Wrap(err, dErrors.CodeInternal, "state transition failed")
	}
	if begin.CacheHit {
		if s.metrics != nil {
			s.metrics.ObserveCacheHit()
		}
		return begin.State, nil
	}

	s.execute(ctx, desc, normalized, account)
	return s.store.Get(serviceID), nil
}

// execute performs the transport call for an already-loading service id,
// settles the state machine, and unconditionally ledgers the attempt.
func (s *Service) execute(ctx context.Context, desc registry.Descriptor, value string, account id.AccountID) {
	start := time.Now()
	resp, err := s.transport.Post(ctx, desc.Endpoint, desc.Field, value)
	duration := time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveUpstreamLatency(desc.ID.String(), duration)
	}

	entry := billing.LedgerEntry{
		AccountID:  account,
		ServiceID:  desc.ID,
		QueryValue: value,
		Endpoint:   desc.Endpoint,
		Channel:    requestcontext.Channel(ctx),
		Duration:   duration,
	}

	switch {
	case err != nil:
		message := "upstream call failed: " + err.Error()
		_ = s.store.Reject(desc.ID, message)
		entry.Success = false
		entry.ErrorCode = "transport_error"
		entry.Summary = message
		if s.metrics != nil {
			s.metrics.ObserveQuery(desc.ID.String(), "error")
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "upstream call failed",
				"service_id", desc.ID,
				"error", err,
			)
		}

	case !resp.OK():
		message := upstreamErrorMessage(resp)
		_ = s.store.Reject(desc.ID, message)
		entry.Success = false
		entry.ErrorCode = fmt.Sprintf("http_%d", resp.StatusCode)
		entry.RawResponse = clip(resp.Body, maxLedgerBody)
		entry.Summary = message
		if s.metrics != nil {
			s.metrics.ObserveQuery(desc.ID.String(), "error")
		}

	default:
		rawText := resp.Payload.FirstString(rawTextKeys...)
		var record *models.Record
		if desc.Normalize != nil {
			record = desc.Normalize(rawText, resp.Payload)
		}
		if record != nil && record.Ownership != nil && s.enricher != nil {
			record.Ownership = s.enricher.Enrich(ctx, record.Ownership)
		}
		_ = s.store.Resolve(desc.ID, record, resp.Body, resp.Payload, time.Now())
		entry.Success = true
		entry.RawResponse = clip(resp.Body, maxLedgerBody)
		entry.Summary = summarize(desc.ID, record)
		if s.metrics != nil {
			s.metrics.ObserveQuery(desc.ID.String(), "success")
		}
	}

	s.billing.RecordAttempt(ctx, entry)
	s.refreshUsage(ctx, account)
}

// IssueAll fans one query out to every service in a scope, forced so each
// service re-executes. Services fail independently: one upstream error never
// cancels or fails the rest. The returned map reflects each service's
// settled state.
func (s *Service) IssueAll(ctx context.Context, scope id.Scope, value string) (map[id.ServiceID]models.QueryState, error) {
	descriptors := s.registry.ByScope(scope)
	if len(descriptors) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no services registered for scope "+string(scope))
	}

	// All services in a scope share a query field; validate once up front.
	if _, err := id.ParseValue(descriptors[0].Field, value); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "query.issue_all",
		trace.WithAttributes(
			attribute.String("query.scope", string(scope)),
			attribute.Int("query.fanout", len(descriptors)),
		),
	)
	defer span.End()

	var mu sync.Mutex
	results := make(map[id.ServiceID]models.QueryState, len(descriptors))

	g := new(errgroup.Group)
	for _, desc := range descriptors {
		g.Go(func() error {
			state, err := s.Issue(ctx, desc.ID, value, IssueOptions{Force: true})
			if err != nil {
				// Gate blocks and in-flight conflicts leave the stored
				// state untouched; report whatever the store holds.
				state = s.store.Get(desc.ID)
				if s.logger != nil {
					s.logger.WarnContext(ctx, "batch query item failed",
						"service_id", desc.ID,
						"error", err,
					)
				}
			}
			mu.Lock()
			results[desc.ID] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// State returns the current query state for a service id without blocking.
func (s *Service) State(serviceID id.ServiceID) (models.QueryState, error) {
	if _, ok := s.registry.Lookup(serviceID); !ok {
		return models.QueryState{}, dErrors.New(dErrors.CodeNotFound, "unknown service id: "+serviceID.String())
	}
	return s.store.Get(serviceID), nil
}

// Usage returns the usage snapshot for the calling account, preferring the
// copy refreshed after the last ledger write.
func (s *Service) Usage(ctx context.Context) (*billing.UsageSnapshot, error) {
	account := requestcontext.AccountID(ctx)
	return s.snapshot(ctx, account)
}

// snapshot reads the cached usage view for an account, falling back to the
// billing collaborator on first contact.
func (s *Service) snapshot(ctx context.Context, account id.AccountID) (*billing.UsageSnapshot, error) {
	s.mu.RLock()
	cached, ok := s.usage[account]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return s.fetchUsage(ctx, account)
}

// refreshUsage re-reads the snapshot after a ledger write so the next gate
// check sees the spent credit.
func (s *Service) refreshUsage(ctx context.Context, account id.AccountID) {
	if _, err := s.fetchUsage(ctx, account); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to refresh usage snapshot",
			"account_id", account,
			"error", err,
		)
	}
}

func (s *Service) fetchUsage(ctx context.Context, account id.AccountID) (*billing.UsageSnapshot, error) {
	snapshot, err := s.billing.Snapshot(ctx, account)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.usage[account] = snapshot
	s.mu.Unlock()
	return snapshot, nil
}

func upstreamErrorMessage(resp *upstream.Response) string {
	message := fmt.Sprintf("upstream returned status %d", resp.StatusCode)
	if body := strings.TrimSpace(resp.Body); body != "" {
		message += ": " + clip(body, 200)
	}
	return message
}

// summarize builds the human-readable ledger line for a settled result.
func summarize(serviceID id.ServiceID, record *models.Record) string {
	if record == nil {
		return serviceID.String() + ": no usable data"
	}
	switch record.Category {
	case models.CategoryInsurance:
		return strings.TrimSpace(fmt.Sprintf("%s: %s %s", serviceID, record.Insurance.Company, record.Insurance.Status))
	case models.CategoryInspection:
		return strings.TrimSpace(fmt.Sprintf("%s: %s", serviceID, record.Inspection.Status))
	case models.CategoryOwnership:
		return fmt.Sprintf("%s: %d owner(s)", serviceID, len(record.Ownership.Owners))
	case models.CategoryLicense:
		return strings.TrimSpace(fmt.Sprintf("%s: %s %s", serviceID, record.License.Class, record.License.Status))
	case models.CategoryIdentity:
		return strings.TrimSpace(fmt.Sprintf("%s: %s", serviceID, record.Identity.ComposedName()))
	case models.CategoryDebt:
		if record.Debt.Total != nil {
			return fmt.Sprintf("%s: total %.2f", serviceID, *record.Debt.Total)
		}
		return fmt.Sprintf("%s: %d record(s)", serviceID, len(record.Debt.Items))
	}
	return serviceID.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
