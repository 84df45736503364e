package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	id "padron/pkg/domain"
	"padron/pkg/requestcontext"
)

// LedgerStore persists query attempts. Append-only.
type LedgerStore interface {
	Append(ctx context.Context, entry LedgerEntry) error
	ListByAccount(ctx context.Context, account id.AccountID) ([]LedgerEntry, error)
}

// UsageStore tracks per-account credit balances.
type UsageStore interface {
	Snapshot(ctx context.Context, account id.AccountID) (*UsageSnapshot, error)
	Consume(ctx context.Context, account id.AccountID, count int) (*UsageSnapshot, error)
}

// Publisher streams ledger entries to the reconciliation pipeline.
type Publisher interface {
	Publish(ctx context.Context, entry LedgerEntry) error
}

// Service is the billing collaborator: it owns ledger writes, credit
// consumption, and usage snapshots.
type Service struct {
	ledger    LedgerStore
	usage     UsageStore
	publisher Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func New(ledger LedgerStore, usage UsageStore, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if usage == nil {
		return nil, fmt.Errorf("usage store is required")
	}

	svc := &Service{
		ledger: ledger,
		usage:  usage,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// RecordAttempt writes one ledger entry and consumes one credit. It never
// fails the caller: persistence errors are logged and swallowed, because a
// ledger outage must not take down query handling. Reconciliation catches
// gaps from the Kafka stream.
func (s *Service) RecordAttempt(ctx context.Context, entry LedgerEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = requestcontext.Now(ctx)
	}

	if err := s.ledger.Append(ctx, entry); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to append ledger entry",
			"entry_id", entry.ID,
			"account_id", entry.AccountID,
			"service_id", entry.ServiceID,
			"error", err,
		)
	}

	if _, err := s.usage.Consume(ctx, entry.AccountID, 1); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to consume credit",
			"account_id", entry.AccountID,
			"error", err,
		)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, entry); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to publish ledger entry",
				"entry_id", entry.ID,
				"error", err,
			)
		}
	}
}

// Snapshot returns the current usage view for an account.
func (s *Service) Snapshot(ctx context.Context, account id.AccountID) (*UsageSnapshot, error) {
	return s.usage.Snapshot(ctx, account)
}

// Ledger returns the recorded attempts for an account, newest last.
func (s *Service) Ledger(ctx context.Context, account id.AccountID) ([]LedgerEntry, error) {
	return s.ledger.ListByAccount(ctx, account)
}
