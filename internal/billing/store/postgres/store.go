// Package postgres persists the query ledger in PostgreSQL. Entries are
// append-only; reconciliation reads them by account.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padron/internal/billing"
	id "padron/pkg/domain"
)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Migrate creates the ledger table when missing. Kept here rather than in a
// migration tool because the schema is a single append-only table.
func (s *LedgerStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS query_ledger (
			id UUID PRIMARY KEY,
			account_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			query_value TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			raw_response TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			success BOOLEAN NOT NULL,
			error_code TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS query_ledger_account_idx
			ON query_ledger (account_id, created_at);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate query ledger: %w", err)
	}
	return nil
}

func (s *LedgerStore) Append(ctx context.Context, entry billing.LedgerEntry) error {
	query := `
		INSERT INTO query_ledger (
			id, account_id, service_id, query_value, endpoint,
			raw_response, summary, success, error_code, channel,
			duration_ms, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.AccountID),
		string(entry.ServiceID),
		entry.QueryValue,
		entry.Endpoint,
		entry.RawResponse,
		entry.Summary,
		entry.Success,
		entry.ErrorCode,
		entry.Channel,
		entry.Duration.Milliseconds(),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerStore) ListByAccount(ctx context.Context, account id.AccountID) ([]billing.LedgerEntry, error) {
	query := `
		SELECT id, account_id, service_id, query_value, endpoint,
		       raw_response, summary, success, error_code, channel,
		       duration_ms, created_at
		FROM query_ledger
		WHERE account_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(account))
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []billing.LedgerEntry
	for rows.Next() {
		var (
			entry      billing.LedgerEntry
			accountID  string
			serviceID  string
			durationMS int64
		)
		err := rows.Scan(
			&entry.ID,
			&accountID,
			&serviceID,
			&entry.QueryValue,
			&entry.Endpoint,
			&entry.RawResponse,
			&entry.Summary,
			&entry.Success,
			&entry.ErrorCode,
			&entry.Channel,
			&durationMS,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entry.AccountID = id.AccountID(accountID)
		entry.ServiceID = id.ServiceID(serviceID)
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
