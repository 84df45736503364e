// Package billing owns credit metering and the append-only query ledger.
// The orchestrator records every transport attempt here and reads usage
// snapshots for the pre-flight credit gate.
package billing

import (
	"time"

	"github.com/google/uuid"

	id "padron/pkg/domain"
)

// Plan is the commercial plan attached to an account.
type Plan string

const (
	PlanFree      Plan = "free"
	PlanStandard  Plan = "standard"
	PlanUnlimited Plan = "unlimited"
)

// UsageSnapshot is a point-in-time view of an account's metering balance.
// A nil CreditsRemaining means the account is unmetered.
type UsageSnapshot struct {
	AccountID        id.AccountID `json:"account_id"`
	CreditsRemaining *int         `json:"credits_remaining,omitempty"`
	Plan             Plan         `json:"plan"`
	ValidUntil       *time.Time   `json:"valid_until,omitempty"`
}

// LedgerEntry records one query attempt, success or failure. Entries are
// write-only: nothing in this service mutates or deletes them.
type LedgerEntry struct {
	ID          uuid.UUID     `json:"id"`
	AccountID   id.AccountID  `json:"account_id"`
	ServiceID   id.ServiceID  `json:"service_id"`
	QueryValue  string        `json:"query_value"`
	Endpoint    string        `json:"endpoint"`
	RawResponse string        `json:"raw_response,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Success     bool          `json:"success"`
	ErrorCode   string        `json:"error_code,omitempty"`
	Channel     string        `json:"channel,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	CreatedAt   time.Time     `json:"created_at"`
}
