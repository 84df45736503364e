package memory

import (
	"context"
	"sync"

	"padron/internal/billing"
	id "padron/pkg/domain"
)

// LedgerStore is the in-memory ledger, suitable for tests and single-node
// development.
type LedgerStore struct {
	mu      sync.RWMutex
	entries map[id.AccountID][]billing.LedgerEntry
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{entries: make(map[id.AccountID][]billing.LedgerEntry)}
}

func (s *LedgerStore) Append(_ context.Context, entry billing.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.AccountID] = append(s.entries[entry.AccountID], entry)
	return nil
}

func (s *LedgerStore) ListByAccount(_ context.Context, account id.AccountID) ([]billing.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]billing.LedgerEntry{}, s.entries[account]...), nil
}

// UsageStore is the in-memory credit balance store. Unknown accounts are
// seeded lazily with the configured default.
type UsageStore struct {
	mu             sync.Mutex
	snapshots      map[id.AccountID]*billing.UsageSnapshot
	defaultCredits int
	defaultPlan    billing.Plan
}

func NewUsageStore(defaultCredits int, defaultPlan billing.Plan) *UsageStore {
	return &UsageStore{
		snapshots:      make(map[id.AccountID]*billing.UsageSnapshot),
		defaultCredits: defaultCredits,
		defaultPlan:    defaultPlan,
	}
}

// SetUnlimited marks an account as unmetered.
func (s *UsageStore) SetUnlimited(account id.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[account] = &billing.UsageSnapshot{
		AccountID: account,
		Plan:      billing.PlanUnlimited,
	}
}

// SetCredits pins an account's balance, creating the account if needed.
func (s *UsageStore) SetCredits(account id.AccountID, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot(account)
	snap.CreditsRemaining = &credits
}

func (s *UsageStore) Snapshot(_ context.Context, account id.AccountID) (*billing.UsageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snapshot(account)), nil
}

func (s *UsageStore) Consume(_ context.Context, account id.AccountID, count int) (*billing.UsageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot(account)
	if snap.CreditsRemaining != nil {
		remaining := *snap.CreditsRemaining - count
		if remaining < 0 {
			remaining = 0
		}
		snap.CreditsRemaining = &remaining
	}
	return copySnapshot(snap), nil
}

// snapshot returns the mutable entry for an account, seeding defaults.
// Caller must hold mu.
func (s *UsageStore) snapshot(account id.AccountID) *billing.UsageSnapshot {
	if snap, ok := s.snapshots[account]; ok {
		return snap
	}
	snap := &billing.UsageSnapshot{
		AccountID: account,
		Plan:      s.defaultPlan,
	}
	if s.defaultPlan != billing.PlanUnlimited {
		credits := s.defaultCredits
		snap.CreditsRemaining = &credits
	}
	s.snapshots[account] = snap
	return snap
}

func copySnapshot(snap *billing.UsageSnapshot) *billing.UsageSnapshot {
	out := *snap
	if snap.CreditsRemaining != nil {
		credits := *snap.CreditsRemaining
		out.CreditsRemaining = &credits
	}
	return &out
}
