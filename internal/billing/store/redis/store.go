// Package redis keeps per-account credit balances in Redis so multiple
// gateway instances meter against the same pool.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"padron/internal/billing"
	id "padron/pkg/domain"
)

// unlimitedCredits marks an unmetered account in storage; it maps to a nil
// CreditsRemaining in snapshots.
const unlimitedCredits = -1

type UsageStore struct {
	client         redis.UniversalClient
	defaultCredits int
	defaultPlan    billing.Plan
}

func NewUsageStore(client redis.UniversalClient, defaultCredits int, defaultPlan billing.Plan) *UsageStore {
	return &UsageStore{
		client:         client,
		defaultCredits: defaultCredits,
		defaultPlan:    defaultPlan,
	}
}

func usageKey(account id.AccountID) string {
	return "padron:usage:" + string(account)
}

// seed initializes the account hash on first contact. HSetNX keeps the
// operation idempotent across concurrent instances.
func (s *UsageStore) seed(ctx context.Context, account id.AccountID) error {
	key := usageKey(account)
	credits := s.defaultCredits
	if s.defaultPlan == billing.PlanUnlimited {
		credits = unlimitedCredits
	}
	if err := s.client.HSetNX(ctx, key, "credits", credits).Err(); err != nil {
		return fmt.Errorf("seed credits: %w", err)
	}
	if err := s.client.HSetNX(ctx, key, "plan", string(s.defaultPlan)).Err(); err != nil {
		return fmt.Errorf("seed plan: %w", err)
	}
	return nil
}

func (s *UsageStore) Snapshot(ctx context.Context, account id.AccountID) (*billing.UsageSnapshot, error) {
	if err := s.seed(ctx, account); err != nil {
		return nil, err
	}

	values, err := s.client.HGetAll(ctx, usageKey(account)).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage hash: %w", err)
	}

	snap := &billing.UsageSnapshot{
		AccountID: account,
		Plan:      billing.Plan(values["plan"]),
	}
	credits, err := strconv.Atoi(values["credits"])
	if err != nil {
		return nil, fmt.Errorf("parse credits %q: %w", values["credits"], err)
	}
	if credits != unlimitedCredits {
		if credits < 0 {
			credits = 0
		}
		snap.CreditsRemaining = &credits
	}
	return snap, nil
}

func (s *UsageStore) Consume(ctx context.Context, account id.AccountID, count int) (*billing.UsageSnapshot, error) {
	if err := s.seed(ctx, account); err != nil {
		return nil, err
	}

	key := usageKey(account)
	current, err := s.client.HGet(ctx, key, "credits").Int()
	if err != nil {
		return nil, fmt.Errorf("read credits: %w", err)
	}
	if current != unlimitedCredits {
		if _, err := s.client.HIncrBy(ctx, key, "credits", int64(-count)).Result(); err != nil {
			return nil, fmt.Errorf("consume credits: %w", err)
		}
	}
	return s.Snapshot(ctx, account)
}
