// Package store owns the per-service query state machine. Transitions are
// idle -> loading -> settled (success or error), with settled states
// re-entering loading on a new issue. The store serializes transitions per
// service id and guarantees at most one in-flight query per id.
package store

import (
	"sync"
	"time"

	"padron/internal/query/models"
	id "padron/pkg/domain"
	"padron/pkg/platform/sentinel"
)

// BeginResult reports the outcome of an issue transition.
type BeginResult struct {
	// CacheHit is true when the stored settled-success result for the same
	// query value was reused and no new call should be made.
	CacheHit bool
	// State is a snapshot taken after the transition.
	State models.QueryState
}

// MemoryStore is the in-process query state store. States are created lazily
// per service id and live for the session.
type MemoryStore struct {
	mu     sync.Mutex
	states map[id.ServiceID]*models.QueryState
}

func New() *MemoryStore {
	return &MemoryStore{states: make(map[id.ServiceID]*models.QueryState)}
}

// Get returns a snapshot of the current state for a service id. Never blocks
// on in-flight work; an unknown id yields the idle zero state.
func (s *MemoryStore) Get(serviceID id.ServiceID) models.QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[serviceID]; ok {
		return *state
	}
	return models.QueryState{}
}

// Begin attempts the issue transition for a service id.
//
// A concurrent issue while loading returns sentinel.ErrInFlight; the
// in-flight call stays authoritative and the new request is rejected, not
// queued. A non-forced issue whose value matches the stored settled-success
// result short-circuits as a cache hit. Otherwise the state moves to loading
// with the error cleared; the previous result is kept until resolve/reject.
func (s *MemoryStore) Begin(serviceID id.ServiceID, value string, force bool) (BeginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(serviceID)
	if state.Loading {
		return BeginResult{}, sentinel.ErrInFlight
	}

	settledSuccess := state.Error == "" && !state.FetchedAt.IsZero()
	if !force && settledSuccess && state.LastValue == value {
		return BeginResult{CacheHit: true, State: *state}, nil
	}

	state.Loading = true
	state.Error = ""
	state.LastValue = value
	return BeginResult{State: *state}, nil
}

// Resolve settles an in-flight query with its result, recording the fetch
// time. Calling Resolve on a non-loading state is a programming error and
// returns sentinel.ErrInvalidState.
func (s *MemoryStore) Resolve(serviceID id.ServiceID, record *models.Record, rawBody string, payload models.Document, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(serviceID)
	if !state.Loading {
		return sentinel.ErrInvalidState
	}
	state.Loading = false
	state.Error = ""
	state.Record = record
	state.RawBody = rawBody
	state.Payload = payload
	state.FetchedAt = fetchedAt
	return nil
}

// Reject settles an in-flight query with an error, clearing any previous
// result so callers never see stale data next to a fresh failure.
func (s *MemoryStore) Reject(serviceID id.ServiceID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(serviceID)
	if !state.Loading {
		return sentinel.ErrInvalidState
	}
	state.Loading = false
	state.Error = message
	state.Record = nil
	state.RawBody = ""
	state.Payload = nil
	state.FetchedAt = time.Time{}
	return nil
}

// state returns the mutable entry for an id, creating it lazily.
// Caller must hold mu.
func (s *MemoryStore) state(serviceID id.ServiceID) *models.QueryState {
	if state, ok := s.states[serviceID]; ok {
		return state
	}
	state := &models.QueryState{}
	s.states[serviceID] = state
	return state
}
