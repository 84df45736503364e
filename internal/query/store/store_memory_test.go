package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padron/internal/query/models"
	id "padron/pkg/domain"
	"padron/pkg/platform/sentinel"
)

const testService = id.ServiceID("soat")

func settle(t *testing.T, s *MemoryStore, value string) {
	t.Helper()
	begin, err := s.Begin(testService, value, false)
	require.NoError(t, err)
	require.False(t, begin.CacheHit)
	record := &models.Record{Category: models.CategoryInsurance, Insurance: &models.InsuranceRecord{Company: "MAPFRE"}}
	require.NoError(t, s.Resolve(testService, record, `{"ok":true}`, models.Document{"ok": true}, time.Now()))
}

func TestMemoryStore_Begin(t *testing.T) {
	t.Run("unknown id starts idle", func(t *testing.T) {
		s := New()
		state := s.Get(testService)
		assert.False(t, state.Loading)
		assert.False(t, state.Settled())
	})

	t.Run("begin moves to loading", func(t *testing.T) {
		s := New()
		begin, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)
		assert.False(t, begin.CacheHit)
		assert.True(t, begin.State.Loading)
		assert.Equal(t, "ABC123", begin.State.LastValue)
	})

	t.Run("second begin while loading is rejected", func(t *testing.T) {
		s := New()
		_, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)

		_, err = s.Begin(testService, "ABC123", false)
		assert.ErrorIs(t, err, sentinel.ErrInFlight)
		// Forcing does not bypass the in-flight guard.
		_, err = s.Begin(testService, "XYZ789", true)
		assert.ErrorIs(t, err, sentinel.ErrInFlight)
	})

	t.Run("distinct ids do not interfere", func(t *testing.T) {
		s := New()
		_, err := s.Begin("soat", "ABC123", false)
		require.NoError(t, err)
		_, err = s.Begin("revision", "ABC123", false)
		require.NoError(t, err)
	})
}

func TestMemoryStore_CacheHit(t *testing.T) {
	t.Run("same value after success short-circuits", func(t *testing.T) {
		s := New()
		settle(t, s, "ABC123")

		begin, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)
		assert.True(t, begin.CacheHit)
		assert.False(t, begin.State.Loading)
		require.NotNil(t, begin.State.Record)
		assert.Equal(t, "MAPFRE", begin.State.Record.Insurance.Company)
	})

	t.Run("different value re-executes", func(t *testing.T) {
		s := New()
		settle(t, s, "ABC123")

		begin, err := s.Begin(testService, "XYZ789", false)
		require.NoError(t, err)
		assert.False(t, begin.CacheHit)
		assert.True(t, begin.State.Loading)
	})

	t.Run("force bypasses the cache", func(t *testing.T) {
		s := New()
		settle(t, s, "ABC123")

		begin, err := s.Begin(testService, "ABC123", true)
		require.NoError(t, err)
		assert.False(t, begin.CacheHit)
		assert.True(t, begin.State.Loading)
	})

	t.Run("settled error never counts as cached", func(t *testing.T) {
		s := New()
		_, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)
		require.NoError(t, s.Reject(testService, "upstream returned status 500"))

		begin, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)
		assert.False(t, begin.CacheHit)
	})
}

func TestMemoryStore_Settle(t *testing.T) {
	t.Run("resolve stores result and clears loading", func(t *testing.T) {
		s := New()
		_, err := s.Begin(testService, "ABC123", false)
		require.NoError(t, err)

		fetched := time.Now()
		record := &models.Record{Category: models.CategoryInsurance, Insurance: &models.InsuranceRecord{}}
		require.NoError(t, s.Resolve(testService, record, "raw", models.Document{"k": "v"}, fetched))

		state := s.Get(testService)
		assert.False(t, state.Loading)
		assert.Empty(t, state.Error)
		assert.Equal(t, record, state.Record)
		assert.Equal(t, "raw", state.RawBody)
		assert.Equal(t, fetched, state.FetchedAt)
		assert.True(t, state.Settled())
	})

	t.Run("reject clears previous result", func(t *testing.T) {
		s := New()
		settle(t, s, "ABC123")

		_, err := s.Begin(testService, "ABC123", true)
		require.NoError(t, err)
		require.NoError(t, s.Reject(testService, "upstream call failed"))

		state := s.Get(testService)
		assert.False(t, state.Loading)
		assert.Equal(t, "upstream call failed", state.Error)
		assert.Nil(t, state.Record, "stale data never survives a fresh failure")
		assert.Empty(t, state.RawBody)
		assert.True(t, state.FetchedAt.IsZero())
	})

	t.Run("re-issue keeps previous result until settled", func(t *testing.T) {
		s := New()
		settle(t, s, "ABC123")

		begin, err := s.Begin(testService, "XYZ789", false)
		require.NoError(t, err)
		assert.True(t, begin.State.Loading)
		assert.NotNil(t, begin.State.Record, "previous result stays visible while loading")
	})

	t.Run("settling a non-loading state is invalid", func(t *testing.T) {
		s := New()
		assert.ErrorIs(t, s.Resolve(testService, nil, "", nil, time.Now()), sentinel.ErrInvalidState)
		assert.ErrorIs(t, s.Reject(testService, "boom"), sentinel.ErrInvalidState)
	})
}
