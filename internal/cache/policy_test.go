package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	testCases := []struct {
		name      string
		fetchedAt time.Time
		expected  bool
	}{
		{
			name:      "just fetched",
			fetchedAt: now,
			expected:  true,
		},
		{
			name:      "within TTL",
			fetchedAt: now.Add(-2 * time.Minute),
			expected:  true,
		},
		{
			name:      "exactly at TTL boundary is stale",
			fetchedAt: now.Add(-5 * time.Minute),
			expected:  false,
		},
		{
			name:      "past TTL",
			fetchedAt: now.Add(-time.Hour),
			expected:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsFresh(tc.fetchedAt, ttl, now))
		})
	}
}

func TestCanForceRefresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown := 60 * time.Second

	testCases := []struct {
		name          string
		lastFetchedAt time.Time
		expected      bool
	}{
		{
			name:          "never fetched",
			lastFetchedAt: time.Time{},
			expected:      true,
		},
		{
			name:          "inside cooldown",
			lastFetchedAt: now.Add(-30 * time.Second),
			expected:      false,
		},
		{
			name:          "exactly at cooldown boundary",
			lastFetchedAt: now.Add(-60 * time.Second),
			expected:      true,
		},
		{
			name:          "well past cooldown",
			lastFetchedAt: now.Add(-10 * time.Minute),
			expected:      true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanForceRefresh(tc.lastFetchedAt, cooldown, now))
		})
	}
}

func TestRemainingTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	assert.Equal(t, 3*time.Minute, RemainingTTL(now.Add(-2*time.Minute), ttl, now))
	assert.Equal(t, ttl, RemainingTTL(now, ttl, now))
	assert.Equal(t, time.Duration(0), RemainingTTL(now.Add(-time.Hour), ttl, now))
}
