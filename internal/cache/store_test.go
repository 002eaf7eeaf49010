package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/naka-gawa/repo-pulse/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Stars int    `json:"stars"`
	Name  string `json:"name"`
}

func newTestStore(t *testing.T) *Store[payload] {
	t.Helper()
	return NewStore[payload](t.TempDir(), "stats", logger.Discard())
}

func TestStore_WriteThenRead(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	fetchedAt := store.Write(payload{Stars: 42, Name: "repo-pulse"}, now, "github")
	assert.Equal(t, now.UnixMilli(), fetchedAt)

	entry, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, payload{Stars: 42, Name: "repo-pulse"}, entry.Data)
	assert.Equal(t, now.UnixMilli(), entry.FetchedAt)
	assert.Equal(t, "github", entry.Source)
}

func TestStore_ReadIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.Write(payload{Stars: 7}, time.Now(), "")

	first, ok := store.Read()
	require.True(t, ok)
	second, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestStore_ReadMissing(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.Read()
	assert.False(t, ok)
}

func TestStore_CorruptEntryIsSelfHealing(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{
			name: "malformed JSON",
			raw:  `{"data": {"stars": 1`,
		},
		{
			name: "wrong shape",
			raw:  `[1, 2, 3]`,
		},
		{
			name: "missing timestamp",
			raw:  `{"data": {"stars": 1}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewStore[payload](dir, "stats", logger.Discard())
			path := filepath.Join(dir, "stats.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.raw), 0o644))

			_, ok := store.Read()
			assert.False(t, ok)

			// The corrupt record must have been deleted.
			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestStore_WriteFailureIsSilent(t *testing.T) {
	// Point the store at a path that cannot be a directory.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := NewStore[payload](blocker, "stats", logger.Discard())
	now := time.Now()

	// Write must not panic and must still hand back the timestamp.
	fetchedAt := store.Write(payload{Stars: 1}, now, "")
	assert.Equal(t, now.UnixMilli(), fetchedAt)
}

func TestStore_OverwriteReplacesEntry(t *testing.T) {
	store := newTestStore(t)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.Write(payload{Stars: 1}, t0, "")
	store.Write(payload{Stars: 2}, t0.Add(time.Minute), "")

	entry, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, 2, entry.Data.Stars)
	assert.Equal(t, t0.Add(time.Minute).UnixMilli(), entry.FetchedAt)
}
