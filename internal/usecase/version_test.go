package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/repo-pulse/internal/cache"
	"github.com/naka-gawa/repo-pulse/internal/logger"
)

func newTestVersionChecker(t *testing.T, fetcher *stubFetcher, clock *fakeClock) (*VersionChecker, *cache.Store[string]) {
	t.Helper()
	store := cache.NewStore[string](t.TempDir(), "version", logger.Discard())
	checker := NewVersionChecker(fetcher, store, clock, 24*time.Hour, 60*time.Second, logger.Discard())
	return checker, store
}

func TestVersionChecker_FreshCacheSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{version: "v2.0.0"}
	clock := newFakeClock()
	checker, store := newTestVersionChecker(t, fetcher, clock)

	store.Write("v1.0.0", clock.Now().Add(-time.Hour), "github")

	info, err := checker.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", info.Version)
	assert.Equal(t, "cache", info.Source)
}

func TestVersionChecker_StaleCacheRefetches(t *testing.T) {
	fetcher := &stubFetcher{version: "v2.0.0"}
	clock := newFakeClock()
	checker, store := newTestVersionChecker(t, fetcher, clock)

	store.Write("v1.0.0", clock.Now().Add(-48*time.Hour), "github")

	info, err := checker.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", info.Version)
	assert.Equal(t, "github", info.Source)

	// The new version was written through.
	entry, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "v2.0.0", entry.Data)
	assert.Equal(t, "github", entry.Source)
}

func TestVersionChecker_FetchFailureServesStaleCache(t *testing.T) {
	fetcher := &stubFetcher{versionErr: errors.New("api down")}
	clock := newFakeClock()
	checker, store := newTestVersionChecker(t, fetcher, clock)

	store.Write("v1.0.0", clock.Now().Add(-48*time.Hour), "github")

	info, err := checker.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", info.Version)
	assert.Equal(t, "cache", info.Source)
}

func TestVersionChecker_FetchFailureWithoutCacheErrors(t *testing.T) {
	fetcher := &stubFetcher{versionErr: errors.New("api down")}
	clock := newFakeClock()
	checker, _ := newTestVersionChecker(t, fetcher, clock)

	_, err := checker.Latest(context.Background())
	assert.Error(t, err)
}

func TestVersionChecker_RefreshHonorsCooldown(t *testing.T) {
	fetcher := &stubFetcher{version: "v2.0.0"}
	clock := newFakeClock()
	checker, store := newTestVersionChecker(t, fetcher, clock)

	store.Write("v1.0.0", clock.Now().Add(-30*time.Second), "github")

	info, issued, err := checker.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, "v1.0.0", info.Version)

	clock.advance(31 * time.Second)
	info, issued, err = checker.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, "v2.0.0", info.Version)
}
