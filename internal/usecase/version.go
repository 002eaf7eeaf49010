package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/repo-pulse/internal/cache"
	"github.com/naka-gawa/repo-pulse/internal/gateway"
	"github.com/naka-gawa/repo-pulse/internal/scheduler"
)

// VersionInfo is the resolved latest-release version and where it came
// from.
type VersionInfo struct {
	Version   string    `json:"version"`
	Source    string    `json:"source"` // "github" or "cache"
	FetchedAt time.Time `json:"fetched_at"`
}

// VersionChecker resolves the latest release tag through its own cache
// envelope. Same pattern as the stats cache but with a much longer TTL;
// the two lifetimes are independent by design.
type VersionChecker struct {
	fetcher  gateway.Fetcher
	store    *cache.Store[string]
	clock    scheduler.Clock
	ttl      time.Duration
	cooldown time.Duration
	logger   *logrus.Entry
}

// NewVersionChecker creates a checker over the given version store.
func NewVersionChecker(
	fetcher gateway.Fetcher,
	store *cache.Store[string],
	clock scheduler.Clock,
	ttl, cooldown time.Duration,
	logger *logrus.Entry,
) *VersionChecker {
	return &VersionChecker{
		fetcher:  fetcher,
		store:    store,
		clock:    clock,
		ttl:      ttl,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Latest returns the cached version while fresh, otherwise fetches and
// re-caches it. When the fetch fails a stale cached version is still
// better than nothing and is returned with Source "cache".
func (v *VersionChecker) Latest(ctx context.Context) (VersionInfo, error) {
	now := v.clock.Now()

	entry, ok := v.store.Read()
	if ok && cache.IsFresh(entry.FetchedTime(), v.ttl, now) {
		return VersionInfo{Version: entry.Data, Source: "cache", FetchedAt: entry.FetchedTime()}, nil
	}

	version, err := v.fetcher.FetchLatestVersion(ctx)
	if err != nil {
		if ok {
			v.logger.Debugf("version fetch failed, serving stale cache: %v", err)
			return VersionInfo{Version: entry.Data, Source: "cache", FetchedAt: entry.FetchedTime()}, nil
		}
		return VersionInfo{}, err
	}

	fetchedAt := v.store.Write(version, now, "github")
	return VersionInfo{Version: version, Source: "github", FetchedAt: time.UnixMilli(fetchedAt)}, nil
}

// Refresh bypasses the TTL but honors the manual-refresh cooldown. The
// returned bool reports whether a fetch was actually issued.
func (v *VersionChecker) Refresh(ctx context.Context) (VersionInfo, bool, error) {
	now := v.clock.Now()

	entry, ok := v.store.Read()
	last := time.Time{}
	if ok {
		last = entry.FetchedTime()
	}
	if !cache.CanForceRefresh(last, v.cooldown, now) {
		v.logger.Debug("version refresh suppressed by cooldown")
		return VersionInfo{Version: entry.Data, Source: "cache", FetchedAt: last}, false, nil
	}

	version, err := v.fetcher.FetchLatestVersion(ctx)
	if err != nil {
		return VersionInfo{}, false, err
	}
	fetchedAt := v.store.Write(version, now, "github")
	return VersionInfo{Version: version, Source: "github", FetchedAt: time.UnixMilli(fetchedAt)}, true, nil
}
