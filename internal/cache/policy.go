package cache

import "time"

// Default policy values. The manual-refresh cooldown is intentionally
// smaller than the stats TTL so one manual override fits inside a TTL
// window without permitting refresh spam. The two constants have no
// documented relationship and are configured independently.
const (
	DefaultStatsTTL        = 5 * time.Minute
	DefaultRefreshCooldown = 60 * time.Second
	DefaultVersionTTL      = 24 * time.Hour
)

// IsFresh reports whether data produced at fetchedAt is still within
// its TTL at the given instant.
func IsFresh(fetchedAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(fetchedAt) < ttl
}

// CanForceRefresh reports whether a manual refresh is allowed given the
// time of the last completed fetch. A zero lastFetchedAt means no fetch
// has happened yet and a manual refresh is always allowed.
func CanForceRefresh(lastFetchedAt time.Time, cooldown time.Duration, now time.Time) bool {
	if lastFetchedAt.IsZero() {
		return true
	}
	return now.Sub(lastFetchedAt) >= cooldown
}

// RemainingTTL returns how long data produced at fetchedAt may still be
// served, clamped at zero. The scheduler arms its first refresh with
// this value so the refresh lands exactly at cache expiry.
func RemainingTTL(fetchedAt time.Time, ttl time.Duration, now time.Time) time.Duration {
	remaining := ttl - now.Sub(fetchedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
