// Package cache provides the persistent snapshot store and the pure
// freshness policy that decides when cached data may still be served.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry wraps one cached value with the time it was produced.
// FetchedAt is always the production time of the wrapped value, never
// the time it was read back.
type Entry[T any] struct {
	Data      T      `json:"data"`
	FetchedAt int64  `json:"fetchedAt"` // epoch milliseconds
	Source    string `json:"source,omitempty"`
}

// FetchedTime returns FetchedAt as a time.Time.
func (e Entry[T]) FetchedTime() time.Time {
	return time.UnixMilli(e.FetchedAt)
}

// Store persists one JSON envelope under a namespaced file in the cache
// directory. Caching is a performance optimization, not a durability
// guarantee: write failures are swallowed, corrupt entries are deleted
// on read and treated as absent. Single-process use is assumed, so no
// file locking is attempted.
type Store[T any] struct {
	dir    string
	key    string
	logger *logrus.Entry
}

// NewStore creates a store for one namespaced cache key.
func NewStore[T any](dir, key string, logger *logrus.Entry) *Store[T] {
	return &Store[T]{dir: dir, key: key, logger: logger}
}

func (s *Store[T]) path() string {
	return filepath.Join(s.dir, s.key+".json")
}

// Read loads the cached entry. A missing, unreadable, malformed or
// structurally invalid entry is reported as absent; corrupt records are
// deleted as a side effect so the next read starts clean.
func (s *Store[T]) Read() (Entry[T], bool) {
	var entry Entry[T]

	raw, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debugf("cache read failed for %s: %v", s.key, err)
		}
		return entry, false
	}

	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Debugf("cache entry %s is corrupt, deleting: %v", s.key, err)
		s.Delete()
		return Entry[T]{}, false
	}
	if entry.FetchedAt <= 0 {
		s.logger.Debugf("cache entry %s is missing its timestamp, deleting", s.key)
		s.Delete()
		return Entry[T]{}, false
	}

	return entry, true
}

// Write persists the value with the current time and returns the
// timestamp it recorded. Persistence failures are logged and otherwise
// ignored; the caller keeps the value either way.
func (s *Store[T]) Write(value T, now time.Time, source string) int64 {
	fetchedAt := now.UnixMilli()
	entry := Entry[T]{Data: value, FetchedAt: fetchedAt, Source: source}

	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warnf("cache entry %s could not be serialized: %v", s.key, err)
		return fetchedAt
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Warnf("cache dir could not be created: %v", err)
		return fetchedAt
	}
	if err := os.WriteFile(s.path(), raw, 0o644); err != nil {
		s.logger.Warnf("cache entry %s could not be written: %v", s.key, err)
	}
	return fetchedAt
}

// Delete removes the cached entry if present.
func (s *Store[T]) Delete() {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		s.logger.Debugf("cache entry %s could not be deleted: %v", s.key, err)
	}
}
