package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/repo-pulse/internal/domain"
)

// fallbackTimeout bounds the static-document lookups. They are
// best-effort enrichment, so a slow host degrades to "absent" quickly
// instead of dragging out the whole fetch.
const fallbackTimeout = 5 * time.Second

// FallbackClient fetches the two offline-generated JSON documents: the
// social-profile lookup table and the pre-generated weekly-activity
// series.
type FallbackClient struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Entry
}

// NewFallbackClient creates a client for the static fallback host.
func NewFallbackClient(baseURL string, logger *logrus.Entry) *FallbackClient {
	return &FallbackClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: fallbackTimeout},
		logger:  logger,
	}
}

// SocialProfiles returns the profile lookup table keyed by login.
func (f *FallbackClient) SocialProfiles(ctx context.Context) (map[string]domain.SocialProfile, error) {
	var table map[string]domain.SocialProfile
	if err := f.getJSON(ctx, "/social-profiles.json", &table); err != nil {
		return nil, err
	}
	return table, nil
}

// WeeklyActivity returns the pre-generated 52-week activity series.
func (f *FallbackClient) WeeklyActivity(ctx context.Context) ([]domain.WeeklyActivity, error) {
	var series []domain.WeeklyActivity
	if err := f.getJSON(ctx, "/weekly-activity.json", &series); err != nil {
		return nil, err
	}
	return series, nil
}

func (f *FallbackClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build fallback request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fallback request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fallback request %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fallback document %s is malformed: %w", path, err)
	}
	return nil
}
