package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/repo-pulse/internal/domain"
)

func TestSummarizeActivity(t *testing.T) {
	week := func(i, total int) domain.WeeklyActivity {
		return domain.WeeklyActivity{
			Week:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i),
			Total: total,
		}
	}

	testCases := []struct {
		name     string
		series   []domain.WeeklyActivity
		expected domain.ActivitySummary
	}{
		{
			name:     "empty series yields zero summary",
			series:   nil,
			expected: domain.ActivitySummary{},
		},
		{
			name:   "single week",
			series: []domain.WeeklyActivity{week(0, 4)},
			expected: domain.ActivitySummary{
				MeanPerWeek:   4,
				MedianPerWeek: 4,
				MaxWeek:       4,
			},
		},
		{
			name:   "mixed weeks",
			series: []domain.WeeklyActivity{week(0, 1), week(1, 3), week(2, 8)},
			expected: domain.ActivitySummary{
				MeanPerWeek:   4,
				MedianPerWeek: 3,
				MaxWeek:       8,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SummarizeActivity(tc.series))
		})
	}
}
