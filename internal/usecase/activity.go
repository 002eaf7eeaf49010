package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/repo-pulse/internal/domain"
)

// SummarizeActivity condenses the weekly commit series into headline
// numbers. An empty series yields a zero summary.
func SummarizeActivity(series []domain.WeeklyActivity) domain.ActivitySummary {
	if len(series) == 0 {
		return domain.ActivitySummary{}
	}

	totals := make([]float64, len(series))
	for i, week := range series {
		totals[i] = float64(week.Total)
	}

	mean, _ := stats.Mean(totals)
	median, _ := stats.Median(totals)
	max, _ := stats.Max(totals)

	return domain.ActivitySummary{
		MeanPerWeek:   mean,
		MedianPerWeek: median,
		MaxWeek:       max,
	}
}
