// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// StatsSnapshot holds one complete, immutable result of a full fetch
// cycle against a repository. It is the core domain entity of this
// application. Every refresh produces a brand-new snapshot; a snapshot
// is never mutated after the fetcher returns it.
type StatsSnapshot struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`

	Stars        int `json:"stars"`
	Forks        int `json:"forks"`
	OpenIssues   int `json:"open_issues"`
	ClosedIssues int `json:"closed_issues"`
	OpenPRs      int `json:"open_prs"`
	ClosedPRs    int `json:"closed_prs"`
	MergedPRs    int `json:"merged_prs"`
	Releases     int `json:"releases"`
	Contributors int `json:"contributors"`
	Branches     int `json:"branches"`
	Tags         int `json:"tags"`
	TotalCommits int `json:"total_commits"`

	License   string     `json:"license,omitempty"`
	SizeKB    int        `json:"size_kb"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	PushedAt  *time.Time `json:"pushed_at,omitempty"`

	RecentCommits  []CommitSummary  `json:"recent_commits"`
	Languages      map[string]int   `json:"languages"`
	WeeklyActivity []WeeklyActivity `json:"weekly_activity"`
	Stargazers     []Stargazer      `json:"stargazers"`

	RateLimit RateLimit `json:"rate_limit"`
}

// CommitSummary is a trimmed-down view of a single commit. Title and
// Body follow the conventional git message split: Title is everything
// before the first newline, Body is the text after the first blank-line
// run (empty for single-line messages).
type CommitSummary struct {
	SHA    string    `json:"sha"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
	URL    string    `json:"url,omitempty"`
}

// WeeklyActivity is one week of the 52-week commit activity series.
type WeeklyActivity struct {
	Week  time.Time `json:"week"`
	Total int       `json:"total"`
}

// Stargazer is one user that starred the repository. The social fields
// are filled in from a separately-hosted profile lookup table; a
// stargazer without a matching profile simply has them empty.
type Stargazer struct {
	Login     string    `json:"login"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	StarredAt time.Time `json:"starred_at"`

	Name    string `json:"name,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Blog    string `json:"blog,omitempty"`
}

// SocialProfile is one row of the offline-generated profile lookup
// table, keyed by login.
type SocialProfile struct {
	Name    string `json:"name,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Blog    string `json:"blog,omitempty"`
}

// RateLimit records the upstream API budget observed at fetch time.
type RateLimit struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// ActivitySummary condenses the weekly activity series into a few
// headline numbers for display.
type ActivitySummary struct {
	MeanPerWeek   float64 `json:"mean_per_week"`
	MedianPerWeek float64 `json:"median_per_week"`
	MaxWeek       float64 `json:"max_week"`
}
