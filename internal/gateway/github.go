// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/repo-pulse/internal/config"
	"github.com/naka-gawa/repo-pulse/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchAll assembles one complete statistics snapshot. It fails only
	// when the primary repository-overview request fails; every
	// secondary sub-request degrades to a default value instead.
	FetchAll(ctx context.Context) (domain.StatsSnapshot, error)
	// FetchLatestVersion returns the tag name of the latest release.
	FetchLatestVersion(ctx context.Context) (string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	fallback      *FallbackClient

	owner string
	repo  string

	recentCommitLimit int
	stargazerPageSize int

	logger *logrus.Entry
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token may be empty, in which case requests go out unauthenticated
// with the smaller anonymous rate budget.
func NewGitHubGateway(cfg config.Config, logger *logrus.Entry) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	return &GitHubGateway{
		restClient:        github.NewClient(httpClient),
		graphqlClient:     githubv4.NewClient(httpClient),
		fallback:          NewFallbackClient(cfg.FallbackBaseURL, logger),
		owner:             cfg.Owner,
		repo:              cfg.Repo,
		recentCommitLimit: cfg.RecentCommitLimit,
		stargazerPageSize: cfg.StargazerPageSize,
		logger:            logger,
	}, nil
}

// result holds the outcome of one secondary sub-request so the
// default-on-failure policy can be applied at a single merge point
// instead of scattered recover blocks.
type result[T any] struct {
	value T
	err   error
}

func collect[T any](fn func() (T, error)) result[T] {
	v, err := fn()
	return result[T]{value: v, err: err}
}

// or returns the fetched value, or the fallback when the sub-request
// failed. Degradations are logged at debug level only, they are an
// expected outcome and never user-visible.
func (r result[T]) or(logger *logrus.Entry, name string, fallback T) T {
	if r.err != nil {
		logger.Debugf("secondary request %q degraded to default: %v", name, r.err)
		return fallback
	}
	return r.value
}

// FetchAll issues the primary overview request and all secondary
// requests in parallel. Cancelling ctx aborts every in-flight request.
func (g *GitHubGateway) FetchAll(ctx context.Context) (domain.StatsSnapshot, error) {
	g.logger.Debugf("fetching full snapshot for %s/%s", g.owner, g.repo)

	var (
		overview *github.Repository
		rate     domain.RateLimit

		commits   result[[]domain.CommitSummary]
		languages result[map[string]int]
		weekly    []domain.WeeklyActivity
		gazers    result[[]domain.Stargazer]

		openPRs      result[int]
		closedPRs    result[int]
		mergedPRs    result[int]
		closedIssues result[int]
		releases     result[int]
		contributors result[int]
		branches     result[int]
		tags         result[int]
		totalCommits result[int]
	)

	eg, egCtx := errgroup.WithContext(ctx)

	// Primary request. Its failure rejects the whole fetch and, via the
	// errgroup context, aborts every secondary still in flight.
	eg.Go(func() error {
		repo, resp, err := g.restClient.Repositories.Get(egCtx, g.owner, g.repo)
		if err != nil {
			return fmt.Errorf("failed to fetch repository overview: %w", err)
		}
		overview = repo
		rate = domain.RateLimit{Remaining: resp.Rate.Remaining, Limit: resp.Rate.Limit}
		return nil
	})

	// Secondary requests always return nil so no degradation can fail
	// the group.
	eg.Go(func() error {
		commits = collect(func() ([]domain.CommitSummary, error) { return g.fetchRecentCommits(egCtx) })
		return nil
	})
	eg.Go(func() error {
		languages = collect(func() (map[string]int, error) {
			langs, _, err := g.restClient.Repositories.ListLanguages(egCtx, g.owner, g.repo)
			return langs, err
		})
		return nil
	})
	eg.Go(func() error {
		weekly = g.fetchWeeklyActivity(egCtx)
		return nil
	})
	eg.Go(func() error {
		gazers = collect(func() ([]domain.Stargazer, error) { return g.fetchStargazers(egCtx) })
		return nil
	})
	eg.Go(func() error {
		openPRs = collect(func() (int, error) { return g.countPRs(egCtx, "open") })
		return nil
	})
	eg.Go(func() error {
		closedPRs = collect(func() (int, error) { return g.countPRs(egCtx, "closed") })
		return nil
	})
	eg.Go(func() error {
		mergedPRs = collect(func() (int, error) { return g.fetchMergedPRCount(egCtx) })
		return nil
	})
	eg.Go(func() error {
		closedIssues = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.Issue, *github.Response, error) {
				return g.restClient.Issues.ListByRepo(egCtx, g.owner, g.repo, &github.IssueListByRepoOptions{State: "closed", ListOptions: lo})
			})
		})
		return nil
	})
	eg.Go(func() error {
		releases = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error) {
				return g.restClient.Repositories.ListReleases(egCtx, g.owner, g.repo, &lo)
			})
		})
		return nil
	})
	eg.Go(func() error {
		contributors = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.Contributor, *github.Response, error) {
				return g.restClient.Repositories.ListContributors(egCtx, g.owner, g.repo, &github.ListContributorsOptions{ListOptions: lo})
			})
		})
		return nil
	})
	eg.Go(func() error {
		branches = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.Branch, *github.Response, error) {
				return g.restClient.Repositories.ListBranches(egCtx, g.owner, g.repo, &github.BranchListOptions{ListOptions: lo})
			})
		})
		return nil
	})
	eg.Go(func() error {
		tags = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.RepositoryTag, *github.Response, error) {
				return g.restClient.Repositories.ListTags(egCtx, g.owner, g.repo, &lo)
			})
		})
		return nil
	})
	eg.Go(func() error {
		totalCommits = collect(func() (int, error) {
			return countViaPagination(func(lo github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
				return g.restClient.Repositories.ListCommits(egCtx, g.owner, g.repo, &github.CommitsListOptions{ListOptions: lo})
			})
		})
		return nil
	})

	if err := eg.Wait(); err != nil {
		return domain.StatsSnapshot{}, err
	}

	// Merge point: the default-on-failure policy for every secondary
	// lives here and nowhere else.
	snapshot := domain.StatsSnapshot{
		Owner:        g.owner,
		Repo:         g.repo,
		Stars:        overview.GetStargazersCount(),
		Forks:        overview.GetForksCount(),
		OpenIssues:   overview.GetOpenIssuesCount(),
		License:      overview.GetLicense().GetSPDXID(),
		SizeKB:       overview.GetSize(),
		RateLimit:    rate,
		ClosedIssues: closedIssues.or(g.logger, "closed issues", 0),
		OpenPRs:      openPRs.or(g.logger, "open PRs", 0),
		ClosedPRs:    closedPRs.or(g.logger, "closed PRs", 0),
		MergedPRs:    mergedPRs.or(g.logger, "merged PRs", 0),
		Releases:     releases.or(g.logger, "releases", 0),
		Contributors: contributors.or(g.logger, "contributors", 0),
		Branches:     branches.or(g.logger, "branches", 0),
		Tags:         tags.or(g.logger, "tags", 0),
		TotalCommits: totalCommits.or(g.logger, "total commits", 0),

		RecentCommits:  commits.or(g.logger, "recent commits", []domain.CommitSummary{}),
		Languages:      languages.or(g.logger, "languages", map[string]int{}),
		WeeklyActivity: weekly,
		Stargazers:     gazers.or(g.logger, "stargazers", []domain.Stargazer{}),
	}
	if created := overview.GetCreatedAt(); !created.IsZero() {
		t := created.Time
		snapshot.CreatedAt = &t
	}
	if pushed := overview.GetPushedAt(); !pushed.IsZero() {
		t := pushed.Time
		snapshot.PushedAt = &t
	}

	g.logger.Debugf("snapshot assembled, rate budget %d/%d remaining", rate.Remaining, rate.Limit)
	return snapshot, nil
}

// FetchLatestVersion returns the tag name of the latest published release.
func (g *GitHubGateway) FetchLatestVersion(ctx context.Context) (string, error) {
	release, _, err := g.restClient.Repositories.GetLatestRelease(ctx, g.owner, g.repo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	return release.GetTagName(), nil
}

// countViaPagination derives a total item count from the Link header:
// it requests a single item per page and reads the last-page number.
// When the result fits in one page GitHub sends no pagination metadata,
// so the returned items are counted directly.
func countViaPagination[T any](list func(github.ListOptions) ([]T, *github.Response, error)) (int, error) {
	items, resp, err := list(github.ListOptions{PerPage: 1, Page: 1})
	if err != nil {
		return 0, err
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(items), nil
}

func (g *GitHubGateway) countPRs(ctx context.Context, state string) (int, error) {
	return countViaPagination(func(lo github.ListOptions) ([]*github.PullRequest, *github.Response, error) {
		return g.restClient.PullRequests.List(ctx, g.owner, g.repo, &github.PullRequestListOptions{State: state, ListOptions: lo})
	})
}

// fetchMergedPRCount asks the GraphQL search endpoint for the merged PR
// total, which REST pagination cannot answer in one request.
func (g *GitHubGateway) fetchMergedPRCount(ctx context.Context) (int, error) {
	var q struct {
		Search struct {
			IssueCount githubv4.Int
		} `graphql:"search(query: $query, type: ISSUE, first: 1)"`
	}
	variables := map[string]interface{}{
		"query": githubv4.String(fmt.Sprintf("repo:%s/%s is:pr is:merged", g.owner, g.repo)),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for merged PR count: %w", err)
	}
	return int(q.Search.IssueCount), nil
}

func (g *GitHubGateway) fetchRecentCommits(ctx context.Context) ([]domain.CommitSummary, error) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: g.recentCommitLimit}}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, g.owner, g.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent commits: %w", err)
	}

	summaries := make([]domain.CommitSummary, 0, len(commits))
	for _, c := range commits {
		title, body := splitCommitMessage(c.GetCommit().GetMessage())
		author := c.GetAuthor().GetLogin()
		if author == "" {
			author = c.GetCommit().GetAuthor().GetName()
		}
		summaries = append(summaries, domain.CommitSummary{
			SHA:    c.GetSHA(),
			Title:  title,
			Body:   body,
			Author: author,
			Date:   c.GetCommit().GetAuthor().GetDate().Time,
			URL:    c.GetHTMLURL(),
		})
	}
	return summaries, nil
}

// splitCommitMessage splits a full commit message into the conventional
// title and body: the title is everything before the first newline, the
// body is whatever follows the first blank-line run. A single-line
// message has an empty body.
func splitCommitMessage(message string) (title, body string) {
	title, rest, found := strings.Cut(message, "\n")
	title = strings.TrimRight(title, "\r")
	if !found {
		return title, ""
	}
	body = strings.TrimLeft(rest, "\r\n")
	body = strings.TrimRight(body, "\r\n")
	return title, body
}

// fetchWeeklyActivity applies the three-tier fallback: live endpoint,
// then the static pre-generated series, then an empty series. It never
// fails the overall fetch.
//
// An empty live result is taken to mean upstream is still computing the
// series. That heuristic cannot be told apart from a repository with
// genuinely zero commits this year; the static fallback wins either way.
func (g *GitHubGateway) fetchWeeklyActivity(ctx context.Context) []domain.WeeklyActivity {
	weeks, _, err := g.restClient.Repositories.ListCommitActivity(ctx, g.owner, g.repo)
	if err == nil && len(weeks) > 0 {
		series := make([]domain.WeeklyActivity, 0, len(weeks))
		for _, w := range weeks {
			series = append(series, domain.WeeklyActivity{Week: w.GetWeek().Time, Total: w.GetTotal()})
		}
		return series
	}
	if err != nil {
		g.logger.Debugf("live commit activity unavailable, using static fallback: %v", err)
	} else {
		g.logger.Debug("live commit activity empty (likely still computing), using static fallback")
	}

	series, err := g.fallback.WeeklyActivity(ctx)
	if err != nil {
		g.logger.Debugf("static activity fallback unavailable: %v", err)
		return []domain.WeeklyActivity{}
	}
	return series
}

// fetchStargazers lists stargazers and enriches them with the offline
// social-profile table. The join is a left outer join: every stargazer
// survives, profiles are optional extras.
func (g *GitHubGateway) fetchStargazers(ctx context.Context) ([]domain.Stargazer, error) {
	opts := &github.ListOptions{PerPage: g.stargazerPageSize}
	gazers, _, err := g.restClient.Activity.ListStargazers(ctx, g.owner, g.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stargazers: %w", err)
	}

	profiles, err := g.fallback.SocialProfiles(ctx)
	if err != nil {
		g.logger.Debugf("social profile table unavailable, stargazers stay unenriched: %v", err)
		profiles = nil
	}

	out := make([]domain.Stargazer, 0, len(gazers))
	for _, sg := range gazers {
		user := sg.GetUser()
		gazer := domain.Stargazer{
			Login:     user.GetLogin(),
			AvatarURL: user.GetAvatarURL(),
			StarredAt: sg.GetStarredAt().Time,
		}
		if profile, ok := profiles[gazer.Login]; ok {
			gazer.Name = profile.Name
			gazer.Twitter = profile.Twitter
			gazer.Blog = profile.Blog
		}
		out = append(out, gazer)
	}
	return out, nil
}
