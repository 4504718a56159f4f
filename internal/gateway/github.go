// Package gateway provides gateways to the GitHub and Bugzilla search APIs,
// abstracting away the underlying REST, GraphQL and HTML clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/bugcount-report/internal/domain"
)

// UserAgent identifies the report generator to both trackers.
const UserAgent = "mozilla/webcompat-bugcount-report-generator"

// searchPageSize is the largest page the GitHub search API returns.
const searchPageSize = 100

// IssueSearcher defines the behavior of a gateway for searching GitHub issues.
type IssueSearcher interface {
	// CountIssues returns the total number of issues matching query.
	CountIssues(ctx context.Context, query string) (int, error)
	// SearchIssues returns the first page (up to 100 issues) matching query.
	SearchIssues(ctx context.Context, query string) (*domain.IssuePage, error)
}

// GitHubGateway is the concrete implementation of the IssueSearcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	pacing        Pacing
	logger        *log.Logger
}

// issueCountQuery asks only for the size of the result set.
type issueCountQuery struct {
	Search struct {
		IssueCount int
	} `graphql:"search(query: $query, type: ISSUE)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, pacing Pacing, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	restClient := github.NewClient(httpClient)
	restClient.UserAgent = UserAgent
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewClient(httpClient),
		pacing:        pacing,
		logger:        logger,
	}, nil
}

// CountIssues uses the GraphQL search, which reports the match count without transferring any issue.
func (g *GitHubGateway) CountIssues(ctx context.Context, query string) (int, error) {
	variables := map[string]interface{}{"query": githubv4.String(query)}
	var q issueCountQuery
	err := g.pacing.do(ctx, g.logger, "GitHub issue count", func() error {
		return g.graphqlClient.Query(ctx, &q, variables)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for counts: %w", err)
	}
	g.logger.Printf("  %d issues for query: %s", q.Search.IssueCount, query)
	return q.Search.IssueCount, nil
}

// SearchIssues runs a REST issue search and returns its first page.
func (g *GitHubGateway) SearchIssues(ctx context.Context, query string) (*domain.IssuePage, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: searchPageSize}}
	var result *github.IssuesSearchResult
	err := g.pacing.do(ctx, g.logger, "GitHub issue search", func() error {
		var err error
		result, _, err = g.restClient.Search.Issues(ctx, query, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search issues with REST API: %w", err)
	}

	page := &domain.IssuePage{
		Total:      result.GetTotal(),
		Incomplete: result.GetIncompleteResults(),
		Issues:     make([]domain.Issue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		page.Issues = append(page.Issues, domain.Issue{
			Number:    issue.GetNumber(),
			Milestone: issue.GetMilestone().GetTitle(),
		})
	}
	g.logger.Printf("  %d issues returned for query: %s", len(page.Issues), query)
	return page, nil
}
