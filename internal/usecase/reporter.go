// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/naka-gawa/bugcount-report/internal/domain"
	"github.com/naka-gawa/bugcount-report/internal/gateway"
	"github.com/naka-gawa/bugcount-report/internal/query"
	"golang.org/x/sync/errgroup"
)

// Reporter is the use case for building the bug count report.
// It orchestrates the per-column searches for every website.
type Reporter struct {
	bugs        gateway.BugSearcher
	issues      gateway.IssueSearcher
	correlator  *Correlator
	freshSince  time.Time
	concurrency int
	progress    *log.Logger
	logger      *log.Logger
}

// NewReporter creates a new Reporter instance.
// Bugs created after freshSince count as fresh. A concurrency below 1 is treated as 1.
// progress receives one "<index> <website>" line per finished website whatever the log verbosity.
func NewReporter(bugs gateway.BugSearcher, issues gateway.IssueSearcher, freshSince time.Time, concurrency int, progress, logger *log.Logger) *Reporter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reporter{
		bugs:        bugs,
		issues:      issues,
		correlator:  NewCorrelator(bugs, issues, logger),
		freshSince:  freshSince,
		concurrency: concurrency,
		progress:    progress,
		logger:      logger,
	}
}

// BuildRows produces one row per website, in input order.
// Up to r.concurrency websites are processed at once; the first error aborts the run.
func (r *Reporter) BuildRows(ctx context.Context, websites []domain.Website) ([]domain.Row, error) {
	r.logger.Printf("Usecase: Building report for %d websites...", len(websites))

	rows := make([]domain.Row, len(websites))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)
	for i, site := range websites {
		eg.Go(func() error {
			row, err := r.buildRow(egCtx, site)
			if err != nil {
				return fmt.Errorf("failed to build row for %s: %w", site, err)
			}
			rows[i] = row
			r.progress.Println(i, site)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r.logger.Println("Usecase: Report complete.")
	return rows, nil
}

// buildRow fills the cells in the order of domain.Header.
func (r *Reporter) buildRow(ctx context.Context, site domain.Website) (domain.Row, error) {
	fresh, err := r.freshBugs(ctx, site)
	if err != nil {
		return domain.Row{}, err
	}
	webcompat, err := r.issueCount(ctx, query.WebcompatIssues(site), query.GitHubSearchLink)
	if err != nil {
		return domain.Row{}, err
	}
	severe, err := r.issueCount(ctx, query.SevereIssues(site), query.WebBugsLink)
	if err != nil {
		return domain.Row{}, err
	}
	diagnosis, err := r.issueCount(ctx, query.NeedsDiagnosisIssues(site), query.GitHubSearchLink)
	if err != nil {
		return domain.Row{}, err
	}
	duplicates, err := r.correlator.Duplicates(ctx, site)
	if err != nil {
		return domain.Row{}, err
	}

	return domain.Row{
		Website: site,
		Cells:   []domain.Cell{fresh, webcompat, severe, diagnosis, duplicates},
	}, nil
}

func (r *Reporter) freshBugs(ctx context.Context, site domain.Website) (domain.Cell, error) {
	params := query.FreshBugs(site, r.freshSince)
	count, err := r.bugs.CountBugs(ctx, params)
	if err != nil {
		return domain.Cell{}, err
	}
	return domain.Cell{Count: count, URL: r.bugs.BuglistURL(params)}, nil
}

func (r *Reporter) issueCount(ctx context.Context, q string, link func(string) string) (domain.Cell, error) {
	count, err := r.issues.CountIssues(ctx, q)
	if err != nil {
		return domain.Cell{}, err
	}
	return domain.Cell{Count: count, URL: link(q)}, nil
}
