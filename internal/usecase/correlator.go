package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/naka-gawa/bugcount-report/internal/domain"
	"github.com/naka-gawa/bugcount-report/internal/gateway"
	"github.com/naka-gawa/bugcount-report/internal/query"
)

// ErrMalformedSeeAlso is returned when a webcompat see-also link carries no issue number.
var ErrMalformedSeeAlso = errors.New("see-also link has no issue number")

var issueNumberPattern = regexp.MustCompile(`/(\d+)`)

// Correlator finds Bugzilla bugs whose webcompat counterpart was closed as a duplicate.
// Neither tracker can answer this alone: Bugzilla knows the links, GitHub knows the milestones.
type Correlator struct {
	bugs   gateway.BugSearcher
	issues gateway.IssueSearcher
	logger *log.Logger
}

// NewCorrelator creates a new Correlator instance.
func NewCorrelator(bugs gateway.BugSearcher, issues gateway.IssueSearcher, logger *log.Logger) *Correlator {
	return &Correlator{
		bugs:   bugs,
		issues: issues,
		logger: logger,
	}
}

// Duplicates returns the number of open bugs about site whose linked webcompat
// issue is in the duplicate milestone, linked to a buglist of exactly those bugs.
// When there are none the cell is a bare zero.
func (c *Correlator) Duplicates(ctx context.Context, site domain.Website) (domain.Cell, error) {
	bugs, err := c.bugs.SearchBugs(ctx, query.SeeAlsoBugs(site))
	if err != nil {
		return domain.Cell{}, err
	}
	candidates, err := ExtractCandidates(bugs)
	if err != nil {
		return domain.Cell{}, err
	}

	batches := BatchCandidates(candidates)
	c.logger.Printf("  %d candidate issues for %s in %d searches", len(candidates), site, len(batches))

	duplicated := make(map[int]struct{})
	for _, batch := range batches {
		page, err := c.issues.SearchIssues(ctx, batch.Query)
		if err != nil {
			return domain.Cell{}, err
		}
		if page.Incomplete {
			// Batches are sized so that every issue fits on one page.
			panic(fmt.Sprintf("usecase: incomplete GitHub results for a batch of %d issues", len(batch.Bugs)))
		}
		for _, issue := range page.Issues {
			bugIDs, ok := batch.Bugs[issue.Number]
			if !ok || issue.Milestone != query.DuplicateMilestone {
				continue
			}
			for _, id := range bugIDs {
				duplicated[id] = struct{}{}
			}
		}
	}

	if len(duplicated) == 0 {
		return domain.Cell{}, nil
	}
	ids := slices.Sorted(maps.Keys(duplicated))
	return domain.Cell{
		Count: len(ids),
		URL:   c.bugs.BuglistURL(query.BugList(ids)),
	}, nil
}

// ExtractCandidates pairs each webcompat see-also link with the bug carrying it.
// Links that mention neither marker are skipped; a matching link without an
// issue number is an error.
func ExtractCandidates(bugs []domain.Bug) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	for _, bug := range bugs {
		for _, link := range bug.SeeAlso {
			if !isWebcompatLink(link) {
				continue
			}
			m := issueNumberPattern.FindStringSubmatch(link)
			if m == nil {
				return nil, fmt.Errorf("bug %d: %q: %w", bug.ID, link, ErrMalformedSeeAlso)
			}
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("bug %d: %q: %w", bug.ID, link, ErrMalformedSeeAlso)
			}
			candidates = append(candidates, domain.Candidate{IssueNumber: number, BugID: bug.ID})
		}
	}
	return candidates, nil
}

func isWebcompatLink(link string) bool {
	for _, marker := range query.SeeAlsoMarkers {
		if strings.Contains(link, marker) {
			return true
		}
	}
	return false
}

// BatchCandidates splits candidates into GitHub searches for the duplicate milestone.
// No batch query is longer than query.MaxSearchLength once URL-encoded, and each
// issue number appears in exactly one batch. Candidates sharing an issue number
// are all recorded against that batch.
func BatchCandidates(candidates []domain.Candidate) []domain.Batch {
	var batches []domain.Batch
	batchOf := make(map[int]int)
	for _, c := range candidates {
		if i, ok := batchOf[c.IssueNumber]; ok {
			batches[i].Bugs[c.IssueNumber] = append(batches[i].Bugs[c.IssueNumber], c.BugID)
			continue
		}

		term := " " + strconv.Itoa(c.IssueNumber)
		last := len(batches) - 1
		if last < 0 || query.EncodedLength(batches[last].Query+term) > query.MaxSearchLength {
			batches = append(batches, domain.Batch{
				Query: query.DuplicateSearchPrefix,
				Bugs:  make(map[int][]int),
			})
			last++
		}
		batches[last].Query += term
		batches[last].Bugs[c.IssueNumber] = []int{c.BugID}
		batchOf[c.IssueNumber] = last
	}
	return batches
}
