package usecase

import (
	"context"
	"net/url"

	"github.com/naka-gawa/bugcount-report/internal/domain"
	"github.com/stretchr/testify/mock"
)

// mockBugSearcher is a mock implementation of the gateway.BugSearcher interface.
type mockBugSearcher struct {
	mock.Mock
}

// BuglistURL is deterministic so tests can assert on the generated links.
func (m *mockBugSearcher) BuglistURL(params url.Values) string {
	return "https://bugzilla.test/buglist.cgi?" + params.Encode()
}

func (m *mockBugSearcher) CountBugs(ctx context.Context, params url.Values) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func (m *mockBugSearcher) SearchBugs(ctx context.Context, params url.Values) ([]domain.Bug, error) {
	args := m.Called(ctx, params)
	// We need to handle the case where the returned slice is nil (e.g., when an error occurs).
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bug), args.Error(1)
}

// mockIssueSearcher is a mock implementation of the gateway.IssueSearcher interface.
type mockIssueSearcher struct {
	mock.Mock
}

func (m *mockIssueSearcher) CountIssues(ctx context.Context, query string) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

func (m *mockIssueSearcher) SearchIssues(ctx context.Context, query string) (*domain.IssuePage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssuePage), args.Error(1)
}
