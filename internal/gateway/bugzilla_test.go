package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/naka-gawa/bugcount-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestBugzilla(handler http.Handler) (*BugzillaGateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	gateway := NewBugzillaGateway(server.URL+"/", Pacing{}, log.New(io.Discard, "", 0))
	return gateway, server
}

func TestBugzillaGateway_BuglistURL(t *testing.T) {
	gateway := NewBugzillaGateway(DefaultBugzillaURL, Pacing{}, log.New(io.Discard, "", 0))
	params := url.Values{"f1": {"bug_id"}, "v1": {"1,2"}}
	assert.Equal(t, "https://bugzilla.mozilla.org/buglist.cgi?f1=bug_id&v1=1%2C2", gateway.BuglistURL(params))
}

func TestBugzillaGateway_CountBugs(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected int
	}{
		{
			name:     "happy path - count is scraped",
			body:     `<html><body><span class="bz_result_count">42 bugs found.</span></body></html>`,
			expected: 42,
		},
		{
			name:     "single bug",
			body:     `<html><body><span class="bz_result_count">One bug found.</span></body></html>`,
			expected: 1,
		},
		{
			name:     "no bugs",
			body:     `<html><body><span class="bz_result_count">Zarro Boogs found.</span></body></html>`,
			expected: 0,
		},
		{
			name:     "missing markup counts as zero",
			body:     `<html><body><p>Something changed</p></body></html>`,
			expected: 0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/buglist.cgi", r.URL.Path)
				assert.Equal(t, "example.com", r.URL.Query().Get("bug_file_loc"))
				assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.body)
			}
			gateway, server := setupTestBugzilla(http.HandlerFunc(handler))
			defer server.Close()

			count, err := gateway.CountBugs(context.Background(), url.Values{"bug_file_loc": {"example.com"}})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, count)
		})
	}
}

func TestBugzillaGateway_SearchBugs(t *testing.T) {
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/rest/bug", r.URL.Path)
		assert.Equal(t, "id,see_also", r.URL.Query().Get("include_fields"))
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"bugs":[{"id":100,"see_also":["https://github.com/webcompat/web-bugs/issues/555"]},{"id":101,"see_also":[]}]}`)
	}
	gateway, server := setupTestBugzilla(http.HandlerFunc(handler))
	defer server.Close()

	bugs, err := gateway.SearchBugs(context.Background(), url.Values{"include_fields": {"id,see_also"}})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []domain.Bug{
		{ID: 100, SeeAlso: []string{"https://github.com/webcompat/web-bugs/issues/555"}},
		{ID: 101, SeeAlso: []string{}},
	}, bugs)
}

func TestBugzillaGateway_SearchBugs_BadJSON(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `not json`)
	}
	gateway, server := setupTestBugzilla(http.HandlerFunc(handler))
	defer server.Close()

	_, err := gateway.SearchBugs(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode Bugzilla REST response")
}

func TestParseResultCount(t *testing.T) {
	assert.Equal(t, 7, parseResultCount(" 7 bugs found."))
	assert.Equal(t, 1, parseResultCount("One bug found."))
	assert.Equal(t, 0, parseResultCount(""))
	assert.Equal(t, 0, parseResultCount("bugs found."))
}

func TestBugzillaGateway_CountBugs_SharedPacingSpacesRequests(t *testing.T) {
	const pause = 100 * time.Millisecond
	var mu sync.Mutex
	var arrivals []time.Time
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="bz_result_count">1 bugs found.</span>`)
	}
	server := httptest.NewServer(http.HandlerFunc(handler))
	defer server.Close()
	gateway := NewBugzillaGateway(server.URL, NewPacing(pause, 0), log.New(io.Discard, "", 0))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := gateway.CountBugs(context.Background(), url.Values{})
			assert.NoError(t, err)
			assert.Equal(t, 1, count)
		}()
	}
	wg.Wait()

	require.Len(t, arrivals, 4)
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	for i := 1; i < len(arrivals); i++ {
		// A little slack for scheduling jitter between the limiter and the server.
		assert.GreaterOrEqual(t, arrivals[i].Sub(arrivals[i-1]), pause-20*time.Millisecond)
	}
	assert.GreaterOrEqual(t, arrivals[3].Sub(arrivals[0]), 3*pause-20*time.Millisecond)
}
