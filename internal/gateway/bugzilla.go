package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/naka-gawa/bugcount-report/internal/domain"
)

// DefaultBugzillaURL is the Mozilla Bugzilla instance.
const DefaultBugzillaURL = "https://bugzilla.mozilla.org"

// resultCountSelector marks the "N bugs found." line on a buglist page.
const resultCountSelector = "span.bz_result_count"

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

// BugSearcher defines the behavior of a gateway for searching Bugzilla.
type BugSearcher interface {
	// BuglistURL returns the browser-facing buglist.cgi URL for params.
	BuglistURL(params url.Values) string
	// CountBugs returns the number of bugs a buglist.cgi search reports.
	CountBugs(ctx context.Context, params url.Values) (int, error)
	// SearchBugs runs a REST search and returns the matching bugs.
	SearchBugs(ctx context.Context, params url.Values) ([]domain.Bug, error)
}

// BugzillaGateway is the concrete implementation of the BugSearcher interface.
type BugzillaGateway struct {
	baseURL string
	client  *http.Client
	pacing  Pacing
	logger  *log.Logger
}

type restSearchResponse struct {
	Bugs []domain.Bug `json:"bugs"`
}

// NewBugzillaGateway is a constructor that creates a new instance of BugzillaGateway.
func NewBugzillaGateway(baseURL string, pacing Pacing, logger *log.Logger) *BugzillaGateway {
	return &BugzillaGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
		pacing:  pacing,
		logger:  logger,
	}
}

func (b *BugzillaGateway) BuglistURL(params url.Values) string {
	return b.baseURL + "/buglist.cgi?" + params.Encode()
}

// CountBugs scrapes the result count from the buglist HTML page.
// A page without a readable count is treated as zero matches.
func (b *BugzillaGateway) CountBugs(ctx context.Context, params url.Values) (int, error) {
	body, err := b.get(ctx, b.BuglistURL(params), "Bugzilla buglist")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch Bugzilla buglist: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		b.logger.Printf("  unparsable buglist page, counting zero bugs: %v", err)
		return 0, nil
	}
	text := doc.Find(resultCountSelector).First().Text()
	count := parseResultCount(text)
	b.logger.Printf("  %d bugs found on buglist page", count)
	return count, nil
}

// SearchBugs calls the REST bug search.
func (b *BugzillaGateway) SearchBugs(ctx context.Context, params url.Values) ([]domain.Bug, error) {
	body, err := b.get(ctx, b.baseURL+"/rest/bug?"+params.Encode(), "Bugzilla REST search")
	if err != nil {
		return nil, fmt.Errorf("failed to search Bugzilla with REST API: %w", err)
	}
	var resp restSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode Bugzilla REST response: %w", err)
	}
	return resp.Bugs, nil
}

func (b *BugzillaGateway) get(ctx context.Context, target, what string) ([]byte, error) {
	var body []byte
	err := b.pacing.do(ctx, b.logger, what, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", UserAgent)
		resp, err := b.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// parseResultCount reads counts like "42 bugs found." or "One bug found.".
func parseResultCount(text string) int {
	if m := leadingNumber.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	if strings.HasPrefix(strings.TrimSpace(text), "One bug") {
		return 1
	}
	return 0
}
