// Package query builds the Bugzilla and GitHub searches behind each report column.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/bugcount-report/internal/domain"
)

const (
	// MaxSearchLength is the longest URL-encoded q parameter sent to the GitHub issue search.
	MaxSearchLength = 256

	// DuplicateMilestone is the web-bugs milestone for issues closed as duplicates.
	DuplicateMilestone = "duplicate"

	// DuplicateSearchPrefix starts every batched duplicate search.
	DuplicateSearchPrefix = "is:issue milestone:" + DuplicateMilestone + " repo:" + webBugsRepo

	webBugsRepo = "webcompat/web-bugs/"
	githubWeb   = "https://github.com"
	bugzillaDay = "2006-01-02"
)

// OpenStatuses are the Bugzilla statuses of bugs still waiting on a fix.
var OpenStatuses = []string{"UNCONFIRMED", "NEW", "ASSIGNED", "REOPENED"}

// SeeAlsoMarkers identify see-also links that point at webcompat issues.
var SeeAlsoMarkers = []string{"webcompat.com", "github.com/webcompat"}

var geckoProducts = []string{
	"Core",
	"Fenix",
	"Firefox for Android",
	"Firefox for Echo Show",
	"Firefox for FireTV",
	"Firefox for iOS",
	"GeckoView",
	"Web Compatibility",
}

// SearchWords turns a domain into the words GitHub search matches titles against.
// GitHub tokenizes on dots, so "example.com" becomes "example com".
func SearchWords(site domain.Website) string {
	return strings.ReplaceAll(string(site), ".", " ")
}

// FreshBugs returns buglist.cgi parameters for open Gecko bugs about site created after since.
func FreshBugs(site domain.Website, since time.Time) url.Values {
	v := url.Values{}
	v.Set("query_format", "advanced")
	v.Set("bug_file_loc_type", "allwordssubstr")
	v.Set("bug_file_loc", string(site))
	v.Set("resolution", "---")
	v["bug_status"] = append([]string(nil), OpenStatuses...)
	v["product"] = append([]string(nil), geckoProducts...)
	v.Set("f3", "creation_ts")
	v.Set("o3", "greaterthan")
	v.Set("v3", since.Format(bugzillaDay))
	v.Set("keywords_type", "nowords")
	v.Set("keywords", "meta, ")
	v.Set("status_whiteboard_type", "notregexp")
	v.Set("status_whiteboard", `sci\-exclude`)
	return v
}

// SeeAlsoBugs returns REST parameters for open bugs about site that carry
// at least one webcompat see-also link. Only id and see_also are returned.
func SeeAlsoBugs(site domain.Website) url.Values {
	v := url.Values{}
	v.Set("include_fields", "id,see_also")
	v.Set("f1", "see_also")
	v.Set("o1", "anywordssubstr")
	v.Set("v1", strings.Join(SeeAlsoMarkers, ","))
	v.Set("f2", "bug_status")
	v.Set("o2", "anywordssubstr")
	v.Set("v2", strings.Join(OpenStatuses, ","))
	v.Set("f3", "bug_file_loc")
	v.Set("o3", "casesubstring")
	v.Set("v3", string(site))
	v.Set("limit", "0")
	return v
}

// BugList returns buglist.cgi parameters listing exactly the given bug ids.
func BugList(ids []int) url.Values {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	v := url.Values{}
	v.Set("f1", "bug_id")
	v.Set("o1", "anyexact")
	v.Set("v1", strings.Join(parts, ","))
	return v
}

// WebcompatIssues searches open engine-gecko web-bugs issues mentioning site in the title.
func WebcompatIssues(site domain.Website) string {
	return SearchWords(site) + " in:title repo:" + webBugsRepo + " state:open label:engine-gecko"
}

// SevereIssues narrows WebcompatIssues to severity-critical issues.
func SevereIssues(site domain.Website) string {
	return SearchWords(site) + " in:title repo:" + webBugsRepo + " is:open label:severity-critical label:engine-gecko"
}

// NeedsDiagnosisIssues narrows WebcompatIssues to the needsdiagnosis milestone.
func NeedsDiagnosisIssues(site domain.Website) string {
	return WebcompatIssues(site) + " milestone:needsdiagnosis"
}

// GitHubSearchLink is the github.com page showing the results of an issue search.
func GitHubSearchLink(q string) string {
	return githubWeb + "/search?q=" + url.QueryEscape(q) + "&type=Issues"
}

// WebBugsLink is the web-bugs issue list filtered by q.
func WebBugsLink(q string) string {
	return githubWeb + "/" + strings.TrimSuffix(webBugsRepo, "/") + "/issues?q=" + url.QueryEscape(q)
}

// EncodedLength is the length of q once URL-encoded as a query parameter.
func EncodedLength(q string) int {
	return len(url.QueryEscape(q))
}
