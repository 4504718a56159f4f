package domain

// Bug is a Bugzilla bug as returned by the REST search.
type Bug struct {
	ID      int      `json:"id"`
	SeeAlso []string `json:"see_also"`
}

// Issue is a GitHub issue as returned by the issue search.
// Milestone is empty when the issue has none.
type Issue struct {
	Number    int
	Milestone string
}

// IssuePage is a single page of GitHub issue search results.
type IssuePage struct {
	Total      int
	Incomplete bool
	Issues     []Issue
}

// Candidate pairs a GitHub issue number with the Bugzilla bug whose
// see-also link referenced it.
type Candidate struct {
	IssueNumber int
	BugID       int
}

// Batch is one GitHub search covering several candidate issues.
// Bugs maps each issue number in the query to the Bugzilla bugs that reference it.
type Batch struct {
	Query string
	Bugs  map[int][]int
}
