// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strconv"
)

// Website is a domain name as listed in the input sheet. It identifies one report row.
type Website string

// Header holds the column titles of the generated report, in output order.
var Header = []string{
	"Website",
	"fresh 🐞s",
	"webcompat.com 🐞s",
	"severity-critical 🐞s",
	"needsdiagnosis 🐞s",
	"duplicate 🐞s",
}

// Cell is a single report value: a count, optionally paired with the URL
// of the search that produced it.
type Cell struct {
	Count int
	URL   string
}

// String renders the cell for spreadsheet display.
// Cells without a URL are rendered as the bare count.
func (c Cell) String() string {
	if c.URL == "" {
		return strconv.Itoa(c.Count)
	}
	return fmt.Sprintf(`=HYPERLINK("%s"; %d)`, c.URL, c.Count)
}

// Row is one line of the report. It is built once and never mutated.
type Row struct {
	Website Website
	Cells   []Cell
}

// Record flattens the row into CSV fields.
func (r Row) Record() []string {
	record := make([]string, 0, len(r.Cells)+1)
	record = append(record, string(r.Website))
	for _, c := range r.Cells {
		record = append(record, c.String())
	}
	return record
}
