package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_String(t *testing.T) {
	testCases := []struct {
		name     string
		cell     Cell
		expected string
	}{
		{
			name:     "bare zero without link",
			cell:     Cell{},
			expected: "0",
		},
		{
			name:     "count with link",
			cell:     Cell{Count: 3, URL: "https://example.com/q?a=b"},
			expected: `=HYPERLINK("https://example.com/q?a=b"; 3)`,
		},
		{
			name:     "zero with link keeps the link",
			cell:     Cell{Count: 0, URL: "https://example.com"},
			expected: `=HYPERLINK("https://example.com"; 0)`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.cell.String())
		})
	}
}

func TestRow_Record(t *testing.T) {
	row := Row{
		Website: "example.com",
		Cells:   []Cell{{Count: 1, URL: "u"}, {Count: 0}},
	}
	assert.Equal(t, []string{"example.com", `=HYPERLINK("u"; 1)`, "0"}, row.Record())
}
