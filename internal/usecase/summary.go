package usecase

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/bugcount-report/internal/domain"
)

// ColumnSummary describes the spread of one count column across all websites.
type ColumnSummary struct {
	Column string
	Total  float64
	Mean   float64
	Median float64
	Max    float64
}

// Summarize computes a ColumnSummary for every count column of rows.
// header names the columns, website column first, as in domain.Header.
func Summarize(header []string, rows []domain.Row) []ColumnSummary {
	if len(header) == 0 {
		return nil
	}
	summaries := make([]ColumnSummary, 0, len(header)-1)
	for col, name := range header[1:] {
		summary := ColumnSummary{Column: name}
		data := make(stats.Float64Data, 0, len(rows))
		for _, row := range rows {
			if col < len(row.Cells) {
				data = append(data, float64(row.Cells[col].Count))
			}
		}
		if len(data) > 0 {
			summary.Total, _ = stats.Sum(data)
			summary.Mean, _ = stats.Mean(data)
			summary.Median, _ = stats.Median(data)
			summary.Max, _ = stats.Max(data)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
