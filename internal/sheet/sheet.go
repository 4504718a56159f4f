// Package sheet reads the website list and writes the report as CSV files.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/naka-gawa/bugcount-report/internal/domain"
)

// exportLayout names report files after the time the run started.
const exportLayout = "20060102-150405"

// LoadWebsites reads the first column of the CSV file at path.
// The first row is a header and is skipped, as are blank entries.
func LoadWebsites(path string) ([]domain.Website, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open website list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	websites := []domain.Website{}
	for line := 0; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read website list: %w", err)
		}
		if line == 0 || len(record) == 0 {
			continue
		}
		site := strings.TrimSpace(record[0])
		if site == "" {
			continue
		}
		websites = append(websites, domain.Website(site))
	}
	return websites, nil
}

// ExportPath returns the report file path for a run started at now.
func ExportPath(dir string, now time.Time) string {
	return filepath.Join(dir, now.Format(exportLayout)+".csv")
}

// WriteReport writes header and rows to path, creating its directory if needed.
// Nothing is written unless every row is available.
func WriteReport(path string, header []string, rows []domain.Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close report: %w", cerr))
		}
	}()

	return writeRecords(f, header, rows)
}

func writeRecords(out io.Writer, header []string, rows []domain.Row) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write report row for %s: %w", row.Website, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
