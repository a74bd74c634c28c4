// Package source reads results tables and route tracks from files.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/parkstats/internal/domain/model"
)

// Sentinel kinds for source errors.
var (
	ErrEmptyResults = errors.New("results file has no header row")
	ErrReadResults  = errors.New("read results failed")
	ErrReadRoute    = errors.New("read route failed")
)

// LoadResultsCSV reads a results table whose first row is the header.
// Cells are trimmed; blank lines are skipped.
func LoadResultsCSV(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %w", ErrReadResults, err)
	}
	if len(rows) == 0 {
		return model.Table{}, ErrEmptyResults
	}

	t := model.Table{Columns: trimAll(rows[0])}
	// The header may start with a UTF-8 byte order mark when exported from a spreadsheet.
	if len(t.Columns) > 0 {
		t.Columns[0] = strings.TrimPrefix(t.Columns[0], "\ufeff")
	}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, trimAll(row))
	}
	return t, nil
}

// LoadResultsFile opens path and reads it with LoadResultsCSV.
func LoadResultsFile(path string) (model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %w", ErrReadResults, err)
	}
	defer func() { _ = f.Close() }()
	return LoadResultsCSV(f)
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
