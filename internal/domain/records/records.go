// Package records validates raw results tables and turns them into a
// chronologically ordered sequence of normalized records.
package records

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/timecodec"
)

const hoursPerDay = 24

// dateLayouts are tried in order. Numeric layouts are day-first; the ISO
// layout is unambiguous because it leads with a four-digit year.
var dateLayouts = []string{ //nolint:gochecknoglobals // read-only layout table
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2/1/06",
	"2-1-06",
	"2 January 2006",
	"2 Jan 2006",
}

// Normalize validates t and returns its rows as normalized records sorted by
// run date. Rows sharing a date keep their input order. t is never modified.
func Normalize(t model.Table) ([]model.NormalizedRecord, error) {
	raw, err := Rows(t)
	if err != nil {
		return nil, err
	}

	out := make([]model.NormalizedRecord, len(raw))
	for i, r := range raw {
		date, err := ParseRunDate(r.RunDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		runNumber, err := ParseRunNumber(r.RunNumber)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = model.NormalizedRecord{
			Event:     r.Event,
			RunDate:   date,
			RunNumber: runNumber,
			Position:  r.Position,
			Time:      r.Time,
		}
	}

	slices.SortStableFunc(out, func(a, b model.NormalizedRecord) int {
		return a.RunDate.Compare(b.RunDate)
	})

	for i := range out {
		secs, err := timecodec.ParseDuration(out[i].Time)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", out[i].Event, out[i].RunDate.Format(time.DateOnly), err)
		}
		out[i].DurationSeconds = secs
		if i > 0 {
			out[i].GapDays = DaysBetween(out[i-1].RunDate, out[i].RunDate)
			out[i].HasGap = true
		}
	}
	return out, nil
}

// Rows checks the header of t and copies its rows into RaceRecords.
func Rows(t model.Table) ([]model.RaceRecord, error) {
	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	var missing []string
	for _, c := range model.RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	width := 0
	for _, c := range model.RequiredColumns {
		width = max(width, index[c]+1)
	}

	out := make([]model.RaceRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) < width {
			return nil, &SchemaError{Row: i + 1, Reason: fmt.Sprintf("expected at least %d cells, got %d", width, len(row))}
		}
		out = append(out, model.RaceRecord{
			Event:     row[index[model.ColumnEvent]],
			RunDate:   row[index[model.ColumnRunDate]],
			RunNumber: row[index[model.ColumnRunNumber]],
			Position:  row[index[model.ColumnPosition]],
			Time:      row[index[model.ColumnTime]],
		})
	}
	return out, nil
}

// FromRecords builds a Table carrying exactly the required columns.
func FromRecords(recs []model.RaceRecord) model.Table {
	t := model.Table{
		Columns: slices.Clone(model.RequiredColumns),
		Rows:    make([][]string, 0, len(recs)),
	}
	for _, r := range recs {
		t.Rows = append(t.Rows, []string{r.Event, r.RunDate, r.RunNumber, r.Position, r.Time})
	}
	return t
}

// ParseRunDate parses a calendar date, reading ambiguous numeric dates day first.
func ParseRunDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrRunDate, s)
}

// ParseRunNumber casts a run number cell to int. Integral decimals such as
// "12.0" are accepted. Event run numbers start at 1.
func ParseRunNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f < 1 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %q", ErrRunNumberType, s)
		}
		n = int(f)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %q is below 1", ErrRunNumberType, s)
	}
	return n, nil
}

// DaysBetween returns the whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / hoursPerDay)
}
