// Package model contains domain models passed between layers.
package model

import "time"

// Column names of a results table, as printed on a parkrunner's results page.
const (
	ColumnEvent     = "Event"
	ColumnRunDate   = "Run Date"
	ColumnRunNumber = "Run Number"
	ColumnPosition  = "Pos"
	ColumnTime      = "Time"
)

// RequiredColumns lists the columns every results table must carry.
var RequiredColumns = []string{ //nolint:gochecknoglobals // read-only column list
	ColumnEvent,
	ColumnRunDate,
	ColumnRunNumber,
	ColumnPosition,
	ColumnTime,
}

// Table is a raw tabular record set as handed over by a record source.
// Cells are kept as text; typing happens during normalization.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RaceRecord is one untyped row of a results table.
type RaceRecord struct {
	Event     string // event name, e.g. "Bushy Park"
	RunDate   string // day-first calendar date
	RunNumber string // edition index of the event, >= 1
	Position  string // finishing position; format is not interpreted
	Time      string // finish time, [H:]MM:SS
}

// NormalizedRecord is a validated RaceRecord with derived fields.
type NormalizedRecord struct {
	Event     string    `json:"event"`
	RunDate   time.Time `json:"run_date"`
	RunNumber int       `json:"run_number"`
	Position  string    `json:"position"`
	Time      string    `json:"time"`

	DurationSeconds int `json:"duration_seconds"`

	// GapDays is the number of days since the chronologically previous
	// record. HasGap is false for the earliest record, whose gap is undefined.
	GapDays int  `json:"gap_days"`
	HasGap  bool `json:"has_gap"`
}
