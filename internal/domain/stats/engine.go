// Package stats computes aggregate and derived metrics over a parkrunner's
// normalized results.
package stats

import (
	"math"
	"slices"

	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/records"
	"github.com/okian/parkstats/internal/domain/timecodec"
	"github.com/okian/parkstats/internal/domain/types"
)

// Default engine configuration constants.
const (
	// DefaultEventDistance is the length of one parkrun in kilometers.
	DefaultEventDistance = 5.0
	// MileConversion is the number of miles in a kilometer.
	MileConversion = 0.621371

	daysPerWeek    = 7
	secondsPerHour = 3600
)

// Engine answers metric queries over an immutable, date-ordered record
// sequence. All methods are pure reads and safe for concurrent use.
type Engine struct {
	records       []model.NormalizedRecord
	eventDistance float64
}

// New normalizes t and builds an Engine over it. Any normalization error
// aborts construction and no Engine is returned.
func New(t model.Table, opts ...Option) (*Engine, error) {
	recs, err := records.Normalize(t)
	if err != nil {
		return nil, err
	}
	return newEngine(recs, opts...), nil
}

func newEngine(recs []model.NormalizedRecord, opts ...Option) *Engine {
	e := &Engine{
		records:       recs,
		eventDistance: DefaultEventDistance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Records returns a copy of the normalized records in date order.
func (e *Engine) Records() []model.NormalizedRecord {
	return slices.Clone(e.records)
}

// Len returns the number of records.
func (e *Engine) Len() int { return len(e.records) }

// EventDistance returns the configured distance of one event in kilometers.
func (e *Engine) EventDistance() float64 { return e.eventDistance }

// TotalDistance returns the distance covered across all records, in kilometers.
func (e *Engine) TotalDistance() float64 {
	return e.eventDistance * float64(len(e.records))
}

// TotalTimeSeconds sums every finish time.
func (e *Engine) TotalTimeSeconds() int {
	total := 0
	for _, r := range e.records {
		total += r.DurationSeconds
	}
	return total
}

// TotalTime returns TotalTimeSeconds as hours, minutes and seconds.
func (e *Engine) TotalTime() timecodec.HMS {
	return timecodec.DecomposeSeconds(e.TotalTimeSeconds())
}

// AverageSpeedPerHour returns kilometers per hour over all records.
func (e *Engine) AverageSpeedPerHour() (float64, error) {
	secs := e.TotalTimeSeconds()
	if secs == 0 {
		return 0, ErrZeroTotalTime
	}
	return e.TotalDistance() / float64(secs) * secondsPerHour, nil
}

// AveragePacePerUnitDistance returns the average time per distance unit,
// where unitConversion is the number of target units in a kilometer
// (1 for kilometers, MileConversion for miles). The pace is rounded to whole
// seconds with ties going to the even second.
func (e *Engine) AveragePacePerUnitDistance(unitConversion float64) (timecodec.HMS, error) {
	if unitConversion <= 0 || math.IsNaN(unitConversion) {
		return timecodec.HMS{}, ErrInvalidUnitConversion
	}
	dist := e.TotalDistance()
	if dist == 0 {
		return timecodec.HMS{}, ErrZeroDistance
	}
	secs := math.RoundToEven(float64(e.TotalTimeSeconds()) / dist / unitConversion)
	return timecodec.DecomposeSeconds(int(secs)), nil
}

// AveragePacePerKm is the average time per kilometer.
func (e *Engine) AveragePacePerKm() (timecodec.HMS, error) {
	return e.AveragePacePerUnitDistance(1)
}

// AveragePacePerMile is the average time per mile.
func (e *Engine) AveragePacePerMile() (timecodec.HMS, error) {
	return e.AveragePacePerUnitDistance(MileConversion)
}

// LongestGapWeeks returns the longest break between two runs, in weeks.
func (e *Engine) LongestGapWeeks() (float64, error) {
	if len(e.records) < 2 {
		return 0, ErrNotEnoughRecords
	}
	longest := 0
	for _, r := range e.records[1:] {
		longest = max(longest, r.GapDays)
	}
	return float64(longest) / daysPerWeek, nil
}

// LongestStreak returns the number of weeks in the longest run of
// attendances without a break of more than seven days, plus one for the
// opening week. Gaps inside a streak are summed, so extra runs in a week do
// not inflate the count.
//
// The streak still open after the last record is never compared, so a
// history with no break longer than a week reports 0.
func (e *Engine) LongestStreak() int {
	longest := -1
	current := 0
	for _, r := range e.records[min(1, len(e.records)):] {
		if r.GapDays <= daysPerWeek {
			current += r.GapDays
			continue
		}
		longest = max(longest, current/daysPerWeek)
		current = 0
	}
	return longest + 1
}

// ParkrunsPerWeek returns the number of runs per week between the first and
// the last run.
func (e *Engine) ParkrunsPerWeek() (float64, error) {
	if len(e.records) == 0 {
		return 0, ErrZeroTimeSpan
	}
	days := records.DaysBetween(e.records[0].RunDate, e.records[len(e.records)-1].RunDate)
	if days == 0 {
		return 0, ErrZeroTimeSpan
	}
	weeks := float64(days) / daysPerWeek
	return float64(len(e.records)) / weeks, nil
}

// AverageGapWeeks returns the mean break between consecutive runs, in weeks.
func (e *Engine) AverageGapWeeks() (float64, error) {
	if len(e.records) < 2 {
		return 0, ErrNotEnoughRecords
	}
	sum := 0
	for _, r := range e.records[1:] {
		sum += r.GapDays
	}
	mean := float64(sum) / float64(len(e.records)-1)
	return mean / daysPerWeek, nil
}

// DifferentEventCount returns the number of distinct events run.
func (e *Engine) DifferentEventCount() int {
	seen := make(map[string]struct{}, len(e.records))
	for _, r := range e.records {
		seen[r.Event] = struct{}{}
	}
	return len(seen)
}

// EventCounts returns how often each event was run, highest count first.
// Events with equal counts stay in the order they were first run.
func (e *Engine) EventCounts() []types.EventCount {
	index := make(map[string]int)
	var counts []types.EventCount
	for _, r := range e.records {
		i, ok := index[r.Event]
		if !ok {
			i = len(counts)
			index[r.Event] = i
			counts = append(counts, types.EventCount{Event: r.Event})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b types.EventCount) int {
		return b.Count - a.Count
	})
	return counts
}

// MostPopularEvent returns the most frequently run event. Ties go to the
// event that was run first.
func (e *Engine) MostPopularEvent() (types.EventCount, error) {
	counts := e.EventCounts()
	if len(counts) == 0 {
		return types.EventCount{}, ErrNoRecords
	}
	return counts[0], nil
}

// FirstEvent returns the event of the earliest run.
func (e *Engine) FirstEvent() (string, error) {
	if len(e.records) == 0 {
		return "", ErrNoRecords
	}
	return e.records[0].Event, nil
}

// EventWithMinRunNumber returns the run with the lowest edition index. Ties
// go to the earliest such run.
func (e *Engine) EventWithMinRunNumber() (types.EventRunNumber, error) {
	byNumber := e.sortedByRunNumber()
	if len(byNumber) == 0 {
		return types.EventRunNumber{}, ErrNoRecords
	}
	return byNumber[0], nil
}

// EventWithMaxRunNumber returns the run with the highest edition index. Ties
// go to the latest such run.
func (e *Engine) EventWithMaxRunNumber() (types.EventRunNumber, error) {
	byNumber := e.sortedByRunNumber()
	if len(byNumber) == 0 {
		return types.EventRunNumber{}, ErrNoRecords
	}
	return byNumber[len(byNumber)-1], nil
}

func (e *Engine) sortedByRunNumber() []types.EventRunNumber {
	out := make([]types.EventRunNumber, len(e.records))
	for i, r := range e.records {
		out[i] = types.EventRunNumber{Event: r.Event, RunNumber: r.RunNumber}
	}
	slices.SortStableFunc(out, func(a, b types.EventRunNumber) int {
		return a.RunNumber - b.RunNumber
	})
	return out
}
