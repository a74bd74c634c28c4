// Package timecodec converts finish times between "[H:]MM:SS" text and seconds.
package timecodec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute

	minSegments = 2
	maxSegments = 3
)

// ErrBadTimeFormat reports a finish time that is not "MM:SS" or "H:MM:SS".
var ErrBadTimeFormat = errors.New("bad time format")

// HMS is a canonical hours/minutes/seconds triple.
type HMS struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// String renders h as H:MM:SS.
func (h HMS) String() string {
	return fmt.Sprintf("%d:%02d:%02d", h.Hours, h.Minutes, h.Seconds)
}

// Clock renders h for display: "1h 2m 3s" when hours are present, else "25:07".
func (h HMS) Clock() string {
	if h.Hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", h.Hours, h.Minutes, h.Seconds)
	}
	return fmt.Sprintf("%d:%02d", h.Minutes, h.Seconds)
}

// TotalSeconds folds h back into seconds.
func (h HMS) TotalSeconds() int {
	return h.Hours*secondsPerHour + h.Minutes*secondsPerMinute + h.Seconds
}

// ParseDuration parses "MM:SS" or "H:MM:SS" into total seconds. Segments are
// read right to left: seconds, minutes, then optional hours.
func ParseDuration(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) > maxSegments {
		return 0, fmt.Errorf("%w: more than %d parts in %q", ErrBadTimeFormat, maxSegments, text)
	}
	if len(parts) < minSegments {
		return 0, fmt.Errorf("%w: missing minutes in %q", ErrBadTimeFormat, text)
	}

	total := 0
	unit := 1
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := parseSegment(parts[i])
		if err != nil {
			return 0, fmt.Errorf("%w: unable to parse %q: %w", ErrBadTimeFormat, text, err)
		}
		if n > (math.MaxInt-total)/unit {
			return 0, fmt.Errorf("%w: %q is out of range", ErrBadTimeFormat, text)
		}
		total += n * unit
		unit *= secondsPerMinute
	}
	return total, nil
}

func parseSegment(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("segment %q is not a non-negative integer", s)
	}
	return n, nil
}

// DecomposeSeconds splits total into hours, minutes and seconds with
// 0 <= minutes < 60 and 0 <= seconds < 60. Hours are floored.
func DecomposeSeconds(total int) HMS {
	hours := floorDiv(total, secondsPerHour)
	rem := total - hours*secondsPerHour
	minutes := rem / secondsPerMinute
	return HMS{
		Hours:   hours,
		Minutes: minutes,
		Seconds: rem - minutes*secondsPerMinute,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
