package stats

import (
	"errors"
	"fmt"
)

// Sentinel kinds for metric errors. Every one of them wraps ErrArithmetic.
var (
	ErrArithmetic            = errors.New("arithmetic error")
	ErrNoRecords             = fmt.Errorf("%w: no records", ErrArithmetic)
	ErrNotEnoughRecords      = fmt.Errorf("%w: at least two records are needed", ErrArithmetic)
	ErrZeroTotalTime         = fmt.Errorf("%w: total time is zero", ErrArithmetic)
	ErrZeroDistance          = fmt.Errorf("%w: total distance is zero", ErrArithmetic)
	ErrZeroTimeSpan          = fmt.Errorf("%w: first and last run are on the same day", ErrArithmetic)
	ErrInvalidUnitConversion = fmt.Errorf("%w: unit conversion must be positive", ErrArithmetic)
)
