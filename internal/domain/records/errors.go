package records

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSchema        = errors.New("schema error")
	ErrRunDate       = fmt.Errorf("%w: unparseable run date", ErrSchema)
	ErrRunNumberType = errors.New("run number is not an integer")
)

// SchemaError reports required columns missing from a results table, or a
// row that does not match the header.
type SchemaError struct {
	Missing []string
	Row     int
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("results did not contain expected columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Unwrap lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Unwrap() error { return ErrSchema }
