package engine

import (
	"fmt"

	"github.com/UShah1996/AI-HOPE/domain/core"
)

// UnsupportedGroupCountError reports that the grouping variable did not
// yield enough distinct groups to compare.
type UnsupportedGroupCountError struct {
	GroupBy string
	Got     int
	Min     int
}

func (e *UnsupportedGroupCountError) Error() string {
	return fmt.Sprintf("grouping variable %q yields %d group(s), need at least %d", e.GroupBy, e.Got, e.Min)
}

func (e *UnsupportedGroupCountError) Unwrap() error { return core.ErrExecution }

// InsufficientSampleError reports a cohort too small for a statistically
// meaningful result; the engine raises it instead of returning one.
type InsufficientSampleError struct {
	Cohort string
	N      int
	Min    int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("cohort %q has %d sample(s), need at least %d", e.Cohort, e.N, e.Min)
}

func (e *InsufficientSampleError) Unwrap() error { return core.ErrExecution }
