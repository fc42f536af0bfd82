// Package safety validates candidate analysis plans against a dataset
// schema. Every rejection is a typed, categorized error; the validator
// never raises an unqualified failure.
package safety

import (
	"fmt"
	"strings"

	"github.com/UShah1996/AI-HOPE/domain/core"
)

// UnknownModeError rejects a plan whose mode is absent or unrecognized.
type UnknownModeError struct {
	Mode      string
	Supported []string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unsupported analysis mode %q, supported modes: %s", e.Mode, strings.Join(e.Supported, ", "))
}

func (e *UnknownModeError) Unwrap() error { return core.ErrPlanRejected }

// MissingFieldError rejects a plan missing a field its mode requires.
type MissingFieldError struct {
	Field string
	Mode  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s analysis requires field %q", e.Mode, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return core.ErrPlanRejected }

// UnknownColumnError rejects a plan field that names a column absent from
// the schema. Candidates always carries the complete list of valid column
// names so the caller can render "available columns" without re-deriving
// them.
type UnknownColumnError struct {
	Field      string
	Value      string
	Candidates []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q (field %s) not found in dataset, available columns: %s",
		e.Value, e.Field, strings.Join(e.Candidates, ", "))
}

func (e *UnknownColumnError) Unwrap() error { return core.ErrPlanRejected }

// TypeMismatchError rejects a column whose inferred kind cannot serve the
// role the plan assigns it.
type TypeMismatchError struct {
	Field  string
	Column string
	Want   string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q (field %s) must be %s, but is %s", e.Column, e.Field, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return core.ErrPlanRejected }

// UnknownValueError rejects a condition value never observed in the
// referenced variable.
type UnknownValueError struct {
	Variable string
	Value    string
	Observed []string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("value %q never observed in variable %q, observed values: %s",
		e.Value, e.Variable, strings.Join(e.Observed, ", "))
}

func (e *UnknownValueError) Unwrap() error { return core.ErrPlanRejected }

// OverlappingCohortError rejects case/control predicates that are not
// mutually exclusive. Overlap is a correctness bug in the generated plan,
// not a warning.
type OverlappingCohortError struct {
	Case    string
	Control string
	Detail  string
}

func (e *OverlappingCohortError) Error() string {
	return fmt.Sprintf("case condition %q and control condition %q overlap: %s", e.Case, e.Control, e.Detail)
}

func (e *OverlappingCohortError) Unwrap() error { return core.ErrPlanRejected }

// FilterSyntaxError rejects a filter or condition expression outside the
// supported grammar.
type FilterSyntaxError struct {
	Expression string
	Detail     string
}

func (e *FilterSyntaxError) Error() string {
	return fmt.Sprintf("malformed expression %q: %s", e.Expression, e.Detail)
}

func (e *FilterSyntaxError) Unwrap() error { return core.ErrPlanRejected }
