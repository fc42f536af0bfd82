// Package schema defines the validated description of a dataset's columns,
// kinds, and observed values. A loaded DatasetSchema is the single source of
// truth for "does this column exist" during plan validation; it is built
// once per dataset and never mutated afterwards, so it is safe to share
// across concurrent validation and execution calls.
package schema

import "fmt"

// Kind classifies a dataset column for test selection and semantic checks.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindSurvivalTime
	KindSurvivalEvent
)

// String returns the canonical name of the kind
func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindSurvivalTime:
		return "survival-time"
	case KindSurvivalEvent:
		return "survival-event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler so kinds render as their
// canonical names in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsNumericLike reports whether values of this kind order as numbers
func (k Kind) IsNumericLike() bool {
	return k == KindNumeric || k == KindSurvivalTime
}

// IsCategoricalLike reports whether values of this kind form discrete levels
func (k Kind) IsCategoricalLike() bool {
	return k == KindCategorical || k == KindSurvivalEvent
}

// VariableDescriptor describes one dataset column.
type VariableDescriptor struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description,omitempty"`
	// Values holds a capped sample of distinct observed values for
	// categorical and survival-event columns, used for error messages,
	// fuzzy correction, and condition-value checks. Empty for numeric
	// columns.
	Values []string `json:"values,omitempty"`
}

// HasValue reports whether v appears in the observed value sample
func (d VariableDescriptor) HasValue(v string) bool {
	for _, have := range d.Values {
		if have == v {
			return true
		}
	}
	return false
}

// DatasetSchema is the immutable, session-scoped schema of one dataset.
type DatasetSchema struct {
	Name string `json:"name"`
	// Columns preserves table header order.
	Columns []string `json:"columns"`
	// Variables maps column name to its descriptor. Its key set is the
	// single source of truth for column existence.
	Variables map[string]VariableDescriptor `json:"variables"`
}

// Has reports whether col is a real column of the backing table
func (s *DatasetSchema) Has(col string) bool {
	_, ok := s.Variables[col]
	return ok
}

// Variable returns the descriptor for col
func (s *DatasetSchema) Variable(col string) (VariableDescriptor, bool) {
	d, ok := s.Variables[col]
	return d, ok
}

// ColumnNames returns the column names in header order. The returned slice
// is a copy; callers may not mutate schema state through it.
func (s *DatasetSchema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	copy(out, s.Columns)
	return out
}
