package dataset

import (
	"fmt"
	"strings"

	"github.com/UShah1996/AI-HOPE/domain/core"
)

// DatasetNotFoundError reports that neither the canonical nor the fallback
// table file exists in the dataset directory.
type DatasetNotFoundError struct {
	Dir   string
	Tried []string
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("dataset table not found in %s (tried %s)", e.Dir, strings.Join(e.Tried, ", "))
}

func (e *DatasetNotFoundError) Unwrap() error { return core.ErrData }

// SchemaParseError reports that the dataset's column manifest or table
// header could not be parsed. Fatal to the dataset session.
type SchemaParseError struct {
	Path   string
	Detail string
	Err    error
}

func (e *SchemaParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %s: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("cannot parse %s: %s", e.Path, e.Detail)
}

func (e *SchemaParseError) Unwrap() error { return core.ErrData }
