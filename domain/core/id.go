package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AnalysisID  ID
	DatasetName string
	ColumnName  string
)

func (id AnalysisID) String() string { return ID(id).String() }
func (n DatasetName) String() string { return string(n) }
func (c ColumnName) String() string  { return string(c) }

// ParseColumnName parses a string into a ColumnName
func ParseColumnName(s string) (ColumnName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column name cannot be empty")
	}
	return ColumnName(strings.TrimSpace(s)), nil
}
