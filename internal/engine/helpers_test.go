package engine

import (
	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
)

func testEngine() *Engine {
	return New(internal.NewDefaultLogger(), config.DefaultThresholds())
}

// newSession builds an in-memory session with explicitly assigned kinds;
// categorical-like variables get their distinct values sampled from the
// frame the way the loader would.
func newSession(columns []string, rows [][]string, kinds map[string]schema.Kind) *dataset.Session {
	frame := dataset.NewFrame(columns, rows)
	variables := make(map[string]schema.VariableDescriptor, len(columns))
	for _, col := range columns {
		d := schema.VariableDescriptor{Name: col, Kind: kinds[col]}
		if d.Kind.IsCategoricalLike() {
			values, _ := frame.Column(col)
			seen := map[string]bool{}
			for _, v := range values {
				if !seen[v] {
					seen[v] = true
					d.Values = append(d.Values, v)
				}
			}
		}
		variables[col] = d
	}
	return &dataset.Session{
		Name:   "test",
		Schema: &schema.DatasetSchema{Name: "test", Columns: columns, Variables: variables},
		Frame:  frame,
	}
}
