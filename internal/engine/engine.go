// Package engine executes validated analysis plans against a loaded
// dataset session. The session is read-only for the engine; every
// execution is a pure function of the validated plan and the frame, so
// independent queries can run concurrently against one session.
package engine

import (
	"fmt"

	"github.com/UShah1996/AI-HOPE/domain/core"
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
)

// Engine runs the three analysis modes.
type Engine struct {
	log *internal.Logger
	th  config.Thresholds
}

// New creates an engine with the configured thresholds
func New(log *internal.Logger, th config.Thresholds) *Engine {
	return &Engine{log: log, th: th}
}

// Execute runs the validated plan against the session and returns a
// structured result, or a categorized execution error. It never returns
// partial or NaN-filled results.
func (e *Engine) Execute(vp *plan.ValidatedPlan, sess *dataset.Session) (*result.AnalysisResult, error) {
	rows := e.filterRows(vp.Filter, sess.Frame)
	e.log.Debug("executing %s on %s: %d of %d rows after filter", vp.Mode, sess.Name, len(rows), sess.Frame.RowCount())

	res := &result.AnalysisResult{
		ID:         core.AnalysisID(core.NewID()),
		Dataset:    sess.Name,
		Mode:       vp.Mode,
		ComputedAt: core.Now(),
	}

	var err error
	switch vp.Mode {
	case plan.ModeSurvival:
		res.Survival, err = e.runSurvival(vp, sess, rows)
		if res.Survival != nil {
			res.TestedVariables = []string{vp.Plan.GroupBy, vp.Plan.TimeCol, vp.Plan.EventCol}
		}
	case plan.ModeCaseControl:
		res.CaseControl, err = e.runCaseControl(vp, sess, rows)
		if res.CaseControl != nil {
			res.TestedVariables = caseControlVariables(vp)
		}
	case plan.ModeAssociationScan:
		res.Scan, err = e.runAssociationScan(vp, sess, rows)
		if res.Scan != nil {
			for _, entry := range res.Scan.Entries {
				res.TestedVariables = append(res.TestedVariables, entry.Variable)
			}
		}
	default:
		err = fmt.Errorf("%w: mode %s has no handler", core.ErrExecution, vp.Mode)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// filterRows returns the indices of rows passing the optional filter
func (e *Engine) filterRows(filter plan.Expr, frame *dataset.Frame) []int {
	rows := make([]int, 0, frame.RowCount())
	for i := 0; i < frame.RowCount(); i++ {
		if filter == nil || filter.Eval(rowGetter(frame, i)) {
			rows = append(rows, i)
		}
	}
	return rows
}

func rowGetter(frame *dataset.Frame, row int) func(string) (string, bool) {
	return func(col string) (string, bool) {
		return frame.Value(row, col)
	}
}

func caseControlVariables(vp *plan.ValidatedPlan) []string {
	vars := []string{vp.Plan.Target}
	seen := map[string]bool{vp.Plan.Target: true}
	for _, cmp := range []*plan.Comparison{vp.Case, vp.Control} {
		if cmp != nil && !seen[cmp.Column] {
			seen[cmp.Column] = true
			vars = append(vars, cmp.Column)
		}
	}
	return vars
}
