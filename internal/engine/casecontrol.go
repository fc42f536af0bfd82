package engine

import (
	"fmt"
	"sort"

	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
	"github.com/UShah1996/AI-HOPE/internal/safety"
)

// runCaseControl builds the case and control cohorts from their validated
// predicates, re-checks disjointness on real rows, and computes the 2x2
// odds ratio with the expected-count-driven choice of exact or chi-square
// test.
func (e *Engine) runCaseControl(vp *plan.ValidatedPlan, sess *dataset.Session, rows []int) (*result.CaseControlResult, error) {
	var caseRows, controlRows []int
	overlapCount := 0
	for _, row := range rows {
		get := rowGetter(sess.Frame, row)
		inCase := vp.Case.Eval(get)
		inControl := vp.Control.Eval(get)
		switch {
		case inCase && inControl:
			overlapCount++
		case inCase:
			caseRows = append(caseRows, row)
		case inControl:
			controlRows = append(controlRows, row)
		}
	}
	if overlapCount > 0 {
		return nil, &safety.OverlappingCohortError{
			Case:    vp.Plan.CaseCondition,
			Control: vp.Plan.ControlCondition,
			Detail:  fmt.Sprintf("%d sample row(s) satisfy both conditions", overlapCount),
		}
	}
	if len(caseRows) < e.th.MinCohortSize {
		return nil, &InsufficientSampleError{Cohort: "case", N: len(caseRows), Min: e.th.MinCohortSize}
	}
	if len(controlRows) < e.th.MinCohortSize {
		return nil, &InsufficientSampleError{Cohort: "control", N: len(controlRows), Min: e.th.MinCohortSize}
	}

	positive, err := e.targetClassifier(vp.Plan.Target, sess, append(append([]int(nil), caseRows...), controlRows...))
	if err != nil {
		return nil, err
	}

	count := func(cohort []int) (exposed, unexposed float64) {
		for _, row := range cohort {
			v, ok := sess.Frame.Value(row, vp.Plan.Target)
			if !ok {
				continue
			}
			if positive.isPositive(v) {
				exposed++
			} else {
				unexposed++
			}
		}
		return exposed, unexposed
	}

	a, b := count(caseRows)
	c, d := count(controlRows)

	table := result.ContingencyTable{CaseExposed: a, CaseUnexposed: b, ControlExposed: c, ControlUnexposed: d}
	oa, ob, oc, od := a, b, c, d
	if a == 0 || b == 0 || c == 0 || d == 0 {
		corr := e.th.ContinuityCorrection
		oa, ob, oc, od = a+corr, b+corr, c+corr, d+corr
		table.Corrected = true
	}
	oddsRatio := (oa * od) / (ob * oc)

	statistic, _, chiP, minExpected := chiSquareContingency([][]float64{{a, b}, {c, d}})
	cc := &result.CaseControlResult{
		Target:        vp.Plan.Target,
		PositiveLevel: positive.level,
		Case:          vp.Plan.CaseCondition,
		Control:       vp.Plan.ControlCondition,
		CaseN:         len(caseRows),
		ControlN:      len(controlRows),
		Table:         table,
		OddsRatio:     oddsRatio,
	}

	if minExpected < e.th.MinExpectedCellCount {
		cc.Test = result.TestFisherExact
		cc.Statistic = oddsRatio
		cc.PValue = fisherExact(int(a), int(b), int(c), int(d))
	} else {
		cc.Test = result.TestChiSquare
		cc.Statistic = statistic
		cc.PValue = chiP
	}
	return cc, nil
}

// targetClassifier decides what "exposed" means for the target variable.
// The target must be binary-izable: a survival-event column, a numeric 0/1
// column, or a categorical with exactly two observed levels.
type targetClassifier struct {
	level      string
	isPositive func(string) bool
}

func (e *Engine) targetClassifier(target string, sess *dataset.Session, rows []int) (*targetClassifier, error) {
	v, _ := sess.Schema.Variable(target)

	switch v.Kind {
	case schema.KindSurvivalEvent:
		return &targetClassifier{
			level: "event",
			isPositive: func(raw string) bool {
				event, ok := dataset.ParseEventIndicator(raw)
				return ok && event
			},
		}, nil

	case schema.KindNumeric:
		for _, row := range rows {
			raw, ok := sess.Frame.Value(row, target)
			if !ok {
				continue
			}
			if n, ok := dataset.ParseNumeric(raw); !ok || (n != 0 && n != 1) {
				return nil, &safety.TypeMismatchError{
					Field:  "target",
					Column: target,
					Want:   "binary (0/1)",
					Got:    fmt.Sprintf("numeric with value %q", raw),
				}
			}
		}
		return &targetClassifier{
			level: "1",
			isPositive: func(raw string) bool {
				n, ok := dataset.ParseNumeric(raw)
				return ok && n == 1
			},
		}, nil

	case schema.KindCategorical:
		levels := map[string]bool{}
		for _, row := range rows {
			if raw, ok := sess.Frame.Value(row, target); ok {
				levels[raw] = true
			}
		}
		if len(levels) != 2 {
			return nil, &safety.TypeMismatchError{
				Field:  "target",
				Column: target,
				Want:   "binary (two levels)",
				Got:    fmt.Sprintf("categorical with %d level(s)", len(levels)),
			}
		}
		names := make([]string, 0, 2)
		for l := range levels {
			names = append(names, l)
		}
		sort.Strings(names)
		positive := names[1] // lexically latter level counts as exposure
		return &targetClassifier{
			level:      positive,
			isPositive: func(raw string) bool { return raw == positive },
		}, nil

	default:
		return nil, &safety.TypeMismatchError{
			Field:  "target",
			Column: target,
			Want:   "binary",
			Got:    v.Kind.String(),
		}
	}
}
