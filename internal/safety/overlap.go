package safety

import (
	"fmt"
	"math"
	"strconv"

	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/schema"
)

// Static disjointness analysis for two cohort conditions on the same
// variable. Overlap here means the predicates' satisfying value sets
// intersect; that makes the generated plan wrong regardless of which rows
// the dataset happens to contain. Categorical variables use the observed
// value sample as the domain, numeric variables use interval logic.
//
// The analysis only ever *proves* overlap. Anything it cannot decide is
// left to the engine's per-row cohort check.

func conditionsOverlap(a, b *plan.Comparison, v schema.VariableDescriptor) (bool, string) {
	aSet, aFinite := satisfyingSet(a, v)
	bSet, bFinite := satisfyingSet(b, v)

	if aFinite && bFinite {
		if common := intersect(aSet, bSet); common != "" {
			return true, fmt.Sprintf("both cohorts admit %s = %q", v.Name, common)
		}
		return false, ""
	}
	if aFinite {
		return finiteAgainstPredicate(aSet, b, v)
	}
	if bFinite {
		return finiteAgainstPredicate(bSet, a, v)
	}

	// Both predicates are infinite (negations or numeric ranges).
	ia, okA := asInterval(a)
	ib, okB := asInterval(b)
	if okA && okB {
		if ia.intersects(ib) {
			return true, fmt.Sprintf("numeric ranges on %s intersect", v.Name)
		}
		return false, ""
	}

	// Two exclusion predicates over an unobserved (numeric) domain always
	// share almost every value.
	if isExclusion(a) && isExclusion(b) && len(v.Values) == 0 {
		return true, fmt.Sprintf("both cohorts are exclusions over %s and share nearly all values", v.Name)
	}
	return false, ""
}

// satisfyingSet returns the finite set of values satisfying the predicate,
// using the observed sample as the domain for exclusion operators on
// categorical variables. finite is false when the set cannot be enumerated.
func satisfyingSet(c *plan.Comparison, v schema.VariableDescriptor) ([]string, bool) {
	switch c.Op {
	case plan.OpEq:
		return []string{c.Value}, true
	case plan.OpIn:
		return c.Values, true
	case plan.OpNe, plan.OpNotIn:
		if len(v.Values) == 0 {
			return nil, false
		}
		excluded := c.Values
		if c.Op == plan.OpNe {
			excluded = []string{c.Value}
		}
		var rest []string
		for _, have := range v.Values {
			if !containsValue(excluded, have) {
				rest = append(rest, have)
			}
		}
		return rest, true
	default:
		return nil, false
	}
}

func finiteAgainstPredicate(set []string, pred *plan.Comparison, v schema.VariableDescriptor) (bool, string) {
	for _, val := range set {
		if pred.Eval(func(string) (string, bool) { return val, true }) {
			return true, fmt.Sprintf("value %s = %q satisfies both cohort conditions", v.Name, val)
		}
	}
	return false, ""
}

func isExclusion(c *plan.Comparison) bool {
	return c.Op == plan.OpNe || c.Op == plan.OpNotIn
}

func intersect(a, b []string) string {
	for _, x := range a {
		if containsValue(b, x) {
			return x
		}
	}
	return ""
}

// containsValue matches numerically when both sides parse as numbers, so
// "1" and "1.0" count as the same level.
func containsValue(set []string, val string) bool {
	probe := &plan.Comparison{Op: plan.OpIn, Values: set}
	return probe.Eval(func(string) (string, bool) { return val, true })
}

// interval is a half-open-capable numeric range.
type interval struct {
	lo, hi       float64
	loInc, hiInc bool
}

func (i interval) intersects(j interval) bool {
	lo, loInc := i.lo, i.loInc
	if j.lo > lo || (j.lo == lo && !j.loInc) {
		lo, loInc = j.lo, j.loInc
	}
	hi, hiInc := i.hi, i.hiInc
	if j.hi < hi || (j.hi == hi && !j.hiInc) {
		hi, hiInc = j.hi, j.hiInc
	}
	if lo < hi {
		return true
	}
	return lo == hi && loInc && hiInc
}

func asInterval(c *plan.Comparison) (interval, bool) {
	val, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return interval{}, false
	}
	switch c.Op {
	case plan.OpGt:
		return interval{lo: val, hi: math.Inf(1), hiInc: true}, true
	case plan.OpGe:
		return interval{lo: val, loInc: true, hi: math.Inf(1), hiInc: true}, true
	case plan.OpLt:
		return interval{lo: math.Inf(-1), loInc: true, hi: val}, true
	case plan.OpLe:
		return interval{lo: math.Inf(-1), loInc: true, hi: val, hiInc: true}, true
	case plan.OpEq:
		return interval{lo: val, loInc: true, hi: val, hiInc: true}, true
	default:
		return interval{}, false
	}
}
