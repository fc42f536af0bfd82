// Package resolver performs best-effort repair of near-miss column and
// value references in a candidate plan before validation. It runs exactly
// once per plan, never inside a retry loop with the validator, and it
// never raises: when uncertain it leaves the field untouched so the
// validator reports a genuine unknown-column rejection with candidates.
package resolver

import (
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal/config"
)

// Correction records one substitution for auditability.
type Correction struct {
	Field string  `json:"field"`
	From  string  `json:"from"`
	To    string  `json:"to"`
	Score float64 `json:"score"`
}

// Resolver applies conservative fuzzy corrections under fixed confidence
// and ambiguity thresholds. A wrong silent fix that passes validation but
// analyzes the wrong cohort is worse than a surfaced rejection.
type Resolver struct {
	threshold float64
	margin    float64
}

// New creates a resolver with the configured thresholds
func New(th config.Thresholds) *Resolver {
	return &Resolver{threshold: th.MatchThreshold, margin: th.AmbiguityMargin}
}

// AttemptFix returns a corrected copy of the plan and the substitutions it
// made. The input plan is never mutated; an empty correction list means
// the plan was returned as-is.
func (r *Resolver) AttemptFix(p plan.Plan, s *schema.DatasetSchema) (plan.Plan, []Correction) {
	out := p.Normalized()
	var corrections []Correction

	fixColumn := func(field string, value *string) {
		if *value == "" || s.Has(*value) {
			return
		}
		best, score, runnerUp := BestMatch(*value, s.ColumnNames())
		if score < r.threshold || score-runnerUp < r.margin {
			return
		}
		corrections = append(corrections, Correction{Field: field, From: *value, To: best, Score: score})
		*value = best
	}

	fixColumn("group_by", &out.GroupBy)
	fixColumn("time_col", &out.TimeCol)
	fixColumn("event_col", &out.EventCol)
	fixColumn("target", &out.Target)

	out.CaseCondition = r.fixCondition("case_condition", out.CaseCondition, s, &corrections)
	out.ControlCondition = r.fixCondition("control_condition", out.ControlCondition, s, &corrections)
	out.Filter = r.fixFilter(out.Filter, s, &corrections)

	return out, corrections
}

// fixCondition repairs the column and value references of a single cohort
// condition. Unparseable conditions pass through untouched for the
// validator to reject.
func (r *Resolver) fixCondition(field, expr string, s *schema.DatasetSchema, corrections *[]Correction) string {
	if expr == "" {
		return expr
	}
	cmp, err := plan.ParseCondition(expr)
	if err != nil {
		return expr
	}
	if r.fixComparison(field, cmp, s, corrections) {
		return cmp.String()
	}
	return expr
}

// fixFilter repairs column and value references throughout a filter
// expression.
func (r *Resolver) fixFilter(expr string, s *schema.DatasetSchema, corrections *[]Correction) string {
	if expr == "" {
		return expr
	}
	parsed, err := plan.ParseFilter(expr)
	if err != nil {
		return expr
	}
	changed := false
	for _, cmp := range plan.Comparisons(parsed) {
		if r.fixComparison("filter", cmp, s, corrections) {
			changed = true
		}
	}
	if changed {
		return parsed.String()
	}
	return expr
}

// fixComparison repairs one comparison in place, returning whether it
// changed anything.
func (r *Resolver) fixComparison(field string, cmp *plan.Comparison, s *schema.DatasetSchema, corrections *[]Correction) bool {
	changed := false

	if cmp.Column != "" && !s.Has(cmp.Column) {
		best, score, runnerUp := BestMatch(cmp.Column, s.ColumnNames())
		if score >= r.threshold && score-runnerUp >= r.margin {
			*corrections = append(*corrections, Correction{Field: field, From: cmp.Column, To: best, Score: score})
			cmp.Column = best
			changed = true
		}
	}

	v, ok := s.Variable(cmp.Column)
	if !ok || !v.Kind.IsCategoricalLike() || len(v.Values) == 0 {
		return changed
	}

	fixValue := func(val *string) {
		if v.HasValue(*val) {
			return
		}
		best, score, runnerUp := BestMatch(*val, v.Values)
		if score < r.threshold || score-runnerUp < r.margin {
			return
		}
		*corrections = append(*corrections, Correction{Field: field, From: *val, To: best, Score: score})
		*val = best
		changed = true
	}

	switch cmp.Op {
	case plan.OpEq, plan.OpNe:
		fixValue(&cmp.Value)
	case plan.OpIn, plan.OpNotIn:
		for i := range cmp.Values {
			fixValue(&cmp.Values[i])
		}
	}
	return changed
}
