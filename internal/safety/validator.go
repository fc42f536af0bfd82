package safety

import (
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/schema"
)

// Default survival columns, applied before validation when the plan omits
// them and the schema actually has them. The grouping variable never
// defaults.
const (
	DefaultTimeCol  = "OS_MONTHS"
	DefaultEventCol = "OS_STATUS"
)

// Validate checks a candidate plan against the schema and returns the
// proof-carrying ValidatedPlan, or the first categorized violation.
// Validation is fail-fast and performs no I/O beyond what the schema
// already cached; the candidate is never mutated.
func Validate(p plan.Plan, s *schema.DatasetSchema) (*plan.ValidatedPlan, error) {
	np := p.Normalized()

	mode := plan.ParseMode(np.Mode)
	if mode == plan.ModeUnknown {
		return nil, &UnknownModeError{Mode: np.Mode, Supported: plan.SupportedModes()}
	}

	vp := &plan.ValidatedPlan{Plan: np, Mode: mode}

	var err error
	switch mode {
	case plan.ModeSurvival:
		err = validateSurvival(vp, s)
	case plan.ModeCaseControl:
		err = validateCaseControl(vp, s)
	case plan.ModeAssociationScan:
		err = validateAssociationScan(vp, s)
	}
	if err != nil {
		return nil, err
	}

	if vp.Plan.Filter != "" {
		expr, perr := plan.ParseFilter(vp.Plan.Filter)
		if perr != nil {
			return nil, &FilterSyntaxError{Expression: vp.Plan.Filter, Detail: perr.Error()}
		}
		for _, cmp := range plan.Comparisons(expr) {
			if cerr := checkComparison("filter", cmp, s); cerr != nil {
				return nil, cerr
			}
		}
		vp.Filter = expr
	}

	return vp, nil
}

func validateSurvival(vp *plan.ValidatedPlan, s *schema.DatasetSchema) error {
	p := &vp.Plan
	if p.GroupBy == "" {
		return &MissingFieldError{Field: "group_by", Mode: vp.Mode.String()}
	}
	if p.TimeCol == "" {
		if !s.Has(DefaultTimeCol) {
			return &MissingFieldError{Field: "time_col", Mode: vp.Mode.String()}
		}
		p.TimeCol = DefaultTimeCol
	}
	if p.EventCol == "" {
		if !s.Has(DefaultEventCol) {
			return &MissingFieldError{Field: "event_col", Mode: vp.Mode.String()}
		}
		p.EventCol = DefaultEventCol
	}

	for _, ref := range []struct{ field, col string }{
		{"group_by", p.GroupBy},
		{"time_col", p.TimeCol},
		{"event_col", p.EventCol},
	} {
		if !s.Has(ref.col) {
			return &UnknownColumnError{Field: ref.field, Value: ref.col, Candidates: s.ColumnNames()}
		}
	}

	timeVar, _ := s.Variable(p.TimeCol)
	if timeVar.Kind != schema.KindSurvivalTime {
		return &TypeMismatchError{
			Field:  "time_col",
			Column: p.TimeCol,
			Want:   schema.KindSurvivalTime.String(),
			Got:    timeVar.Kind.String(),
		}
	}
	eventVar, _ := s.Variable(p.EventCol)
	if eventVar.Kind != schema.KindSurvivalEvent {
		return &TypeMismatchError{
			Field:  "event_col",
			Column: p.EventCol,
			Want:   schema.KindSurvivalEvent.String(),
			Got:    eventVar.Kind.String(),
		}
	}
	return nil
}

func validateCaseControl(vp *plan.ValidatedPlan, s *schema.DatasetSchema) error {
	p := vp.Plan
	switch {
	case p.Target == "":
		return &MissingFieldError{Field: "target", Mode: vp.Mode.String()}
	case p.CaseCondition == "":
		return &MissingFieldError{Field: "case_condition", Mode: vp.Mode.String()}
	case p.ControlCondition == "":
		return &MissingFieldError{Field: "control_condition", Mode: vp.Mode.String()}
	}

	if !s.Has(p.Target) {
		return &UnknownColumnError{Field: "target", Value: p.Target, Candidates: s.ColumnNames()}
	}

	caseCmp, err := parseCondition("case_condition", p.CaseCondition, s)
	if err != nil {
		return err
	}
	controlCmp, err := parseCondition("control_condition", p.ControlCondition, s)
	if err != nil {
		return err
	}

	if caseCmp.Column == controlCmp.Column {
		v, _ := s.Variable(caseCmp.Column)
		if overlap, detail := conditionsOverlap(caseCmp, controlCmp, v); overlap {
			return &OverlappingCohortError{Case: p.CaseCondition, Control: p.ControlCondition, Detail: detail}
		}
	}
	// Conditions on different variables cannot be proven disjoint from the
	// schema alone; the engine re-checks cohort membership on real rows.

	vp.Case = caseCmp
	vp.Control = controlCmp
	return nil
}

func validateAssociationScan(vp *plan.ValidatedPlan, s *schema.DatasetSchema) error {
	if vp.Plan.Target == "" {
		return &MissingFieldError{Field: "target", Mode: vp.Mode.String()}
	}
	if !s.Has(vp.Plan.Target) {
		return &UnknownColumnError{Field: "target", Value: vp.Plan.Target, Candidates: s.ColumnNames()}
	}
	return nil
}

// parseCondition parses a cohort condition and checks its references.
func parseCondition(field, expr string, s *schema.DatasetSchema) (*plan.Comparison, error) {
	cmp, err := plan.ParseCondition(expr)
	if err != nil {
		return nil, &FilterSyntaxError{Expression: expr, Detail: err.Error()}
	}
	if cerr := checkComparison(field, cmp, s); cerr != nil {
		return nil, cerr
	}
	return cmp, nil
}

// checkComparison validates one comparison's column and, for equality and
// membership over categorical-like variables, its value references.
func checkComparison(field string, cmp *plan.Comparison, s *schema.DatasetSchema) error {
	v, ok := s.Variable(cmp.Column)
	if !ok {
		return &UnknownColumnError{Field: field, Value: cmp.Column, Candidates: s.ColumnNames()}
	}

	if !v.Kind.IsCategoricalLike() || len(v.Values) == 0 {
		return nil
	}
	switch cmp.Op {
	case plan.OpEq, plan.OpNe:
		if !observedValue(v, cmp.Value) {
			return &UnknownValueError{Variable: cmp.Column, Value: cmp.Value, Observed: v.Values}
		}
	case plan.OpIn, plan.OpNotIn:
		for _, val := range cmp.Values {
			if !observedValue(v, val) {
				return &UnknownValueError{Variable: cmp.Column, Value: val, Observed: v.Values}
			}
		}
	}
	return nil
}

// observedValue reports whether val matches an observed value, numerically
// when both sides parse as numbers.
func observedValue(v schema.VariableDescriptor, val string) bool {
	if v.HasValue(val) {
		return true
	}
	probe := &plan.Comparison{Column: v.Name, Op: plan.OpEq, Value: val}
	for _, have := range v.Values {
		if probe.Eval(func(string) (string, bool) { return have, true }) {
			return true
		}
	}
	return false
}
