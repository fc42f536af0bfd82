// Package plan defines the analysis plan contract between the external
// plan generator and the safety layer. A Plan is untrusted input; a
// ValidatedPlan is the proof-carrying form the statistical engine accepts.
package plan

import "strings"

// Mode is the closed set of supported analysis modes. Adding a mode is a
// compile-time-checked change across resolver, validator, and engine.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeSurvival
	ModeCaseControl
	ModeAssociationScan
)

// String returns the canonical mode name
func (m Mode) String() string {
	switch m {
	case ModeSurvival:
		return "survival"
	case ModeCaseControl:
		return "case_control"
	case ModeAssociationScan:
		return "association_scan"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by its canonical name in JSON payloads
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SupportedModes lists the canonical mode names for rejection messages
func SupportedModes() []string {
	return []string{ModeSurvival.String(), ModeCaseControl.String(), ModeAssociationScan.String()}
}

// ParseMode maps a generator-supplied mode string onto the closed variant.
// The generator is known to emit spelling variants ("case-control",
// "global scan"), so a few aliases are folded in; anything else is
// ModeUnknown and rejected by validation.
func ParseMode(s string) Mode {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "survival", "survival_analysis":
		return ModeSurvival
	case "case_control", "case control":
		return ModeCaseControl
	case "association_scan", "association scan", "global_scan", "global scan":
		return ModeAssociationScan
	default:
		return ModeUnknown
	}
}

// Plan is a candidate analysis plan as produced by the external generator.
// Every field is untrusted. The alias fields mirror the generator's older
// output shape and are folded by Normalized before validation.
type Plan struct {
	Mode             string `json:"mode"`
	GroupBy          string `json:"group_by,omitempty"`
	TimeCol          string `json:"time_col,omitempty"`
	EventCol         string `json:"event_col,omitempty"`
	Target           string `json:"target,omitempty"`
	CaseCondition    string `json:"case_condition,omitempty"`
	ControlCondition string `json:"control_condition,omitempty"`
	Filter           string `json:"filter,omitempty"`

	// Legacy generator aliases, accepted on input only.
	TargetVariable   string `json:"target_variable,omitempty"`
	GroupingVariable string `json:"grouping_variable,omitempty"`
}

// Normalized returns a copy with legacy alias fields folded into their
// canonical counterparts and surrounding whitespace stripped. The receiver
// is never mutated; validation always operates on the normalized copy.
func (p Plan) Normalized() Plan {
	out := p
	if out.GroupBy == "" && out.GroupingVariable != "" {
		out.GroupBy = out.GroupingVariable
	}
	if out.Target == "" && out.TargetVariable != "" {
		out.Target = out.TargetVariable
	}
	out.GroupingVariable = ""
	out.TargetVariable = ""

	out.Mode = strings.TrimSpace(out.Mode)
	out.GroupBy = strings.TrimSpace(out.GroupBy)
	out.TimeCol = strings.TrimSpace(out.TimeCol)
	out.EventCol = strings.TrimSpace(out.EventCol)
	out.Target = strings.TrimSpace(out.Target)
	out.CaseCondition = strings.TrimSpace(out.CaseCondition)
	out.ControlCondition = strings.TrimSpace(out.ControlCondition)
	out.Filter = strings.TrimSpace(out.Filter)
	return out
}

// ValidatedPlan is a plan that passed every safety check. It carries the
// parsed filter and cohort condition ASTs so the engine never re-parses or
// re-resolves anything; ownership belongs to one engine execution.
type ValidatedPlan struct {
	Plan Plan
	Mode Mode

	// Filter is the parsed optional row filter, nil when absent.
	Filter Expr

	// Case and Control are the parsed cohort predicates, set only for
	// ModeCaseControl.
	Case    *Comparison
	Control *Comparison
}
