// Package result defines the analysis result contract handed to the
// presentation layer. Results are immutable once returned and carry enough
// data to render a survival curve, a contingency summary, or a ranked
// association table without further computation by the caller.
package result

import (
	"github.com/UShah1996/AI-HOPE/domain/core"
	"github.com/UShah1996/AI-HOPE/domain/plan"
)

// AnalysisResult is a tagged union keyed by Mode: exactly one of Survival,
// CaseControl, or Scan is non-nil. A result with empty findings (e.g. a
// scan where nothing reaches significance) is still a successful result,
// never an error.
type AnalysisResult struct {
	ID      core.AnalysisID `json:"id"`
	Dataset string          `json:"dataset"`
	Mode    plan.Mode       `json:"mode"`

	Survival    *SurvivalResult        `json:"survival,omitempty"`
	CaseControl *CaseControlResult     `json:"case_control,omitempty"`
	Scan        *AssociationScanResult `json:"association_scan,omitempty"`

	// TestedVariables lists every variable the analysis actually touched,
	// for auditability.
	TestedVariables []string       `json:"tested_variables"`
	ComputedAt      core.Timestamp `json:"computed_at"`
}

// CurvePoint is one step of a Kaplan-Meier curve at an event time.
type CurvePoint struct {
	Time     float64 `json:"time"`
	Survival float64 `json:"survival"`
	AtRisk   int     `json:"at_risk"`
	Events   int     `json:"events"`
}

// GroupCurve is the Kaplan-Meier estimate for one group.
type GroupCurve struct {
	Group  string       `json:"group"`
	N      int          `json:"n"`
	Events int          `json:"events"`
	Points []CurvePoint `json:"points"`
	// MedianSurvival is the first time the curve drops to 0.5 or below,
	// nil when the curve never reaches it.
	MedianSurvival *float64 `json:"median_survival,omitempty"`
}

// LogRankResult is the k-group log-rank test outcome.
type LogRankResult struct {
	Statistic float64 `json:"statistic"`
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
}

// HazardRatio is the two-group hazard ratio with its confidence interval.
// Numerator and Denominator name the compared groups so the direction of
// the ratio is unambiguous.
type HazardRatio struct {
	Value       float64 `json:"value"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	Confidence  float64 `json:"confidence"`
	Numerator   string  `json:"numerator"`
	Denominator string  `json:"denominator"`
}

// SurvivalResult carries the survival-mode output. HazardRatio is nil when
// more than two groups were compared (descriptive degrade).
type SurvivalResult struct {
	GroupBy     string        `json:"group_by"`
	TimeCol     string        `json:"time_col"`
	EventCol    string        `json:"event_col"`
	Curves      []GroupCurve  `json:"curves"`
	LogRank     LogRankResult `json:"log_rank"`
	HazardRatio *HazardRatio  `json:"hazard_ratio,omitempty"`
}

// ContingencyTable is the 2x2 table of target exposure by cohort.
// Cells follow the conventional a/b/c/d layout.
type ContingencyTable struct {
	CaseExposed      float64 `json:"case_exposed"`       // a
	CaseUnexposed    float64 `json:"case_unexposed"`     // b
	ControlExposed   float64 `json:"control_exposed"`    // c
	ControlUnexposed float64 `json:"control_unexposed"`  // d
	Corrected        bool    `json:"corrected,omitempty"` // Haldane-Anscombe +0.5 applied
}

// CaseControlResult carries the case-control-mode output.
type CaseControlResult struct {
	Target        string           `json:"target"`
	PositiveLevel string           `json:"positive_level"`
	Case          string           `json:"case_condition"`
	Control       string           `json:"control_condition"`
	CaseN         int              `json:"case_n"`
	ControlN      int              `json:"control_n"`
	Table         ContingencyTable `json:"table"`
	OddsRatio     float64          `json:"odds_ratio"`
	Test          string           `json:"test"`
	Statistic     float64          `json:"statistic"`
	PValue        float64          `json:"p_value"`
}

// AssociationEntry is one tested variable of an association scan.
type AssociationEntry struct {
	Variable  string  `json:"variable"`
	Test      string  `json:"test"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	N         int     `json:"n"`
}

// SkippedVariable records why a scan excluded a variable instead of
// failing the whole analysis.
type SkippedVariable struct {
	Variable string `json:"variable"`
	Reason   string `json:"reason"`
}

// AssociationScanResult carries the full tested set sorted ascending by
// p-value. Nothing is omitted for insignificance; the caller applies its
// own threshold.
type AssociationScanResult struct {
	Target  string             `json:"target"`
	Entries []AssociationEntry `json:"entries"`
	Skipped []SkippedVariable  `json:"skipped,omitempty"`
}

// Test names reported in results.
const (
	TestFisherExact   = "fisher_exact"
	TestChiSquare     = "chi_square"
	TestMannWhitneyU  = "mann_whitney_u"
	TestKruskalWallis = "kruskal_wallis"
	TestSpearman      = "spearman"
	TestLogRank       = "log_rank"
)
