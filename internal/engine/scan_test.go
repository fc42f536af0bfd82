package engine

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/domain/schema"
)

var scanKinds = map[string]schema.Kind{
	"SampleID":    schema.KindCategorical,
	"TUMOR_STAGE": schema.KindCategorical,
	"KRAS":        schema.KindSurvivalEvent,
	"TP53":        schema.KindSurvivalEvent,
	"GRADE":       schema.KindCategorical,
	"AGE":         schema.KindNumeric,
	"MARKER":      schema.KindNumeric,
	"BATCH":       schema.KindCategorical,
}

func scanPlan(target string) *plan.ValidatedPlan {
	return &plan.ValidatedPlan{
		Plan: plan.Plan{Target: target},
		Mode: plan.ModeAssociationScan,
	}
}

// scanRows builds a 24-sample frame with deterministic cycling values.
func scanRows() [][]string {
	stages := []string{"Early", "Early", "Late", "Late"}
	grades := []string{"Low", "High"}
	var rows [][]string
	for i := 0; i < 24; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("S%03d", i),
			stages[i%4],
			fmt.Sprintf("%d", i%2),
			fmt.Sprintf("%d", (i/2)%2),
			grades[i%2],
			fmt.Sprintf("%d", 40+i),
			fmt.Sprintf("%.1f", 1.5+float64(i%4)),
			"B1",
		})
	}
	return rows
}

func scanColumns() []string {
	return []string{"SampleID", "TUMOR_STAGE", "KRAS", "TP53", "GRADE", "AGE", "MARKER", "BATCH"}
}

func TestExecute_AssociationScan_TestsEveryUsableVariable(t *testing.T) {
	sess := newSession(scanColumns(), scanRows(), scanKinds)

	res, err := testEngine().Execute(scanPlan("TUMOR_STAGE"), sess)
	require.NoError(t, err)
	require.NotNil(t, res.Scan)
	scan := res.Scan

	assert.Equal(t, "TUMOR_STAGE", scan.Target)

	// SampleID (identifier) and BATCH (single level) are skipped; the
	// remaining five variables are all tested.
	require.Len(t, scan.Entries, 5)
	tested := make([]string, 0, len(scan.Entries))
	for _, entry := range scan.Entries {
		tested = append(tested, entry.Variable)
	}
	assert.ElementsMatch(t, []string{"KRAS", "TP53", "GRADE", "AGE", "MARKER"}, tested)
	assert.ElementsMatch(t, tested, res.TestedVariables)

	skipped := map[string]string{}
	for _, s := range scan.Skipped {
		skipped[s.Variable] = s.Reason
	}
	assert.Equal(t, "identifier-like column", skipped["SampleID"])
	assert.Equal(t, "single level", skipped["BATCH"])

	// entries come back sorted ascending by p-value
	assert.True(t, sort.SliceIsSorted(scan.Entries, func(a, b int) bool {
		if scan.Entries[a].PValue != scan.Entries[b].PValue {
			return scan.Entries[a].PValue < scan.Entries[b].PValue
		}
		return scan.Entries[a].Variable < scan.Entries[b].Variable
	}))

	for _, entry := range scan.Entries {
		assert.GreaterOrEqual(t, entry.PValue, 0.0, entry.Variable)
		assert.LessOrEqual(t, entry.PValue, 1.0, entry.Variable)
		assert.Equal(t, 24, entry.N, entry.Variable)
	}
}

func TestExecute_AssociationScan_TestRouting(t *testing.T) {
	sess := newSession(scanColumns(), scanRows(), scanKinds)

	res, err := testEngine().Execute(scanPlan("TUMOR_STAGE"), sess)
	require.NoError(t, err)

	byVar := map[string]result.AssociationEntry{}
	for _, entry := range res.Scan.Entries {
		byVar[entry.Variable] = entry
	}

	// categorical target vs categorical-like variables
	assert.Equal(t, result.TestChiSquare, byVar["GRADE"].Test)
	// categorical target (two levels here: Early/Late) vs numeric
	assert.Equal(t, result.TestMannWhitneyU, byVar["AGE"].Test)
	assert.Equal(t, result.TestMannWhitneyU, byVar["MARKER"].Test)
}

func TestExecute_AssociationScan_NumericTarget(t *testing.T) {
	sess := newSession(scanColumns(), scanRows(), scanKinds)

	res, err := testEngine().Execute(scanPlan("AGE"), sess)
	require.NoError(t, err)

	byVar := map[string]result.AssociationEntry{}
	for _, entry := range res.Scan.Entries {
		byVar[entry.Variable] = entry
	}

	// numeric vs numeric runs Spearman
	require.Contains(t, byVar, "MARKER")
	assert.Equal(t, result.TestSpearman, byVar["MARKER"].Test)

	// numeric target vs categorical still reports the scanned variable
	require.Contains(t, byVar, "GRADE")
	assert.Equal(t, result.TestMannWhitneyU, byVar["GRADE"].Test)
}

func TestExecute_AssociationScan_PerfectCorrelationFound(t *testing.T) {
	columns := []string{"X", "Y", "NOISE"}
	kinds := map[string]schema.Kind{
		"X":     schema.KindNumeric,
		"Y":     schema.KindNumeric,
		"NOISE": schema.KindNumeric,
	}
	noise := []string{"3", "1", "4", "1", "5", "9", "2", "6", "5", "3"}
	var rows [][]string
	for i := 0; i < 10; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", 2*i+1),
			noise[i],
		})
	}
	sess := newSession(columns, rows, kinds)

	res, err := testEngine().Execute(scanPlan("X"), sess)
	require.NoError(t, err)
	require.NotEmpty(t, res.Scan.Entries)

	// the perfectly correlated variable ranks first
	first := res.Scan.Entries[0]
	assert.Equal(t, "Y", first.Variable)
	assert.InDelta(t, 1.0, first.Statistic, 1e-9)
}

func TestSkipReason(t *testing.T) {
	columns := []string{"TARGET", "CONST", "ALLMISSING", "WIDE", "PATIENT_BARCODE"}
	kinds := map[string]schema.Kind{
		"TARGET":          schema.KindCategorical,
		"CONST":           schema.KindNumeric,
		"ALLMISSING":      schema.KindCategorical,
		"WIDE":            schema.KindCategorical,
		"PATIENT_BARCODE": schema.KindCategorical,
	}
	var rows [][]string
	for i := 0; i < 25; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("T%d", i%2),
			"7",
			"NA",
			fmt.Sprintf("w%d", i%23),
			fmt.Sprintf("BC-%04d", i),
		})
	}
	sess := newSession(columns, rows, kinds)

	res, err := testEngine().Execute(scanPlan("TARGET"), sess)
	require.NoError(t, err)
	assert.Empty(t, res.Scan.Entries)

	skipped := map[string]string{}
	for _, s := range res.Scan.Skipped {
		skipped[s.Variable] = s.Reason
	}
	assert.Equal(t, "zero variance", skipped["CONST"])
	assert.Equal(t, "no observed values", skipped["ALLMISSING"])
	assert.Equal(t, "high cardinality", skipped["WIDE"])
	assert.Equal(t, "identifier-like column", skipped["PATIENT_BARCODE"])
}

func TestIdentifierLike(t *testing.T) {
	assert.True(t, identifierLike("SampleID"))
	assert.True(t, identifierLike("sample_id"))
	assert.True(t, identifierLike("PATIENT_BARCODE"))
	assert.False(t, identifierLike("TUMOR_STAGE"))
	assert.False(t, identifierLike("KRAS_mutation_status"))
}
