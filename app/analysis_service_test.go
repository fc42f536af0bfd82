package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UShah1996/AI-HOPE/domain/core"
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/internal/safety"
)

// writeCohort writes a 24-sample colorectal-style dataset directory.
func writeCohort(t *testing.T) string {
	t.Helper()

	stages := []string{"Stage I", "Stage II", "Stage III", "Stage IV"}
	var b strings.Builder
	b.WriteString("SampleID\tTUMOR_STAGE\tKRAS_mutation_status\tTP53_Mutation\tOS_MONTHS\tOS_STATUS\n")
	for i := 0; i < 24; i++ {
		tp53 := "0"
		if i%3 == 0 {
			tp53 = "1"
		}
		status := "1:DECEASED"
		if i%4 == 0 {
			status = "0:LIVING"
		}
		fmt.Fprintf(&b, "S%03d\t%s\t%d\t%s\t%.1f\t%s\n",
			i, stages[i%4], i%2, tp53, 6.0+float64(i)*2.5, status)
	}

	dir := filepath.Join(t.TempDir(), "TCGA_COAD")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_table.tsv"), []byte(b.String()), 0o644))
	return dir
}

func testService() *AnalysisService {
	cfg := &config.Config{Thresholds: config.DefaultThresholds()}
	return NewAnalysisService(cfg, internal.NewDefaultLogger())
}

func TestSchema(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	s, err := svc.Schema(dir)
	require.NoError(t, err)
	assert.Equal(t, "TCGA_COAD", s.Name)
	assert.True(t, s.Has("KRAS_mutation_status"))

	_, err = svc.Schema(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, core.ErrData))
}

func TestAnalyze_Survival_AutoCorrectedRoundTrip(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	// near-miss grouping variable, time/event columns left to defaults
	res, corrections, err := svc.Analyze(dir, plan.Plan{
		Mode:    "survival",
		GroupBy: "KRAS_Status",
	})

	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, "KRAS_mutation_status", corrections[0].To)

	require.NotNil(t, res.Survival)
	assert.Equal(t, plan.ModeSurvival, res.Mode)
	assert.Equal(t, "TCGA_COAD", res.Dataset)
	assert.Equal(t, "KRAS_mutation_status", res.Survival.GroupBy)
	assert.Equal(t, safety.DefaultTimeCol, res.Survival.TimeCol)
	assert.Equal(t, safety.DefaultEventCol, res.Survival.EventCol)
	require.Len(t, res.Survival.Curves, 2)
	assert.Equal(t, 12, res.Survival.Curves[0].N)
	assert.NotNil(t, res.Survival.HazardRatio)
}

func TestAnalyze_CaseControl(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	res, _, err := svc.Analyze(dir, plan.Plan{
		Mode:             "case_control",
		Target:           "TP53_Mutation",
		CaseCondition:    `TUMOR_STAGE == "Stage IV"`,
		ControlCondition: `TUMOR_STAGE == "Stage I"`,
	})

	require.NoError(t, err)
	require.NotNil(t, res.CaseControl)
	cc := res.CaseControl
	assert.Equal(t, 6, cc.CaseN)
	assert.Equal(t, 6, cc.ControlN)
	assert.Equal(t, result.TestFisherExact, cc.Test)
	assert.InDelta(t, 1.0, cc.OddsRatio, 1e-9)
	assert.InDelta(t, 1.0, cc.PValue, 1e-9)
}

func TestAnalyze_AssociationScan(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	res, _, err := svc.Analyze(dir, plan.Plan{
		Mode:   "association_scan",
		Target: "TUMOR_STAGE",
	})

	require.NoError(t, err)
	require.NotNil(t, res.Scan)
	assert.NotEmpty(t, res.Scan.Entries)
	for i := 1; i < len(res.Scan.Entries); i++ {
		assert.LessOrEqual(t, res.Scan.Entries[i-1].PValue, res.Scan.Entries[i].PValue)
	}
	// the sample identifier must never be tested
	for _, entry := range res.Scan.Entries {
		assert.NotEqual(t, "SampleID", entry.Variable)
	}
}

func TestAnalyze_RejectionNeverReachesEngine(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	res, corrections, err := svc.Analyze(dir, plan.Plan{
		Mode:    "survival",
		GroupBy: "TREATMENT_ARM",
	})

	assert.Nil(t, res)
	assert.Empty(t, corrections)
	var colErr *safety.UnknownColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "TREATMENT_ARM", colErr.Value)
	assert.True(t, errors.Is(err, core.ErrPlanRejected))
}

func TestAnalyze_UnknownDataset(t *testing.T) {
	svc := testService()

	_, _, err := svc.Analyze(filepath.Join(t.TempDir(), "nope"), plan.Plan{Mode: "survival", GroupBy: "X"})
	assert.True(t, errors.Is(err, core.ErrData))
}

func TestInvalidateDataset(t *testing.T) {
	dir := writeCohort(t)
	svc := testService()

	first, err := svc.Schema(dir)
	require.NoError(t, err)
	svc.InvalidateDataset(dir)
	second, err := svc.Schema(dir)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
