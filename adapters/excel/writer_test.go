package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/UShah1996/AI-HOPE/domain/core"
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
)

func survivalResult() *result.AnalysisResult {
	median := 18.5
	return &result.AnalysisResult{
		ID:      core.AnalysisID(core.NewID()),
		Dataset: "TCGA_COAD",
		Mode:    plan.ModeSurvival,
		Survival: &result.SurvivalResult{
			GroupBy:  "KRAS_mutation_status",
			TimeCol:  "OS_MONTHS",
			EventCol: "OS_STATUS",
			Curves: []result.GroupCurve{
				{Group: "0", N: 12, Events: 8, MedianSurvival: &median, Points: []result.CurvePoint{
					{Time: 6.1, Survival: 0.92, AtRisk: 12, Events: 1},
					{Time: 18.5, Survival: 0.5, AtRisk: 8, Events: 2},
				}},
				{Group: "1", N: 12, Events: 10, Points: []result.CurvePoint{
					{Time: 3.2, Survival: 0.83, AtRisk: 12, Events: 2},
				}},
			},
			LogRank:     result.LogRankResult{Statistic: 5.24, DF: 1, PValue: 0.0221},
			HazardRatio: &result.HazardRatio{Value: 2.31, CILower: 1.12, CIUpper: 4.76, Confidence: 0.95, Numerator: "0", Denominator: "1"},
		},
		TestedVariables: []string{"KRAS_mutation_status", "OS_MONTHS", "OS_STATUS"},
		ComputedAt:      core.Now(),
	}
}

func TestWriteResult_Survival(t *testing.T) {
	buf, err := WriteResult(survivalResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Statistics", "Curves"}, f.GetSheetList())

	dataset, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "TCGA_COAD", dataset)

	groupBy, err := f.GetCellValue("Statistics", "B1")
	require.NoError(t, err)
	assert.Equal(t, "KRAS_mutation_status", groupBy)

	header, err := f.GetCellValue("Curves", "A1")
	require.NoError(t, err)
	assert.Equal(t, "group", header)
	firstGroup, err := f.GetCellValue("Curves", "A2")
	require.NoError(t, err)
	assert.Equal(t, "0", firstGroup)
}

func TestWriteResult_CaseControl(t *testing.T) {
	res := &result.AnalysisResult{
		ID:      core.AnalysisID(core.NewID()),
		Dataset: "TCGA_COAD",
		Mode:    plan.ModeCaseControl,
		CaseControl: &result.CaseControlResult{
			Target:        "TP53_Mutation",
			PositiveLevel: "1",
			Case:          `TUMOR_STAGE == "Stage IV"`,
			Control:       `TUMOR_STAGE == "Stage I"`,
			CaseN:         6,
			ControlN:      6,
			Table:         result.ContingencyTable{CaseExposed: 4, CaseUnexposed: 2, ControlExposed: 1, ControlUnexposed: 5},
			OddsRatio:     10,
			Test:          result.TestFisherExact,
			Statistic:     10,
			PValue:        0.0801,
		},
		ComputedAt: core.Now(),
	}

	buf, err := WriteResult(res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "CaseControl")
}

func TestSaveResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveResult(path, survivalResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
