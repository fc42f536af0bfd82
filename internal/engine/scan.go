package engine

import (
	"sort"
	"strings"

	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
)

// runAssociationScan tests every schema variable against the target,
// routing each pair to the bivariate test its kinds call for. Variables
// that cannot be tested are recorded as skips with a reason, never raised
// as errors, and every tested variable is reported regardless of
// significance so the caller can apply its own threshold.
func (e *Engine) runAssociationScan(vp *plan.ValidatedPlan, sess *dataset.Session, rows []int) (*result.AssociationScanResult, error) {
	target := vp.Plan.Target
	targetVar, _ := sess.Schema.Variable(target)

	scan := &result.AssociationScanResult{Target: target}
	for _, col := range sess.Schema.Columns {
		if col == target {
			continue
		}
		v, _ := sess.Schema.Variable(col)

		if reason := e.skipReason(col, v, sess, rows); reason != "" {
			scan.Skipped = append(scan.Skipped, result.SkippedVariable{Variable: col, Reason: reason})
			continue
		}

		entry, skip := e.testPair(targetVar, v, sess, rows)
		if skip != "" {
			scan.Skipped = append(scan.Skipped, result.SkippedVariable{Variable: col, Reason: skip})
			continue
		}
		scan.Entries = append(scan.Entries, entry)
	}

	sort.SliceStable(scan.Entries, func(a, b int) bool {
		if scan.Entries[a].PValue != scan.Entries[b].PValue {
			return scan.Entries[a].PValue < scan.Entries[b].PValue
		}
		return scan.Entries[a].Variable < scan.Entries[b].Variable
	})
	return scan, nil
}

// skipReason pre-screens a variable: identifier-like columns and
// degenerate distributions are excluded with a recorded reason.
func (e *Engine) skipReason(col string, v schema.VariableDescriptor, sess *dataset.Session, rows []int) string {
	distinct := map[string]bool{}
	observed := 0
	for _, row := range rows {
		if raw, ok := sess.Frame.Value(row, col); ok {
			distinct[raw] = true
			observed++
		}
	}
	if observed == 0 {
		return "no observed values"
	}
	if len(distinct) < 2 {
		if v.Kind.IsNumericLike() {
			return "zero variance"
		}
		return "single level"
	}
	if identifierLike(col) || (v.Kind == schema.KindCategorical && len(distinct) == observed) {
		return "identifier-like column"
	}
	if v.Kind == schema.KindCategorical && len(distinct) > e.th.CategoricalSampleCap {
		return "high cardinality"
	}
	return ""
}

func identifierLike(col string) bool {
	n := strings.ToLower(strings.ReplaceAll(col, "_", ""))
	return n == "id" || strings.HasSuffix(n, "id") || strings.HasSuffix(n, "barcode")
}

// testPair routes one target/variable pair to the appropriate bivariate
// test based on both kinds.
func (e *Engine) testPair(target, v schema.VariableDescriptor, sess *dataset.Session, rows []int) (result.AssociationEntry, string) {
	switch {
	case target.Kind.IsCategoricalLike() && v.Kind.IsCategoricalLike():
		return e.categoricalPair(target, v, sess, rows)
	case target.Kind.IsCategoricalLike() && v.Kind.IsNumericLike():
		return e.groupedNumericPair(target, v, v.Name, sess, rows)
	case target.Kind.IsNumericLike() && v.Kind.IsCategoricalLike():
		return e.groupedNumericPair(v, target, v.Name, sess, rows)
	default:
		return e.numericPair(target, v, sess, rows)
	}
}

// categoricalPair builds the contingency table and picks Fisher's exact
// test for 2x2 tables with small expected counts, chi-square otherwise.
func (e *Engine) categoricalPair(target, v schema.VariableDescriptor, sess *dataset.Session, rows []int) (result.AssociationEntry, string) {
	counts := map[string]map[string]float64{}
	n := 0
	for _, row := range rows {
		tv, ok := sess.Frame.Value(row, target.Name)
		if !ok {
			continue
		}
		vv, ok := sess.Frame.Value(row, v.Name)
		if !ok {
			continue
		}
		if counts[tv] == nil {
			counts[tv] = map[string]float64{}
		}
		counts[tv][vv]++
		n++
	}
	if n < e.th.MinCohortSize {
		return result.AssociationEntry{}, "too few paired observations"
	}

	table, levels := contingencyFromCounts(counts)
	if len(table) < 2 || levels < 2 {
		return result.AssociationEntry{}, "single level in paired data"
	}

	statistic, _, p, minExpected := chiSquareContingency(table)
	entry := result.AssociationEntry{Variable: v.Name, N: n}

	if len(table) == 2 && levels == 2 && minExpected < e.th.MinExpectedCellCount {
		a, b := table[0][0], table[0][1]
		c, d := table[1][0], table[1][1]
		oddsRatio := oddsWithCorrection(a, b, c, d, e.th.ContinuityCorrection)
		entry.Test = result.TestFisherExact
		entry.Statistic = oddsRatio
		entry.PValue = fisherExact(int(a), int(b), int(c), int(d))
	} else {
		entry.Test = result.TestChiSquare
		entry.Statistic = statistic
		entry.PValue = p
	}
	return entry, ""
}

// groupedNumericPair compares the numeric variable's distribution across
// the categorical variable's levels: Mann-Whitney U for two levels,
// Kruskal-Wallis beyond. entryName is the scanned variable, which may be
// on either side of the pair.
func (e *Engine) groupedNumericPair(catVar, numVar schema.VariableDescriptor, entryName string, sess *dataset.Session, rows []int) (result.AssociationEntry, string) {
	groups := map[string][]float64{}
	n := 0
	for _, row := range rows {
		level, ok := sess.Frame.Value(row, catVar.Name)
		if !ok {
			continue
		}
		raw, ok := sess.Frame.Value(row, numVar.Name)
		if !ok {
			continue
		}
		x, ok := dataset.ParseNumeric(raw)
		if !ok {
			continue
		}
		groups[level] = append(groups[level], x)
		n++
	}
	if n < e.th.MinCohortSize {
		return result.AssociationEntry{}, "too few paired observations"
	}
	if len(groups) < 2 {
		return result.AssociationEntry{}, "single level in paired data"
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	entry := result.AssociationEntry{Variable: entryName, N: n}
	if len(groups) == 2 {
		u, p := mannWhitney(groups[names[0]], groups[names[1]])
		entry.Test = result.TestMannWhitneyU
		entry.Statistic = u
		entry.PValue = p
	} else {
		ordered := make([][]float64, len(names))
		for i, name := range names {
			ordered[i] = groups[name]
		}
		h, p := kruskalWallis(ordered)
		entry.Test = result.TestKruskalWallis
		entry.Statistic = h
		entry.PValue = p
	}
	return entry, ""
}

// numericPair runs Spearman rank correlation between two numeric columns
func (e *Engine) numericPair(target, v schema.VariableDescriptor, sess *dataset.Session, rows []int) (result.AssociationEntry, string) {
	var xs, ys []float64
	for _, row := range rows {
		rawX, ok := sess.Frame.Value(row, target.Name)
		if !ok {
			continue
		}
		rawY, ok := sess.Frame.Value(row, v.Name)
		if !ok {
			continue
		}
		x, okX := dataset.ParseNumeric(rawX)
		y, okY := dataset.ParseNumeric(rawY)
		if !okX || !okY {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < e.th.MinCohortSize {
		return result.AssociationEntry{}, "too few paired observations"
	}
	if zeroVariance(xs) || zeroVariance(ys) {
		return result.AssociationEntry{}, "zero variance"
	}

	rho, p, err := spearman(xs, ys)
	if err != nil {
		return result.AssociationEntry{}, "correlation undefined"
	}
	return result.AssociationEntry{
		Variable:  v.Name,
		Test:      result.TestSpearman,
		Statistic: rho,
		PValue:    p,
		N:         len(xs),
	}, ""
}

func zeroVariance(data []float64) bool {
	for _, x := range data[1:] {
		if x != data[0] {
			return false
		}
	}
	return true
}

// contingencyFromCounts converts the nested count map into a dense table
// with deterministic row/column order, returning the column level count.
func contingencyFromCounts(counts map[string]map[string]float64) ([][]float64, int) {
	rowNames := make([]string, 0, len(counts))
	colSet := map[string]bool{}
	for rn, cols := range counts {
		rowNames = append(rowNames, rn)
		for cn := range cols {
			colSet[cn] = true
		}
	}
	sort.Strings(rowNames)
	colNames := make([]string, 0, len(colSet))
	for cn := range colSet {
		colNames = append(colNames, cn)
	}
	sort.Strings(colNames)

	table := make([][]float64, len(rowNames))
	for i, rn := range rowNames {
		table[i] = make([]float64, len(colNames))
		for j, cn := range colNames {
			table[i][j] = counts[rn][cn]
		}
	}
	return table, len(colNames)
}

func oddsWithCorrection(a, b, c, d, correction float64) float64 {
	if a == 0 || b == 0 || c == 0 || d == 0 {
		a, b, c, d = a+correction, b+correction, c+correction, d+correction
	}
	return (a * d) / (b * c)
}
