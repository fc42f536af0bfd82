package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shared statistical primitives for the three analysis modes. Descriptive
// moments come from montanaflynn/stats, p-values from gonum's reference
// distributions; rank handling and the exact test are computed here.

// ranks assigns 1-based ranks with average tie handling
func ranks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		// average rank across the tie run [i, j]
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// tieCorrectionSum returns sum(t^3 - t) over tie runs of the pooled sample
func tieCorrectionSum(data []float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	total := 0.0
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		t := float64(j - i + 1)
		total += t*t*t - t
		i = j + 1
	}
	return total
}

// chiSquareP returns the upper-tail p-value of a chi-square statistic
func chiSquareP(statistic float64, df int) float64 {
	if df < 1 || math.IsNaN(statistic) {
		return 1
	}
	if statistic <= 0 {
		return 1
	}
	dist := distuv.ChiSquared{K: float64(df)}
	return clampP(1 - dist.CDF(statistic))
}

// normalTwoSidedP returns the two-sided p-value of a standard normal z
func normalTwoSidedP(z float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return clampP(2 * dist.CDF(-math.Abs(z)))
}

// normalQuantile returns the standard normal quantile for p
func normalQuantile(p float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(p)
}

func clampP(p float64) float64 {
	switch {
	case math.IsNaN(p), p > 1:
		return 1
	case p < 0:
		return 0
	default:
		return p
	}
}

// spearman computes the rank correlation and its t-approximation p-value
func spearman(x, y []float64) (rho, p float64, err error) {
	n := len(x)
	rho, err = stats.Pearson(ranks(x), ranks(y))
	if err != nil {
		return 0, 1, err
	}
	if n < 3 {
		return rho, 1, nil
	}
	if math.Abs(rho) >= 1 {
		return rho, 0, nil
	}
	t := rho * math.Sqrt(float64(n-2)/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return rho, clampP(2 * dist.CDF(-math.Abs(t))), nil
}

// mannWhitney computes the two-sample rank-sum test with normal
// approximation and tie correction, returning the U statistic
func mannWhitney(x, y []float64) (u, p float64) {
	n1, n2 := float64(len(x)), float64(len(y))
	pooled := append(append([]float64(nil), x...), y...)
	r := ranks(pooled)

	r1 := 0.0
	for i := range x {
		r1 += r[i]
	}
	u = r1 - n1*(n1+1)/2

	n := n1 + n2
	mu := n1 * n2 / 2
	ties := tieCorrectionSum(pooled)
	variance := n1 * n2 / 12 * ((n + 1) - ties/(n*(n-1)))
	if variance <= 0 {
		return u, 1
	}
	z := (u - mu) / math.Sqrt(variance)
	return u, normalTwoSidedP(z)
}

// kruskalWallis computes the k-group rank test with tie correction,
// approximated by chi-square with k-1 degrees of freedom
func kruskalWallis(groups [][]float64) (h, p float64) {
	var pooled []float64
	for _, g := range groups {
		pooled = append(pooled, g...)
	}
	n := float64(len(pooled))
	if n < 3 || len(groups) < 2 {
		return 0, 1
	}
	r := ranks(pooled)

	h = 0
	offset := 0
	for _, g := range groups {
		sum := 0.0
		for i := range g {
			sum += r[offset+i]
		}
		offset += len(g)
		h += sum * sum / float64(len(g))
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	correction := 1 - tieCorrectionSum(pooled)/(n*n*n-n)
	if correction <= 0 {
		return 0, 1
	}
	h /= correction
	return h, chiSquareP(h, len(groups)-1)
}

// chiSquareContingency computes the chi-square statistic, degrees of
// freedom, p-value, and minimum expected cell count of an r x c table
func chiSquareContingency(table [][]float64) (statistic float64, df int, p float64, minExpected float64) {
	rows := len(table)
	if rows == 0 {
		return 0, 0, 1, 0
	}
	cols := len(table[0])

	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	total := 0.0
	for i := range table {
		for j := range table[i] {
			rowSums[i] += table[i][j]
			colSums[j] += table[i][j]
			total += table[i][j]
		}
	}
	if total == 0 {
		return 0, 0, 1, 0
	}

	minExpected = math.Inf(1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowSums[i] * colSums[j] / total
			if expected < minExpected {
				minExpected = expected
			}
			if expected > 0 {
				diff := table[i][j] - expected
				statistic += diff * diff / expected
			}
		}
	}
	df = (rows - 1) * (cols - 1)
	return statistic, df, chiSquareP(statistic, df), minExpected
}

// fisherExact computes the two-sided exact p-value of a 2x2 table by
// summing hypergeometric probabilities no more likely than the observed
// table, with fixed margins
func fisherExact(a, b, c, d int) float64 {
	rowA := a + b
	rowB := c + d
	colA := a + c

	lo := 0
	if colA-rowB > 0 {
		lo = colA - rowB
	}
	hi := colA
	if rowA < hi {
		hi = rowA
	}

	observed := hypergeomLogProb(a, rowA, rowB, colA)
	cutoff := observed + 1e-7

	p := 0.0
	for k := lo; k <= hi; k++ {
		lp := hypergeomLogProb(k, rowA, rowB, colA)
		if lp <= cutoff {
			p += math.Exp(lp)
		}
	}
	return clampP(p)
}

// hypergeomLogProb is log P(X = k) for a 2x2 table with the given margins
func hypergeomLogProb(k, rowA, rowB, colA int) float64 {
	return logChoose(rowA, k) + logChoose(rowB, colA-k) - logChoose(rowA+rowB, colA)
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return logFactorial(n) - logFactorial(k) - logFactorial(n-k)
}

func logFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}
