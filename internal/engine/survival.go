package engine

import (
	"math"
	"sort"

	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
)

// subject is one sample's time-to-event observation.
type subject struct {
	time  float64
	event bool
}

// runSurvival partitions rows by the grouping variable, estimates a
// Kaplan-Meier curve per group, runs the k-group log-rank test, and for
// exactly two groups adds the Peto hazard ratio with its confidence
// interval. More than two groups degrades to descriptive output.
func (e *Engine) runSurvival(vp *plan.ValidatedPlan, sess *dataset.Session, rows []int) (*result.SurvivalResult, error) {
	p := vp.Plan
	cohorts := make(map[string][]subject)
	for _, row := range rows {
		group, ok := sess.Frame.Value(row, p.GroupBy)
		if !ok {
			continue
		}
		rawTime, ok := sess.Frame.Value(row, p.TimeCol)
		if !ok {
			continue
		}
		t, ok := dataset.ParseNumeric(rawTime)
		if !ok || t < 0 {
			continue
		}
		rawEvent, ok := sess.Frame.Value(row, p.EventCol)
		if !ok {
			continue
		}
		event, ok := dataset.ParseEventIndicator(rawEvent)
		if !ok {
			continue
		}
		cohorts[group] = append(cohorts[group], subject{time: t, event: event})
	}

	if len(cohorts) < 2 {
		return nil, &UnsupportedGroupCountError{GroupBy: p.GroupBy, Got: len(cohorts), Min: 2}
	}

	names := make([]string, 0, len(cohorts))
	for name := range cohorts {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([][]subject, len(names))
	for i, name := range names {
		if len(cohorts[name]) < e.th.MinCohortSize {
			return nil, &InsufficientSampleError{Cohort: name, N: len(cohorts[name]), Min: e.th.MinCohortSize}
		}
		groups[i] = cohorts[name]
	}

	curves := make([]result.GroupCurve, len(names))
	for i, name := range names {
		curves[i] = kaplanMeier(name, groups[i])
	}

	statistic, obs, exp := logRank(groups)
	df := len(groups) - 1
	sr := &result.SurvivalResult{
		GroupBy:  p.GroupBy,
		TimeCol:  p.TimeCol,
		EventCol: p.EventCol,
		Curves:   curves,
		LogRank: result.LogRankResult{
			Statistic: statistic,
			DF:        df,
			PValue:    chiSquareP(statistic, df),
		},
	}

	if len(groups) == 2 {
		sr.HazardRatio = e.hazardRatio(names, obs, exp)
	}
	return sr, nil
}

// kaplanMeier estimates the survival curve for one group. At each distinct
// event time t, S(t) = S(t-) * (1 - d/n) where d is events at t and n the
// at-risk count; censored subjects leave the risk set without a step.
func kaplanMeier(name string, subjects []subject) result.GroupCurve {
	sorted := append([]subject(nil), subjects...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].time < sorted[b].time })

	curve := result.GroupCurve{Group: name, N: len(sorted)}
	survival := 1.0
	atRisk := len(sorted)

	for i := 0; i < len(sorted); {
		t := sorted[i].time
		events, removed := 0, 0
		for i < len(sorted) && sorted[i].time == t {
			if sorted[i].event {
				events++
			}
			removed++
			i++
		}
		if events > 0 {
			survival *= 1 - float64(events)/float64(atRisk)
			curve.Events += events
			curve.Points = append(curve.Points, result.CurvePoint{
				Time:     t,
				Survival: survival,
				AtRisk:   atRisk,
				Events:   events,
			})
			if curve.MedianSurvival == nil && survival <= 0.5 {
				median := t
				curve.MedianSurvival = &median
			}
		}
		atRisk -= removed
	}
	return curve
}

// logRank computes the k-group log-rank statistic together with the
// observed and expected event counts per group. The statistic is
// sum((O-E)^2 / E), chi-square distributed with k-1 degrees of freedom.
func logRank(groups [][]subject) (statistic float64, observed, expected []float64) {
	observed = make([]float64, len(groups))
	expected = make([]float64, len(groups))

	eventTimes := map[float64]bool{}
	for _, g := range groups {
		for _, s := range g {
			if s.event {
				eventTimes[s.time] = true
			}
		}
	}
	times := make([]float64, 0, len(eventTimes))
	for t := range eventTimes {
		times = append(times, t)
	}
	sort.Float64s(times)

	for _, t := range times {
		totalAtRisk, totalEvents := 0.0, 0.0
		atRisk := make([]float64, len(groups))
		events := make([]float64, len(groups))
		for j, g := range groups {
			for _, s := range g {
				if s.time >= t {
					atRisk[j]++
				}
				if s.event && s.time == t {
					events[j]++
				}
			}
			totalAtRisk += atRisk[j]
			totalEvents += events[j]
		}
		if totalAtRisk == 0 {
			continue
		}
		for j := range groups {
			observed[j] += events[j]
			expected[j] += totalEvents * atRisk[j] / totalAtRisk
		}
	}

	for j := range groups {
		if expected[j] > 0 {
			diff := observed[j] - expected[j]
			statistic += diff * diff / expected[j]
		}
	}
	return statistic, observed, expected
}

// hazardRatio is the Peto estimate from the log-rank observed/expected
// counts, with a log-scale confidence interval. Returns nil when either
// expected count is zero (no events to compare).
func (e *Engine) hazardRatio(names []string, observed, expected []float64) *result.HazardRatio {
	if expected[0] <= 0 || expected[1] <= 0 {
		return nil
	}
	o1, o2 := observed[0], observed[1]
	if o1 == 0 || o2 == 0 {
		// zero events in one arm makes the ratio degenerate
		o1 += e.th.ContinuityCorrection
		o2 += e.th.ContinuityCorrection
	}

	hr := (o1 / expected[0]) / (o2 / expected[1])
	se := math.Sqrt(1/expected[0] + 1/expected[1])
	z := normalQuantile(0.5 + e.th.ConfidenceLevel/2)
	logHR := math.Log(hr)

	return &result.HazardRatio{
		Value:       hr,
		CILower:     math.Exp(logHR - z*se),
		CIUpper:     math.Exp(logHR + z*se),
		Confidence:  e.th.ConfidenceLevel,
		Numerator:   names[0],
		Denominator: names[1],
	}
}
