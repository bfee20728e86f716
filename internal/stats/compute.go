// Package stats aggregates action timings into per-type and overall metrics
// used by the heuristic evaluation phase and the final console summary.
package stats

import (
	"gamepilot/internal/core"
	"gamepilot/internal/result"
)

// DurationStats summarizes action durations in milliseconds.
type DurationStats struct {
	MinMs int64 `json:"min_ms"`
	AvgMs int64 `json:"avg_ms"`
	MaxMs int64 `json:"max_ms"`
}

// TypeStats aggregates timings for one action type.
type TypeStats struct {
	Count     int           `json:"count"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  DurationStats `json:"duration"`
}

// Summary is the aggregate view over one run's timings.
type Summary struct {
	TotalActions int                   `json:"total_actions"`
	Succeeded    int                   `json:"succeeded"`
	Failed       int                   `json:"failed"`
	SuccessRate  float64               `json:"success_rate"` // percent
	Methods      result.ActionMethods  `json:"methods"`
	Duration     DurationStats         `json:"duration"`
	PerType      map[string]*TypeStats `json:"per_type"`
}

// Compute aggregates timings. Pure function, no side effects.
func Compute(timings []result.ActionTiming) *Summary {
	s := &Summary{PerType: make(map[string]*TypeStats)}
	if len(timings) == 0 {
		return s
	}

	all := make([]int64, 0, len(timings))
	perType := make(map[string][]int64)

	for _, t := range timings {
		s.TotalActions++
		if t.Succeeded {
			s.Succeeded++
		} else {
			s.Failed++
		}
		switch t.Method {
		case string(core.MethodCUA):
			s.Methods.CUA++
		case string(core.MethodDOM):
			s.Methods.DOM++
		default:
			s.Methods.None++
		}

		all = append(all, t.DurationMs)

		ts, exists := s.PerType[t.Type]
		if !exists {
			ts = &TypeStats{}
			s.PerType[t.Type] = ts
		}
		ts.Count++
		if t.Succeeded {
			ts.Succeeded++
		} else {
			ts.Failed++
		}
		perType[t.Type] = append(perType[t.Type], t.DurationMs)
	}

	s.SuccessRate = float64(s.Succeeded) / float64(s.TotalActions) * 100
	s.Duration = computeDurations(all)
	for t, durations := range perType {
		s.PerType[t].Duration = computeDurations(durations)
	}
	return s
}

func computeDurations(durations []int64) DurationStats {
	if len(durations) == 0 {
		return DurationStats{}
	}
	d := DurationStats{MinMs: durations[0], MaxMs: durations[0]}
	var sum int64
	for _, v := range durations {
		sum += v
		if v < d.MinMs {
			d.MinMs = v
		}
		if v > d.MaxMs {
			d.MaxMs = v
		}
	}
	d.AvgMs = sum / int64(len(durations))
	return d
}
