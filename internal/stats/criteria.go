package stats

import (
	"fmt"

	"gamepilot/internal/config"
)

// CheckResult is the outcome of a single criterion.
type CheckResult struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
}

// CheckResults collects all criteria outcomes for the heuristic evaluation.
type CheckResults struct {
	Passed  bool          `json:"passed"`
	Results []CheckResult `json:"results"`
}

// Check evaluates the spec's heuristic criteria against a computed summary.
// A nil evaluation config passes vacuously.
func Check(ev *config.Evaluation, s *Summary) *CheckResults {
	results := &CheckResults{Passed: true}
	if ev == nil {
		return results
	}

	if ev.MinSuccessRate > 0 {
		passed := s.SuccessRate >= ev.MinSuccessRate
		results.add(CheckResult{
			Name:      "min_success_rate",
			Passed:    passed,
			Threshold: fmt.Sprintf(">=%.1f%%", ev.MinSuccessRate),
			Actual:    fmt.Sprintf("%.1f%%", s.SuccessRate),
		})
	}
	if ev.MaxActionDurationMs > 0 {
		passed := s.Duration.MaxMs <= int64(ev.MaxActionDurationMs)
		results.add(CheckResult{
			Name:      "max_action_duration",
			Passed:    passed,
			Threshold: fmt.Sprintf("<=%dms", ev.MaxActionDurationMs),
			Actual:    fmt.Sprintf("%dms", s.Duration.MaxMs),
		})
	}
	return results
}

func (r *CheckResults) add(c CheckResult) {
	if !c.Passed {
		r.Passed = false
	}
	r.Results = append(r.Results, c)
}

// Describe renders the results as one line for the evaluation progress entry.
func (r *CheckResults) Describe() string {
	if len(r.Results) == 0 {
		return "no criteria configured"
	}
	out := ""
	for i, c := range r.Results {
		if i > 0 {
			out += "; "
		}
		status := "ok"
		if !c.Passed {
			status = "violated"
		}
		out += fmt.Sprintf("%s %s (want %s, got %s)", c.Name, status, c.Threshold, c.Actual)
	}
	return out
}
