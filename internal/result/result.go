// Package result maintains the live test result document: a single JSON file
// rewritten whole after every action so external observers (a polling or
// streaming dashboard) always see a structurally valid snapshot of progress.
package result

import "time"

// ActionMethods counts how steps were executed, by method. Counters only ever
// increment, exactly once per step, after fallback resolution.
type ActionMethods struct {
	CUA  int `json:"cua"`
	DOM  int `json:"dom"`
	None int `json:"none"`
}

// ActionTiming records one executed step. Exactly one entry exists per step
// index; re-execution on a retry overwrites the prior entry for that index.
type ActionTiming struct {
	ActionIndex int       `json:"action_index"`
	Type        string    `json:"type"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	Method      string    `json:"method"` // dom, cua, none
	Succeeded   bool      `json:"succeeded"`
	Error       string    `json:"error,omitempty"`
}

// EvaluationStep tracks one scoring phase (heuristic, llm). At most one live
// entry exists per type; updates replace by type.
type EvaluationStep struct {
	Type   string  `json:"type"`
	Status string  `json:"status"` // running, passed, failed
	Score  float64 `json:"score,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

// TestResult is the live/final result document for one run attempt.
// Exclusively owned and mutated by the Writer during a run.
type TestResult struct {
	RunID              string           `json:"run_id"`
	SpecName           string           `json:"spec_name,omitempty"`
	Attempt            int              `json:"attempt"`
	StartedAt          time.Time        `json:"started_at"`
	EndedAt            *time.Time       `json:"ended_at,omitempty"`
	Success            *bool            `json:"success,omitempty"`
	ScreenshotsDir     string           `json:"screenshots_dir,omitempty"`
	ActionTimings      []ActionTiming   `json:"action_timings"`
	ActionMethods      ActionMethods    `json:"action_methods"`
	EvaluationProgress []EvaluationStep `json:"evaluation_progress,omitempty"`
}
