package stats

import (
	"strings"
	"testing"

	"gamepilot/internal/config"
	"gamepilot/internal/result"
)

func sampleTimings() []result.ActionTiming {
	return []result.ActionTiming{
		{ActionIndex: 0, Type: "click", DurationMs: 100, Method: "dom", Succeeded: true},
		{ActionIndex: 1, Type: "click", DurationMs: 300, Method: "cua", Succeeded: true},
		{ActionIndex: 2, Type: "press", DurationMs: 50, Method: "dom", Succeeded: true},
		{ActionIndex: 3, Type: "wait", DurationMs: 1000, Method: "none", Succeeded: true},
		{ActionIndex: 4, Type: "click", DurationMs: 200, Method: "dom", Succeeded: false, Error: "element not found"},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(sampleTimings())

	if s.TotalActions != 5 || s.Succeeded != 4 || s.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", s.TotalActions, s.Succeeded, s.Failed)
	}
	if s.SuccessRate != 80 {
		t.Errorf("SuccessRate = %v, want 80", s.SuccessRate)
	}
	want := result.ActionMethods{CUA: 1, DOM: 3, None: 1}
	if s.Methods != want {
		t.Errorf("Methods = %+v, want %+v", s.Methods, want)
	}
	if s.Duration.MinMs != 50 || s.Duration.MaxMs != 1000 || s.Duration.AvgMs != 330 {
		t.Errorf("Duration = %+v", s.Duration)
	}

	clicks := s.PerType["click"]
	if clicks == nil || clicks.Count != 3 || clicks.Succeeded != 2 || clicks.Failed != 1 {
		t.Errorf("PerType[click] = %+v", clicks)
	}
	if clicks.Duration.MinMs != 100 || clicks.Duration.MaxMs != 300 || clicks.Duration.AvgMs != 200 {
		t.Errorf("PerType[click].Duration = %+v", clicks.Duration)
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.TotalActions != 0 || s.SuccessRate != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s.PerType == nil {
		t.Error("PerType should be initialized")
	}
}

func TestCheck_NilEvaluationPasses(t *testing.T) {
	checks := Check(nil, Compute(sampleTimings()))
	if !checks.Passed {
		t.Error("nil evaluation must pass vacuously")
	}
	if len(checks.Results) != 0 {
		t.Errorf("Results = %v", checks.Results)
	}
}

func TestCheck_SuccessRate(t *testing.T) {
	s := Compute(sampleTimings()) // 80%

	checks := Check(&config.Evaluation{MinSuccessRate: 75}, s)
	if !checks.Passed {
		t.Errorf("80%% >= 75%% should pass: %+v", checks.Results)
	}

	checks = Check(&config.Evaluation{MinSuccessRate: 90}, s)
	if checks.Passed {
		t.Error("80% >= 90% should fail")
	}
	if len(checks.Results) != 1 || checks.Results[0].Name != "min_success_rate" {
		t.Errorf("Results = %+v", checks.Results)
	}
}

func TestCheck_MaxActionDuration(t *testing.T) {
	s := Compute(sampleTimings()) // max 1000ms

	if checks := Check(&config.Evaluation{MaxActionDurationMs: 1000}, s); !checks.Passed {
		t.Errorf("1000ms <= 1000ms should pass: %+v", checks.Results)
	}
	if checks := Check(&config.Evaluation{MaxActionDurationMs: 500}, s); checks.Passed {
		t.Error("1000ms <= 500ms should fail")
	}
}

func TestCheck_OneViolationFailsAll(t *testing.T) {
	checks := Check(&config.Evaluation{MinSuccessRate: 50, MaxActionDurationMs: 500}, Compute(sampleTimings()))
	if checks.Passed {
		t.Error("any violated criterion fails the evaluation")
	}
	if len(checks.Results) != 2 {
		t.Errorf("Results = %+v", checks.Results)
	}
}

func TestDescribe(t *testing.T) {
	checks := Check(&config.Evaluation{MinSuccessRate: 90, MaxActionDurationMs: 2000}, Compute(sampleTimings()))
	desc := checks.Describe()

	if !strings.Contains(desc, "min_success_rate violated") {
		t.Errorf("Describe() = %q", desc)
	}
	if !strings.Contains(desc, "max_action_duration ok") {
		t.Errorf("Describe() = %q", desc)
	}

	empty := &CheckResults{Passed: true}
	if empty.Describe() != "no criteria configured" {
		t.Errorf("empty Describe() = %q", empty.Describe())
	}
}
