package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustParse(t *testing.T, yaml string) (*TestSpec, []string) {
	t.Helper()
	spec, warnings, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return spec, warnings
}

func parseIssues(t *testing.T, yaml string) []string {
	t.Helper()
	_, _, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return ve.Issues
}

func hasIssue(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}

func TestParse_DefaultsWhenAbsent(t *testing.T) {
	spec, warnings := mustParse(t, `
name: minimal
sequence:
  - action: wait
    durationMs: 100
`)

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if spec.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want default %d", spec.Retries, DefaultRetries)
	}
	if spec.ActionRetries != DefaultActionRetries {
		t.Errorf("ActionRetries = %d, want default %d", spec.ActionRetries, DefaultActionRetries)
	}
	if spec.Timeouts.Load != DefaultLoadTimeout {
		t.Errorf("Timeouts.Load = %d, want default %d", spec.Timeouts.Load, DefaultLoadTimeout)
	}
	if spec.Timeouts.Action != DefaultActionTimeout {
		t.Errorf("Timeouts.Action = %d, want default %d", spec.Timeouts.Action, DefaultActionTimeout)
	}
	if spec.Timeouts.Total != DefaultTotalTimeout {
		t.Errorf("Timeouts.Total = %d, want default %d", spec.Timeouts.Total, DefaultTotalTimeout)
	}
	if spec.CUAModel != DefaultCUAModel {
		t.Errorf("CUAModel = %q, want default %q", spec.CUAModel, DefaultCUAModel)
	}
	if spec.CUAMaxSteps != DefaultCUAMaxSteps {
		t.Errorf("CUAMaxSteps = %d, want default %d", spec.CUAMaxSteps, DefaultCUAMaxSteps)
	}
	if spec.AlwaysCUA {
		t.Error("AlwaysCUA should default to false")
	}
	if spec.Evaluation != nil {
		t.Error("Evaluation should be nil when absent")
	}
}

func TestParse_TimeoutsMergeKeyByKey(t *testing.T) {
	spec, _ := mustParse(t, `
sequence:
  - action: wait
    durationMs: 100
timeouts:
  action: 5000
`)

	if spec.Timeouts.Action != 5000 {
		t.Errorf("Timeouts.Action = %d, want 5000", spec.Timeouts.Action)
	}
	// The sibling keys keep their defaults rather than zeroing out.
	if spec.Timeouts.Load != DefaultLoadTimeout {
		t.Errorf("Timeouts.Load = %d, want default %d", spec.Timeouts.Load, DefaultLoadTimeout)
	}
	if spec.Timeouts.Total != DefaultTotalTimeout {
		t.Errorf("Timeouts.Total = %d, want default %d", spec.Timeouts.Total, DefaultTotalTimeout)
	}
}

func TestParse_ExplicitZeroRetriesIsKept(t *testing.T) {
	spec, _ := mustParse(t, `
sequence:
  - action: wait
    durationMs: 100
retries: 0
actionRetries: 0
`)

	if spec.Retries != 0 {
		t.Errorf("Retries = %d, want explicit 0", spec.Retries)
	}
	if spec.ActionRetries != 0 {
		t.Errorf("ActionRetries = %d, want explicit 0", spec.ActionRetries)
	}
}

func TestParse_FullSpec(t *testing.T) {
	spec, _ := mustParse(t, `
name: boss-fight
url: https://example.com/game
sequence:
  - action: click
    target: "#start"
  - action: press
    key: Space
    repeat: 3
  - action: observe
    extract:
      score: $.player.score
    assert: "score > 0"
    gate: true
  - action: agent
    goal: defeat the first boss
timeouts:
  load: 20000
  action: 8000
  total: 60000
retries: 1
actionRetries: 5
alwaysCUA: true
cuaModel: custom-model
cuaMaxSteps: 30
evaluation:
  minSuccessRate: 90
  maxActionDurationMs: 10000
`)

	if spec.Name != "boss-fight" {
		t.Errorf("Name = %q", spec.Name)
	}
	if len(spec.Sequence) != 4 {
		t.Fatalf("len(Sequence) = %d, want 4", len(spec.Sequence))
	}
	if spec.Sequence[1].Repeat != 3 {
		t.Errorf("Sequence[1].Repeat = %d, want 3", spec.Sequence[1].Repeat)
	}
	if spec.Sequence[2].Extract["score"] != "$.player.score" {
		t.Errorf("Sequence[2].Extract = %v", spec.Sequence[2].Extract)
	}
	if !spec.Sequence[2].Gate {
		t.Error("Sequence[2].Gate should be true")
	}
	if !spec.AlwaysCUA {
		t.Error("AlwaysCUA should be true")
	}
	if spec.CUAModel != "custom-model" {
		t.Errorf("CUAModel = %q", spec.CUAModel)
	}
	if spec.Evaluation == nil || spec.Evaluation.MinSuccessRate != 90 {
		t.Errorf("Evaluation = %+v", spec.Evaluation)
	}
}

func TestParse_RejectsEmptyDocument(t *testing.T) {
	issues := parseIssues(t, "")
	if !hasIssue(issues, "empty") {
		t.Errorf("expected empty-document issue, got %v", issues)
	}
}

func TestParse_RejectsMissingSequence(t *testing.T) {
	issues := parseIssues(t, `name: no-steps`)
	if !hasIssue(issues, "sequence") {
		t.Errorf("expected missing-sequence issue, got %v", issues)
	}
}

func TestParse_RejectsUnknownTopLevelField(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: wait
    durationMs: 100
retrys: 5
`)
	if len(issues) == 0 {
		t.Fatal("expected issues for unknown field")
	}
}

func TestParse_RejectsUnknownActionType(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: swipe
    target: "#thing"
`)
	if len(issues) == 0 {
		t.Fatal("expected issues for unknown action type")
	}
}

func TestParse_RejectsRetriesAboveCap(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: wait
    durationMs: 100
retries: 11
`)
	if !hasIssue(issues, "retries") {
		t.Errorf("expected retries bound issue, got %v", issues)
	}
}

func TestParse_RejectsNonPositiveTimeout(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: wait
    durationMs: 100
timeouts:
  load: -5
`)
	if !hasIssue(issues, "load") {
		t.Errorf("expected load timeout issue, got %v", issues)
	}
}

func TestParse_CollectsAllSemanticIssues(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: click
  - action: press
  - action: agent
  - action: observe
    gate: true
`)

	want := []string{
		"sequence[0]: click requires a target",
		"sequence[1]: press requires a key",
		"sequence[2]: agent requires a goal",
		"sequence[3]: observe with gate requires an assert expression",
	}
	for _, w := range want {
		if !hasIssue(issues, w) {
			t.Errorf("missing issue %q in %v", w, issues)
		}
	}
}

func TestParse_RejectsUncompilableAssert(t *testing.T) {
	issues := parseIssues(t, `
sequence:
  - action: observe
    assert: "score >"
`)
	if !hasIssue(issues, "assert does not compile") {
		t.Errorf("expected assert compile issue, got %v", issues)
	}
}

func TestParse_Warnings(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "useCUA on wait",
			yaml: "sequence:\n  - action: wait\n    durationMs: 100\n    useCUA: true\n",
			want: "useCUA is ignored",
		},
		{
			name: "useCUA on agent",
			yaml: "sequence:\n  - action: agent\n    goal: win\n    useCUA: true\n",
			want: "redundant",
		},
		{
			name: "useCUA on observe without assert",
			yaml: "sequence:\n  - action: observe\n    useCUA: true\n",
			want: "without an assert it is ignored",
		},
		{
			name: "alwaysCUA without eligible step",
			yaml: "alwaysCUA: true\nsequence:\n  - action: wait\n    durationMs: 100\n",
			want: "no step is eligible",
		},
		{
			name: "action timeout exceeds total",
			yaml: "timeouts:\n  action: 60000\nsequence:\n  - action: wait\n    durationMs: 100\n",
			want: "exceeds timeouts.total",
		},
		{
			name: "evaluation without criteria",
			yaml: "evaluation: {}\nsequence:\n  - action: wait\n    durationMs: 100\n",
			want: "no criteria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, warnings := mustParse(t, tt.yaml)
			if !hasIssue(warnings, tt.want) {
				t.Errorf("expected warning containing %q, got %v", tt.want, warnings)
			}
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	data := "name: from-file\nsequence:\n  - action: wait\n    durationMs: 50\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	spec, _, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Name != "from-file" {
		t.Errorf("Name = %q, want from-file", spec.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
