// Package config handles parsing and validation of declarative test specs.
// Loading is a three-stage pipeline: YAML decode, structural JSON Schema
// validation, then a semantic pass that emits hard errors and non-fatal
// warnings. Defaults are applied only for absent fields; a field that is
// present but invalid is a hard error, never silently replaced.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied when a field is absent from the raw spec.
const (
	DefaultRetries       = 3
	DefaultActionRetries = 2
	DefaultLoadTimeout   = 10000 // milliseconds
	DefaultActionTimeout = 15000
	DefaultTotalTimeout  = 45000
	DefaultCUAModel      = "computer-use-preview"
	DefaultCUAMaxSteps   = 15

	// MaxRetries bounds both retry budgets to prevent unbounded backoff storms.
	MaxRetries = 10
)

// Step action type identifiers. These are exactly the registry's default set.
const (
	ActionWait       = "wait"
	ActionScreenshot = "screenshot"
	ActionObserve    = "observe"
	ActionClick      = "click"
	ActionPress      = "press"
	ActionAxis       = "axis"
	ActionAgent      = "agent"
)

// Step is one entry in a test's declarative action sequence. Exactly one
// action type applies per step; the populated parameter fields depend on it.
type Step struct {
	Action     string            `yaml:"action"               json:"action"`
	Target     string            `yaml:"target,omitempty"     json:"target,omitempty"`     // click
	Key        string            `yaml:"key,omitempty"        json:"key,omitempty"`        // press
	Repeat     int               `yaml:"repeat,omitempty"     json:"repeat,omitempty"`     // press
	DurationMs int               `yaml:"durationMs,omitempty" json:"durationMs,omitempty"` // wait
	Axis       string            `yaml:"axis,omitempty"       json:"axis,omitempty"`       // axis
	Value      float64           `yaml:"value,omitempty"      json:"value,omitempty"`      // axis
	Goal       string            `yaml:"goal,omitempty"       json:"goal,omitempty"`       // agent
	Extract    map[string]string `yaml:"extract,omitempty"    json:"extract,omitempty"`    // observe
	Assert     string            `yaml:"assert,omitempty"     json:"assert,omitempty"`     // observe
	Gate       bool              `yaml:"gate,omitempty"       json:"gate,omitempty"`       // observe
	UseCUA     bool              `yaml:"useCUA,omitempty"     json:"useCUA,omitempty"`
}

// Timeouts bounds the run at three granularities, all in milliseconds.
type Timeouts struct {
	Load   int `yaml:"load"   json:"load"`
	Action int `yaml:"action" json:"action"`
	Total  int `yaml:"total"  json:"total"`
}

// Evaluation configures the post-run heuristic scoring phase.
type Evaluation struct {
	MinSuccessRate      float64 `yaml:"minSuccessRate,omitempty"      json:"minSuccessRate,omitempty"` // percent, 0-100
	MaxActionDurationMs int     `yaml:"maxActionDurationMs,omitempty" json:"maxActionDurationMs,omitempty"`
}

// TestSpec is a validated test configuration. Immutable after validation;
// created once per invocation.
type TestSpec struct {
	Name          string
	URL           string
	Sequence      []Step
	Timeouts      Timeouts
	Retries       int // run-level budget
	ActionRetries int // per-step budget
	AlwaysCUA     bool
	CUAModel      string
	CUAMaxSteps   int
	Evaluation    *Evaluation
}

// ValidationError aggregates all fatal issues found while loading a spec.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid test spec: %s", strings.Join(e.Issues, "; "))
}

// rawSpec mirrors TestSpec with pointer-valued scalars so absent fields are
// distinguishable from zero values when merging defaults.
type rawSpec struct {
	Name          string       `yaml:"name"`
	URL           string       `yaml:"url"`
	Sequence      []Step       `yaml:"sequence"`
	Timeouts      *rawTimeouts `yaml:"timeouts"`
	Retries       *int         `yaml:"retries"`
	ActionRetries *int         `yaml:"actionRetries"`
	AlwaysCUA     *bool        `yaml:"alwaysCUA"`
	CUAModel      *string      `yaml:"cuaModel"`
	CUAMaxSteps   *int         `yaml:"cuaMaxSteps"`
	Evaluation    *Evaluation  `yaml:"evaluation"`
}

type rawTimeouts struct {
	Load   *int `yaml:"load"`
	Action *int `yaml:"action"`
	Total  *int `yaml:"total"`
}

// Load reads and validates a spec file. Warnings are non-fatal findings the
// caller should log; they are returned even when err is nil.
func Load(path string) (spec *TestSpec, warnings []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// Parse validates a raw spec document (YAML, or JSON via the YAML superset)
// and merges it with defaults. On failure err is a *ValidationError carrying
// every issue found, not just the first.
func Parse(data []byte) (*TestSpec, []string, error) {
	// Structural phase: shape, types, enums, numeric bounds.
	if issues := validateStructure(data); len(issues) > 0 {
		return nil, nil, &ValidationError{Issues: issues}
	}

	var raw rawSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, &ValidationError{Issues: []string{fmt.Sprintf("parsing spec: %v", err)}}
	}

	spec := raw.merge()

	// Semantic phase: cross-field rules. Warnings never abort loading.
	issues, warnings := validateSemantics(spec)
	if len(issues) > 0 {
		return nil, warnings, &ValidationError{Issues: issues}
	}
	return spec, warnings, nil
}

// merge applies defaults for absent fields. Object-valued fields (timeouts)
// merge key-by-key; scalars are wholly replaced when present.
func (r *rawSpec) merge() *TestSpec {
	spec := &TestSpec{
		Name:     r.Name,
		URL:      r.URL,
		Sequence: r.Sequence,
		Timeouts: Timeouts{
			Load:   DefaultLoadTimeout,
			Action: DefaultActionTimeout,
			Total:  DefaultTotalTimeout,
		},
		Retries:       DefaultRetries,
		ActionRetries: DefaultActionRetries,
		CUAModel:      DefaultCUAModel,
		CUAMaxSteps:   DefaultCUAMaxSteps,
		Evaluation:    r.Evaluation,
	}

	if r.Timeouts != nil {
		if r.Timeouts.Load != nil {
			spec.Timeouts.Load = *r.Timeouts.Load
		}
		if r.Timeouts.Action != nil {
			spec.Timeouts.Action = *r.Timeouts.Action
		}
		if r.Timeouts.Total != nil {
			spec.Timeouts.Total = *r.Timeouts.Total
		}
	}
	if r.Retries != nil {
		spec.Retries = *r.Retries
	}
	if r.ActionRetries != nil {
		spec.ActionRetries = *r.ActionRetries
	}
	if r.AlwaysCUA != nil {
		spec.AlwaysCUA = *r.AlwaysCUA
	}
	if r.CUAModel != nil {
		spec.CUAModel = *r.CUAModel
	}
	if r.CUAMaxSteps != nil {
		spec.CUAMaxSteps = *r.CUAMaxSteps
	}
	return spec
}
