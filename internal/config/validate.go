package config

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// validateSemantics runs the cross-field rules the structural schema cannot
// express. It returns fatal issues and non-fatal warnings separately; warnings
// never abort loading.
func validateSemantics(spec *TestSpec) (issues, warnings []string) {
	for i, step := range spec.Sequence {
		path := fmt.Sprintf("sequence[%d]", i)

		switch step.Action {
		case ActionClick:
			if step.Target == "" {
				issues = append(issues, fmt.Sprintf("%s: click requires a target", path))
			}
		case ActionPress:
			if step.Key == "" {
				issues = append(issues, fmt.Sprintf("%s: press requires a key", path))
			}
		case ActionWait:
			if step.DurationMs <= 0 {
				issues = append(issues, fmt.Sprintf("%s: wait requires a positive durationMs", path))
			}
		case ActionAxis:
			if step.Axis == "" {
				issues = append(issues, fmt.Sprintf("%s: axis requires an axis name", path))
			}
		case ActionAgent:
			if step.Goal == "" {
				issues = append(issues, fmt.Sprintf("%s: agent requires a goal", path))
			}
		case ActionObserve:
			if step.Gate && step.Assert == "" {
				issues = append(issues, fmt.Sprintf("%s: observe with gate requires an assert expression", path))
			}
			if step.Assert != "" {
				// Variables are only known at run time, so compile permissively.
				if _, err := expr.Compile(step.Assert, expr.AsBool(), expr.AllowUndefinedVariables()); err != nil {
					issues = append(issues, fmt.Sprintf("%s: assert does not compile: %v", path, err))
				}
			}
		}

		// screenshot and wait are never routed to the AI fallback.
		if step.UseCUA && (step.Action == ActionScreenshot || step.Action == ActionWait) {
			warnings = append(warnings, fmt.Sprintf("%s: useCUA is ignored for %s steps", path, step.Action))
		}
		if step.UseCUA && step.Action == ActionAgent {
			warnings = append(warnings, fmt.Sprintf("%s: useCUA is redundant, agent steps are always AI-driven", path))
		}
		if step.UseCUA && step.Action == ActionObserve && step.Assert == "" {
			warnings = append(warnings, fmt.Sprintf("%s: useCUA on observe delegates the assertion; without an assert it is ignored", path))
		}
	}

	if spec.AlwaysCUA && !hasCUAEligibleStep(spec) {
		warnings = append(warnings, "alwaysCUA is set but no step is eligible for AI fallback")
	}
	if spec.Timeouts.Action > spec.Timeouts.Total {
		warnings = append(warnings, fmt.Sprintf(
			"timeouts.action (%dms) exceeds timeouts.total (%dms); the run deadline wins",
			spec.Timeouts.Action, spec.Timeouts.Total))
	}
	if spec.Evaluation != nil && spec.Evaluation.MinSuccessRate == 0 && spec.Evaluation.MaxActionDurationMs == 0 {
		warnings = append(warnings, "evaluation is present but defines no criteria")
	}

	return issues, warnings
}

func hasCUAEligibleStep(spec *TestSpec) bool {
	for _, step := range spec.Sequence {
		if step.Action == ActionClick || step.Action == ActionAgent {
			return true
		}
	}
	return false
}
