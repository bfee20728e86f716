package action

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/template"
)

// Observe queries current session state without mutating it. Extracted values
// become run variables for later steps; an assert expression turns the step
// into an assertion, and gate: true makes a failed assertion abort the run.
//
// Extraction always reads the session's state snapshot: the agent reports only
// success and steps taken, never data. What the AI fallback can take over is
// the assertion, checked visually instead of over extracted values, so a
// useCUA observe is AI-driven exactly when it carries an assert.
type Observe struct{}

func (*Observe) ActionType() string { return config.ActionObserve }

func (*Observe) Execute(ctx context.Context, session core.Session, step config.Step, ec *ExecContext) (*Result, error) {
	method := core.MethodDOM
	if ec.UseCUA && step.Assert != "" {
		method = core.MethodCUA
	}

	state, err := session.QueryState(ctx)
	if err != nil {
		return &Result{Method: method}, fmt.Errorf("query state: %w", err)
	}

	if len(step.Extract) > 0 {
		extracted, err := template.Extract(state, step.Extract)
		if err != nil {
			return &Result{
				Method:   method,
				Error:    err.Error(),
				AbortRun: step.Gate,
			}, nil
		}
		for k, v := range extracted {
			ec.Vars.Set(k, v)
		}
	}

	if step.Assert != "" {
		if method == core.MethodCUA {
			return observeViaAgent(ctx, step, ec)
		}

		pass, err := evalAssert(step.Assert, ec.Vars)
		if err != nil {
			return &Result{
				Method:   method,
				Error:    fmt.Sprintf("assert %q: %v", step.Assert, err),
				AbortRun: step.Gate,
			}, nil
		}
		if !pass {
			return &Result{
				Method:   method,
				Error:    fmt.Sprintf("assert %q did not hold", step.Assert),
				AbortRun: step.Gate,
			}, nil
		}
	}

	return &Result{Method: method, Success: true}, nil
}

// observeViaAgent delegates the assertion as a visual verification goal.
func observeViaAgent(ctx context.Context, step config.Step, ec *ExecContext) (*Result, error) {
	goal := fmt.Sprintf("Verify that the condition %q holds in the current game state", step.Assert)
	outcome, err := ec.Agent.Perform(ctx, goal)
	if err != nil {
		return &Result{Method: core.MethodCUA}, err
	}
	if !outcome.Success {
		return &Result{
			Method:   core.MethodCUA,
			Error:    fmt.Sprintf("agent could not verify %q after %d steps", step.Assert, outcome.StepsTaken),
			AbortRun: step.Gate,
		}, nil
	}
	return &Result{Method: core.MethodCUA, Success: true}, nil
}

// evalAssert evaluates a boolean expression over the run's variables.
func evalAssert(assertion string, vars core.Variables) (bool, error) {
	env := vars.All()
	program, err := expr.Compile(assertion, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return bool (got %T)", output)
	}
	return result, nil
}
