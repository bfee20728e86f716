package action

import (
	"context"
	"fmt"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/template"
)

// Press dispatches a key, optionally repeated.
type Press struct{}

func (*Press) ActionType() string { return config.ActionPress }

func (*Press) Execute(ctx context.Context, session core.Session, step config.Step, ec *ExecContext) (*Result, error) {
	key, err := template.Substitute(step.Key, ec.Vars)
	if err != nil {
		return &Result{Method: core.MethodNone}, fmt.Errorf("resolve key: %w", err)
	}

	repeat := step.Repeat
	if repeat < 1 {
		repeat = 1
	}

	if ec.UseCUA {
		goal := fmt.Sprintf("Press the %q key", key)
		if repeat > 1 {
			goal = fmt.Sprintf("Press the %q key %d times", key, repeat)
		}
		outcome, err := ec.Agent.Perform(ctx, goal)
		if err != nil {
			return &Result{Method: core.MethodCUA}, err
		}
		if !outcome.Success {
			return &Result{
				Method: core.MethodCUA,
				Error:  fmt.Sprintf("agent could not press %q after %d steps", key, outcome.StepsTaken),
			}, nil
		}
		return &Result{Method: core.MethodCUA, Success: true}, nil
	}

	for i := 0; i < repeat; i++ {
		if err := session.Press(ctx, key); err != nil {
			return &Result{Method: core.MethodDOM}, fmt.Errorf("press %q (%d/%d): %w", key, i+1, repeat, err)
		}
	}
	return &Result{Method: core.MethodDOM, Success: true}, nil
}
