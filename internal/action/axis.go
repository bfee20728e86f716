package action

import (
	"context"
	"fmt"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
)

// Axis dispatches continuous/analog input (a directional axis value), as
// opposed to a discrete key press.
type Axis struct{}

func (*Axis) ActionType() string { return config.ActionAxis }

func (*Axis) Execute(ctx context.Context, session core.Session, step config.Step, ec *ExecContext) (*Result, error) {
	if ec.UseCUA {
		outcome, err := ec.Agent.Perform(ctx, fmt.Sprintf("Move the %q axis to %v", step.Axis, step.Value))
		if err != nil {
			return &Result{Method: core.MethodCUA}, err
		}
		if !outcome.Success {
			return &Result{
				Method: core.MethodCUA,
				Error:  fmt.Sprintf("agent could not move axis %q to %v after %d steps", step.Axis, step.Value, outcome.StepsTaken),
			}, nil
		}
		return &Result{Method: core.MethodCUA, Success: true}, nil
	}

	if err := session.Axis(ctx, step.Axis, step.Value); err != nil {
		return &Result{Method: core.MethodDOM}, fmt.Errorf("axis %q=%v: %w", step.Axis, step.Value, err)
	}
	return &Result{Method: core.MethodDOM, Success: true}, nil
}
