package action

import (
	"context"
	"fmt"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/template"
)

// Click locates and activates a target. Eligible for the AI fallback when the
// step is flagged or alwaysCUA forces it; otherwise DOM-native.
type Click struct{}

func (*Click) ActionType() string { return config.ActionClick }

func (*Click) Execute(ctx context.Context, session core.Session, step config.Step, ec *ExecContext) (*Result, error) {
	target, err := template.Substitute(step.Target, ec.Vars)
	if err != nil {
		return &Result{Method: core.MethodNone}, fmt.Errorf("resolve click target: %w", err)
	}

	if ec.UseCUA {
		outcome, err := ec.Agent.Perform(ctx, fmt.Sprintf("Click %q", target))
		if err != nil {
			// Method stays cua: the fallback was attempted and is what the
			// timeline must show.
			return &Result{Method: core.MethodCUA}, err
		}
		if !outcome.Success {
			return &Result{
				Method: core.MethodCUA,
				Error:  fmt.Sprintf("agent could not click %q after %d steps", target, outcome.StepsTaken),
			}, nil
		}
		return &Result{Method: core.MethodCUA, Success: true}, nil
	}

	if err := session.Click(ctx, target); err != nil {
		return &Result{Method: core.MethodDOM}, fmt.Errorf("click %q: %w", target, err)
	}
	return &Result{Method: core.MethodDOM, Success: true}, nil
}
