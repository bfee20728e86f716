package action

import (
	"context"
	"fmt"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/template"
)

// Agent delegates the entire step to the computer-use agent to accomplish a
// natural-language goal rather than a single primitive. Always AI-driven.
type Agent struct{}

func (*Agent) ActionType() string { return config.ActionAgent }

func (*Agent) Execute(ctx context.Context, _ core.Session, step config.Step, ec *ExecContext) (*Result, error) {
	goal, err := template.Substitute(step.Goal, ec.Vars)
	if err != nil {
		return &Result{Method: core.MethodNone}, fmt.Errorf("resolve goal: %w", err)
	}

	outcome, err := ec.Agent.Perform(ctx, goal)
	if err != nil {
		return &Result{Method: core.MethodCUA}, err
	}
	if !outcome.Success {
		return &Result{
			Method: core.MethodCUA,
			Error:  fmt.Sprintf("agent gave up on %q after %d steps", goal, outcome.StepsTaken),
		}, nil
	}
	return &Result{Method: core.MethodCUA, Success: true}, nil
}
