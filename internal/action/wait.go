package action

import (
	"context"
	"time"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
)

// Wait delays for the step's duration. No session interaction beyond
// scheduling, so its method is always "none" and it is never routed to the
// AI fallback.
type Wait struct{}

func (*Wait) ActionType() string { return config.ActionWait }

func (*Wait) Execute(ctx context.Context, _ core.Session, step config.Step, _ *ExecContext) (*Result, error) {
	t := time.NewTimer(time.Duration(step.DurationMs) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &Result{Method: core.MethodNone}, ctx.Err()
	case <-t.C:
		return &Result{Method: core.MethodNone, Success: true}, nil
	}
}
