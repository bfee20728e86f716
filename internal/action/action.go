// Package action defines the polymorphic action contract, the default action
// set, and the registry that dispatches step types to handlers.
package action

import (
	"context"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/cua"
)

// ExecContext carries per-step execution context into a handler: timeouts,
// the hybrid-strategy decision, the (possibly absent) agent capability, and
// the run's shared variables.
type ExecContext struct {
	StepIndex int
	Timeouts  config.Timeouts
	// UseCUA is the hybrid-strategy decision, made exactly once per step by
	// the orchestrator before dispatch.
	UseCUA bool
	Agent  *cua.Agent
	Vars   core.Variables
	Debug  *DebugLogger
}

// Result is the outcome of one step attempt.
type Result struct {
	Method   core.Method
	Success  bool
	Error    string
	Artifact string // screenshot path, when captured
	// AbortRun is set by steps whose own semantics gate the rest of the
	// sequence (a failed observe with gate: true).
	AbortRun bool
}

// Action is the common capability every registered handler implements.
// Handlers return an error for infrastructure failures (eligible for retry
// classification) and a Result with Success=false for semantic failures.
// A non-nil Result alongside an error tells the orchestrator which method
// was attempted.
type Action interface {
	ActionType() string
	Execute(ctx context.Context, session core.Session, step config.Step, ec *ExecContext) (*Result, error)
}
