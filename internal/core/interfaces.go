// Package core defines the fundamental interfaces and types for gamepilot:
// the collaborator contracts consumed by action handlers and the shared
// execution vocabulary (methods, variables, error taxonomy).
package core

import (
	"context"
)

// Method identifies how an action was ultimately executed.
type Method string

const (
	// MethodDOM is deterministic execution via direct element/selector targeting.
	MethodDOM Method = "dom"
	// MethodCUA is AI-driven execution through the computer-use agent.
	MethodCUA Method = "cua"
	// MethodNone is used by actions that never touch the session (wait) or
	// that failed before any execution path was taken.
	MethodNone Method = "none"
)

// Session is the browser-driver session collaborator. The engine treats it as
// opaque beyond lifecycle; action handlers use it to navigate, input, and query.
type Session interface {
	Initialize(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, target string) error
	Press(ctx context.Context, key string) error
	Axis(ctx context.Context, name string, value float64) error
	// QueryState returns a JSON snapshot of the observable page/game state.
	QueryState(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// Capture produces screenshot artifacts keyed by step index.
type Capture interface {
	Screenshot(ctx context.Context, s Session, stepIndex int) (string, error)
}

// CUAOutcome is the structured result of one computer-use agent invocation.
type CUAOutcome struct {
	Success    bool
	StepsTaken int
}

// CUAClient is the AI computer-use collaborator. The engine never inspects its
// internals, only success/failure and timing.
type CUAClient interface {
	Initialize(ctx context.Context, model string, maxSteps int) error
	// Perform accomplishes a natural-language goal (or a click target phrased
	// as one) against the current session state.
	Perform(ctx context.Context, goal string) (*CUAOutcome, error)
}
