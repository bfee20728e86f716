package action

import (
	"context"
	"fmt"

	"gamepilot/internal/config"
	"gamepilot/internal/core"
)

// Screenshot captures the current visual state through the capture
// collaborator. Always DOM-native, never routed to the AI fallback.
type Screenshot struct {
	Capture core.Capture
}

func (*Screenshot) ActionType() string { return config.ActionScreenshot }

func (s *Screenshot) Execute(ctx context.Context, session core.Session, _ config.Step, ec *ExecContext) (*Result, error) {
	if s.Capture == nil {
		return &Result{Method: core.MethodDOM}, fmt.Errorf("no capture collaborator configured")
	}
	path, err := s.Capture.Screenshot(ctx, session, ec.StepIndex)
	if err != nil {
		return &Result{Method: core.MethodDOM}, fmt.Errorf("screenshot: %w", err)
	}
	return &Result{Method: core.MethodDOM, Success: true, Artifact: path}, nil
}
