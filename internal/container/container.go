// Package container wires the session, capture, and AI-agent collaborators
// into a ready-to-run orchestrator. Agent initialization is conditional: it
// only happens when some step actually needs AI fallback, and failure there
// degrades the run to DOM-only execution with a visible warning instead of
// crashing the container.
package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gamepilot/internal/action"
	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/cua"
	"gamepilot/internal/progress"
	"gamepilot/internal/result"
	"gamepilot/internal/run"
)

// Options collects everything Build needs. Session and Capture are required;
// CUA may be nil when no client is configured.
type Options struct {
	Spec    *config.TestSpec
	Session core.Session
	Capture core.Capture
	CUA     core.CUAClient

	// OutDir holds the result document and screenshots. Required.
	OutDir string
	// ResultPath overrides the default OutDir/result.json.
	ResultPath string

	Progress *progress.Progress
	Debug    *action.DebugLogger
	// Warn receives degradation warnings. Nil means os.Stderr.
	Warn io.Writer

	AbortOnStepFailure bool
	// CUARate paces agent invocations per second; zero selects the default.
	CUARate float64
}

// NeedsCUA reports whether any step in the spec requires the AI fallback:
// a per-step flag on an eligible type, an agent step, or alwaysCUA combined
// with an eligible step. The scan covers per-step flags, not just the global
// one.
func NeedsCUA(spec *config.TestSpec) bool {
	for _, step := range spec.Sequence {
		switch step.Action {
		case config.ActionAgent:
			return true
		case config.ActionScreenshot, config.ActionWait:
			// Never eligible regardless of flags.
		case config.ActionObserve:
			if step.UseCUA && step.Assert != "" {
				return true
			}
		default:
			if step.UseCUA {
				return true
			}
			if spec.AlwaysCUA && step.Action == config.ActionClick {
				return true
			}
		}
	}
	return false
}

// Build initializes the session, conditionally initializes the AI agent, and
// assembles the orchestrator. Session initialization failure is fatal; agent
// initialization failure is not.
func Build(ctx context.Context, opts Options) (*run.Orchestrator, error) {
	if opts.Spec == nil {
		return nil, fmt.Errorf("container: spec is required")
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("container: session is required")
	}
	if opts.Capture == nil {
		return nil, fmt.Errorf("container: capture is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("container: output directory is required")
	}
	warn := opts.Warn
	if warn == nil {
		warn = os.Stderr
	}

	if err := os.MkdirAll(filepath.Join(opts.OutDir, "screenshots"), 0755); err != nil {
		return nil, fmt.Errorf("container: create output directory: %w", err)
	}

	// The agent depends on an active session, so the session comes up first.
	if err := opts.Session.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("container: initialize session: %w", err)
	}

	agent := cua.Unavailable("no step requires AI fallback")
	if NeedsCUA(opts.Spec) {
		agent = initAgent(ctx, opts, warn)
	}

	resultPath := opts.ResultPath
	if resultPath == "" {
		resultPath = filepath.Join(opts.OutDir, "result.json")
	}

	return &run.Orchestrator{
		Spec:               opts.Spec,
		Registry:           action.NewDefaultRegistry(opts.Capture),
		Session:            opts.Session,
		Agent:              agent,
		Writer:             result.NewWriter(resultPath, warn),
		Progress:           opts.Progress,
		Debug:              opts.Debug,
		OutDir:             opts.OutDir,
		AbortOnStepFailure: opts.AbortOnStepFailure,
	}, nil
}

// initAgent constructs the optional AI capability. Every degradation path is
// reported on the warn writer; steps that required the fallback will fail
// individually and visibly rather than crash the run.
func initAgent(ctx context.Context, opts Options, warn io.Writer) *cua.Agent {
	if opts.CUA == nil {
		fmt.Fprintf(warn, "warning: spec requests AI fallback but no CUA client is configured; affected steps will fail\n")
		return cua.Unavailable("no CUA client configured")
	}
	if err := opts.CUA.Initialize(ctx, opts.Spec.CUAModel, opts.Spec.CUAMaxSteps); err != nil {
		fmt.Fprintf(warn, "warning: CUA agent initialization failed (%v); continuing without AI fallback\n", err)
		return cua.Unavailable(fmt.Sprintf("initialization failed: %v", err))
	}
	return cua.NewAgent(opts.CUA, opts.CUARate)
}
