// Package run contains the execution orchestrator: the state machine that
// turns a validated test spec and a live session into a sequence of executed
// actions, a stream of incremental result updates, and a final outcome.
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gamepilot/internal/action"
	"gamepilot/internal/config"
	"gamepilot/internal/core"
	"gamepilot/internal/cua"
	"gamepilot/internal/progress"
	"gamepilot/internal/result"
	"gamepilot/internal/retry"
	"gamepilot/internal/stats"
)

const (
	// actionRetryBaseDelay seeds the per-step backoff.
	actionRetryBaseDelay = 500 * time.Millisecond
	// runRetryBaseDelay seeds the whole-run backoff.
	runRetryBaseDelay = 2 * time.Second
)

// Orchestrator drives one spec against one session. Steps execute strictly
// sequentially: each mutates shared session state the next depends on.
// Concurrency across runs is the coordinator's business, never this type's.
type Orchestrator struct {
	Spec     *config.TestSpec
	Registry *action.Registry
	Session  core.Session
	Agent    *cua.Agent
	Writer   *result.Writer
	Progress *progress.Progress
	Debug    *action.DebugLogger
	Clock    core.Clock
	// OutDir is recorded in the result document as the screenshots directory
	// reference.
	OutDir string
	// AbortOnStepFailure aborts the remaining sequence once a step exhausts
	// its retry budget. Default false: record the failure and continue.
	AbortOnStepFailure bool

	// Backoff pacing; zero selects the package defaults. Overridable so tests
	// do not sleep through real backoff schedules.
	runRetryBase    time.Duration
	actionRetryBase time.Duration
}

// Run executes the full sequence, restarting it from step 0 with backoff when
// an aggregate run failure (session loss, run timeout) is classified
// retryable, up to the spec's run-level budget. Each attempt produces a fresh
// result document. Exhausting the budget is the only condition surfaced as an
// error; per-step failures live in the document's timings instead.
func (o *Orchestrator) Run(ctx context.Context) (*result.TestResult, error) {
	if o.Clock == nil {
		o.Clock = core.RealClock{}
	}
	if o.runRetryBase == 0 {
		o.runRetryBase = runRetryBaseDelay
	}
	if o.actionRetryBase == 0 {
		o.actionRetryBase = actionRetryBaseDelay
	}

	attempt := 0
	doc, err := retry.Do(ctx, func(ctx context.Context) (*result.TestResult, error) {
		attempt++
		return o.runOnce(ctx, attempt)
	}, retry.Options{
		MaxAttempts: o.Spec.Retries + 1,
		BaseDelay:   o.runRetryBase,
	})
	if err != nil {
		// The final attempt's document is still on disk; return it alongside
		// the error so reporters can show partial timings.
		if d, rerr := o.Writer.Read(); rerr == nil {
			return d, err
		}
		return nil, err
	}
	return doc, nil
}

// runOnce executes one full attempt of the sequence.
func (o *Orchestrator) runOnce(ctx context.Context, attempt int) (*result.TestResult, error) {
	spec := o.Spec

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(spec.Timeouts.Total)*time.Millisecond)
	defer cancel()

	doc := &result.TestResult{
		RunID:          uuid.NewString(),
		SpecName:       spec.Name,
		Attempt:        attempt,
		StartedAt:      o.Clock.Now(),
		ScreenshotsDir: filepath.Join(o.OutDir, "screenshots"),
	}
	if err := o.Writer.Init(doc); err != nil {
		return nil, err
	}

	runFailed := false
	finalized := false
	var runErr error

	// Terminal state lands in the document on every exit path, so partial
	// results stay observable even when an attempt aborts early.
	defer func() {
		if !finalized {
			o.Writer.Finalize(false, o.Clock.Now())
		}
	}()

	if spec.URL != "" {
		loadCtx, loadCancel := context.WithTimeout(runCtx, time.Duration(spec.Timeouts.Load)*time.Millisecond)
		err := o.Session.Navigate(loadCtx, spec.URL)
		loadCancel()
		if err != nil {
			runFailed = true
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("load %s: timed out after %dms", spec.URL, spec.Timeouts.Load)
			}
			return nil, fmt.Errorf("load %s: %w", spec.URL, err)
		}
	}

	o.Progress.Start(len(spec.Sequence))
	defer o.Progress.Stop()

	vars := core.NewVariables()
	var methods result.ActionMethods
	failures := 0

	for i, step := range spec.Sequence {
		if runCtx.Err() != nil {
			runFailed = true
			runErr = fmt.Errorf("run timed out after %dms at step %d", spec.Timeouts.Total, i)
			break
		}

		handler, ok := o.Registry.Get(step.Action)
		if !ok {
			runFailed = true
			runErr = &core.UnknownActionError{Type: step.Action}
			break
		}

		timing, res := o.executeStep(runCtx, i, step, handler, vars)

		switch core.Method(timing.Method) {
		case core.MethodCUA:
			methods.CUA++
		case core.MethodDOM:
			methods.DOM++
		default:
			methods.None++
		}
		if !timing.Succeeded {
			failures++
			runFailed = true
		}

		o.Writer.AddAction(timing)
		o.Writer.UpdateActionMethods(methods.CUA, methods.DOM, methods.None)
		o.Progress.Record(i+1, methods, failures)

		if !timing.Succeeded {
			if res != nil && res.AbortRun {
				runErr = &core.FatalStepError{StepIndex: i, Type: step.Action, Reason: timing.Error}
				break
			}
			if o.AbortOnStepFailure {
				runErr = &core.FatalStepError{StepIndex: i, Type: step.Action, Reason: "abort-on-step-failure policy"}
				break
			}
			// Default policy: record and continue to the next step.
		}
	}

	if runErr == nil {
		if failed := o.evaluate(); failed {
			runFailed = true
		}
	}

	// Finalize before the final read so the returned document carries the
	// terminal state the file does.
	o.Writer.Finalize(!runFailed && runErr == nil, o.Clock.Now())
	finalized = true

	if runErr != nil {
		return nil, runErr
	}
	return o.Writer.Read()
}

// executeStep runs one step through the retry policy and produces its timing.
// A step that exhausts its budget is failed-fatal for the step, not the run.
func (o *Orchestrator) executeStep(ctx context.Context, index int, step config.Step, handler action.Action, vars core.Variables) (result.ActionTiming, *action.Result) {
	useCUA := o.selectCUA(step)
	ec := &action.ExecContext{
		StepIndex: index,
		Timeouts:  o.Spec.Timeouts,
		UseCUA:    useCUA,
		Agent:     o.Agent,
		Vars:      vars,
		Debug:     o.Debug,
	}

	planned := core.MethodDOM
	if useCUA {
		planned = core.MethodCUA
	}
	o.Debug.LogDispatch(index, step.Action, planned, "")

	started := o.Clock.Now()
	var lastRes *action.Result

	res, err := retry.Do(ctx, func(ctx context.Context) (*action.Result, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(o.Spec.Timeouts.Action)*time.Millisecond)
		defer cancel()

		r, err := handler.Execute(attemptCtx, o.Session, step, ec)
		if r != nil {
			lastRes = r
		}
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// Surface the action-level bound as a retryable timeout.
			err = fmt.Errorf("action %s timed out after %dms", step.Action, o.Spec.Timeouts.Action)
		}
		return r, err
	}, retry.Options{
		MaxAttempts: o.Spec.ActionRetries + 1,
		BaseDelay:   o.actionRetryBase,
	})
	duration := o.Clock.Since(started)

	if res == nil {
		res = lastRes
	}

	method := core.MethodNone
	if res != nil {
		method = res.Method
	}

	timing := result.ActionTiming{
		ActionIndex: index,
		Type:        step.Action,
		StartedAt:   started,
		DurationMs:  duration.Milliseconds(),
		Method:      string(method),
	}
	switch {
	case err != nil:
		timing.Error = err.Error()
	case res != nil && !res.Success:
		timing.Error = res.Error
	default:
		timing.Succeeded = true
	}

	o.Debug.LogOutcome(index, step.Action, res, duration, err)
	return timing, res
}

// selectCUA applies the hybrid strategy, evaluated once per step:
// screenshot and wait are never eligible; agent steps are AI-driven by
// definition; a per-step flag or alwaysCUA (for eligible types) opts in.
// An observe delegates only its assertion, so the flag needs an assert to act on.
func (o *Orchestrator) selectCUA(step config.Step) bool {
	switch step.Action {
	case config.ActionScreenshot, config.ActionWait:
		return false
	case config.ActionAgent:
		return true
	case config.ActionObserve:
		return step.UseCUA && step.Assert != ""
	}
	if step.UseCUA {
		return true
	}
	if o.Spec.AlwaysCUA && step.Action == config.ActionClick {
		return true
	}
	return false
}

// evaluate runs the heuristic scoring phase over the recorded timings,
// streaming its progress into the result document. Returns true when a
// criterion was violated.
func (o *Orchestrator) evaluate() bool {
	if o.Spec.Evaluation == nil {
		return false
	}

	o.Writer.AddEvaluationStep(result.EvaluationStep{Type: "heuristic", Status: "running"})

	doc, err := o.Writer.Read()
	if err != nil {
		// The document is unreadable; the writer already logged why. Leave
		// the phase as running rather than invent an outcome.
		return false
	}

	summary := stats.Compute(doc.ActionTimings)
	checks := stats.Check(o.Spec.Evaluation, summary)

	status := "passed"
	if !checks.Passed {
		status = "failed"
	}
	o.Writer.AddEvaluationStep(result.EvaluationStep{
		Type:   "heuristic",
		Status: status,
		Score:  summary.SuccessRate,
		Detail: checks.Describe(),
	})
	return !checks.Passed
}
