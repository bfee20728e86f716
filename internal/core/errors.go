package core

import "fmt"

// UnknownActionError indicates a step references an action type that is not
// registered. A malformed sequence is a configuration defect, not a transient
// fault, so this aborts the whole run.
type UnknownActionError struct {
	Type string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action type %q", e.Type)
}

// FatalStepError marks a step failure that must abort the remaining sequence
// (a gate observe that did not hold, or an explicit abort-on-failure policy).
// It deliberately avoids the retryable vocabulary so the run-level retry
// classifier never re-runs the sequence for it.
type FatalStepError struct {
	StepIndex int
	Type      string
	Reason    string
}

func (e *FatalStepError) Error() string {
	return fmt.Sprintf("step %d (%s) aborted run: %s", e.StepIndex, e.Type, e.Reason)
}
