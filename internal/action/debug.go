package action

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gamepilot/internal/core"
)

// DebugLogger writes verbose per-action dispatch and outcome lines in verbose
// mode. A nil *DebugLogger is safe to call and logs nothing.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

func (d *DebugLogger) LogDispatch(stepIndex int, actionType string, method core.Method, detail string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if detail != "" {
		fmt.Fprintf(d.out, "[step %d] >>> %s via %s: %s\n", stepIndex, actionType, method, detail)
		return
	}
	fmt.Fprintf(d.out, "[step %d] >>> %s via %s\n", stepIndex, actionType, method)
}

func (d *DebugLogger) LogOutcome(stepIndex int, actionType string, res *Result, duration time.Duration, err error) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case err != nil:
		fmt.Fprintf(d.out, "[step %d] !!! %s failed (%s)\n  %v\n",
			stepIndex, actionType, duration.Round(time.Millisecond), err)
	case res != nil && !res.Success:
		fmt.Fprintf(d.out, "[step %d] !!! %s failed (%s)\n  %s\n",
			stepIndex, actionType, duration.Round(time.Millisecond), res.Error)
	default:
		artifact := ""
		if res != nil && res.Artifact != "" {
			artifact = " -> " + res.Artifact
		}
		fmt.Fprintf(d.out, "[step %d] <<< %s ok (%s)%s\n",
			stepIndex, actionType, duration.Round(time.Millisecond), artifact)
	}
}
