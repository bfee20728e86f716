// Package coordinator manages parallel execution of independent runs. Each
// run owns its session handle and result document; there is no cross-run
// shared mutable state, so the only coordination is lifecycle.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"gamepilot/internal/result"
)

// RunFunc executes one complete run and returns its final document.
type RunFunc func(ctx context.Context) (*result.TestResult, error)

// Outcome is the terminal state of one spawned run.
type Outcome struct {
	Name   string
	Result *result.TestResult
	Err    error
}

type Coordinator struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	outcomes []Outcome
}

func New() *Coordinator {
	return &Coordinator{}
}

// Spawn starts a run in its own goroutine. Panics are recovered and reported
// as failed outcomes so one bad run cannot take down its siblings.
func (c *Coordinator) Spawn(ctx context.Context, name string, fn RunFunc) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.recoverPanic(name)
		res, err := fn(ctx)
		c.record(Outcome{Name: name, Result: res, Err: err})
	}()
}

// Wait blocks until every spawned run finishes and returns their outcomes.
// Order is completion order, not spawn order.
func (c *Coordinator) Wait() []Outcome {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

func (c *Coordinator) record(o Outcome) {
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.mu.Unlock()
}

func (c *Coordinator) recoverPanic(name string) {
	if r := recover(); r != nil {
		c.record(Outcome{Name: name, Err: fmt.Errorf("panic: %v", r)})
	}
}
