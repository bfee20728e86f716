// Package stub provides in-memory collaborator implementations for dry runs:
// they satisfy the session, capture, and CUA contracts without any browser or
// AI backend, so a spec's sequencing, timing, and result plumbing can be
// exercised end to end.
package stub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gamepilot/internal/core"
)

// Session records every call it receives and answers state queries from a
// configurable JSON snapshot.
type Session struct {
	// State is returned by QueryState. Defaults to an empty JSON object.
	State []byte

	mu    sync.Mutex
	calls []string
}

func (s *Session) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

// Calls returns a copy of the recorded call log.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Session) Initialize(context.Context) error {
	s.record("initialize")
	return nil
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.record("navigate " + url)
	return nil
}

func (s *Session) Click(_ context.Context, target string) error {
	s.record("click " + target)
	return nil
}

func (s *Session) Press(_ context.Context, key string) error {
	s.record("press " + key)
	return nil
}

func (s *Session) Axis(_ context.Context, name string, value float64) error {
	s.record(fmt.Sprintf("axis %s=%v", name, value))
	return nil
}

func (s *Session) QueryState(context.Context) ([]byte, error) {
	s.record("query")
	if s.State == nil {
		return []byte("{}"), nil
	}
	return s.State, nil
}

func (s *Session) Close(context.Context) error {
	s.record("close")
	return nil
}

// Capture writes placeholder artifacts under Dir, keyed by step index.
type Capture struct {
	Dir string
}

func (c *Capture) Screenshot(_ context.Context, _ core.Session, stepIndex int) (string, error) {
	path := filepath.Join(c.Dir, fmt.Sprintf("step-%03d.png", stepIndex))
	if err := os.WriteFile(path, []byte("stub screenshot\n"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// CUA reports success for every goal without contacting any backend.
type CUA struct {
	mu    sync.Mutex
	goals []string
}

func (c *CUA) Initialize(context.Context, string, int) error { return nil }

func (c *CUA) Perform(_ context.Context, goal string) (*core.CUAOutcome, error) {
	c.mu.Lock()
	c.goals = append(c.goals, goal)
	c.mu.Unlock()
	return &core.CUAOutcome{Success: true, StepsTaken: 1}, nil
}

// Goals returns every goal the agent was asked to perform.
func (c *CUA) Goals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.goals))
	copy(out, c.goals)
	return out
}
