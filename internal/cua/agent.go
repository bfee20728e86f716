// Package cua models the computer-use agent as an explicit optional
// capability. The decision whether the capability exists is made once, at
// container construction time; callers query Available instead of sprinkling
// nil checks through call sites.
package cua

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"gamepilot/internal/core"
)

// ErrUnavailable is returned by Perform when no agent capability exists.
var ErrUnavailable = errors.New("cua agent unavailable")

// DefaultRate paces agent invocations; the computer-use backend is a
// rate-limited API and a tight retry loop would burn the quota.
const DefaultRate = 1.0 // invocations per second

// Agent wraps an initialized CUA client, or records why none is available.
type Agent struct {
	client  core.CUAClient
	limiter *rate.Limiter
	reason  string
}

// NewAgent wraps an initialized client. rps <= 0 selects DefaultRate.
func NewAgent(client core.CUAClient, rps float64) *Agent {
	if rps <= 0 {
		rps = DefaultRate
	}
	return &Agent{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Unavailable creates the absent capability, keeping the degradation reason
// for error messages and warnings.
func Unavailable(reason string) *Agent {
	return &Agent{reason: reason}
}

// Available reports whether AI-fallback execution is possible.
func (a *Agent) Available() bool {
	return a != nil && a.client != nil
}

// Reason explains why the capability is absent. Empty when available.
func (a *Agent) Reason() string {
	if a == nil {
		return "no agent configured"
	}
	return a.reason
}

// Perform accomplishes a natural-language goal through the agent, pacing
// invocations against the backend rate limit.
func (a *Agent) Perform(ctx context.Context, goal string) (*core.CUAOutcome, error) {
	if !a.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, a.Reason())
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return a.client.Perform(ctx, goal)
}
