// Package progress prints live run progress to the terminal while the result
// document is the machine-readable channel.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gamepilot/internal/result"
)

type snapshot struct {
	done     int
	total    int
	methods  result.ActionMethods
	failures int
}

type Progress struct {
	startTime time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
	snap      snapshot
}

func NewProgress(quiet bool) *Progress {
	return &Progress{
		quiet:  quiet,
		output: os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Start begins the ticker loop for a run of total steps.
func (p *Progress) Start(total int) {
	if p == nil || p.quiet {
		return
	}
	p.mu.Lock()
	p.snap = snapshot{total: total}
	p.startTime = time.Now()
	p.mu.Unlock()
	// A run retry starts a fresh ticker after the prior attempt's Stop.
	p.stopped.Store(false)
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(1 * time.Second)
	go p.run()
}

// Record updates the live counters after a step reaches a terminal state.
func (p *Progress) Record(done int, methods result.ActionMethods, failures int) {
	if p == nil || p.quiet {
		return
	}
	p.mu.Lock()
	p.snap.done = done
	p.snap.methods = methods
	p.snap.failures = failures
	p.mu.Unlock()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.startTime).Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	s := p.snap
	fmt.Fprintf(p.output, "\033[K[%02d:%02d] Steps: %d/%d | dom: %d cua: %d none: %d | Failures: %d",
		mins, secs, s.done, s.total, s.methods.DOM, s.methods.CUA, s.methods.None, s.failures)
}

func (p *Progress) Stop() {
	if p == nil || p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p == nil || p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
