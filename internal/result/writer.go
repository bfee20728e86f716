package result

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Writer performs incremental read-modify-write updates against the persisted
// result document. Single-writer invariant: only the owning run updates the
// file; concurrent external readers are tolerated because every write replaces
// the document via rename, never in place.
//
// Incremental update failures are logged and swallowed: an observability
// hiccup must not abort the underlying test run.
type Writer struct {
	path string
	warn io.Writer
	mu   sync.Mutex
}

// NewWriter creates a writer for the document at path. Warnings about dropped
// updates go to warn; nil means os.Stderr.
func NewWriter(path string, warn io.Writer) *Writer {
	if warn == nil {
		warn = os.Stderr
	}
	return &Writer{path: path, warn: warn}
}

// Path returns the document location.
func (w *Writer) Path() string {
	return w.path
}

// Init writes the initial document. Unlike incremental updates, failure here
// is returned: a run must not start without an observable document.
func (w *Writer) Init(doc *TestResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc.ActionTimings == nil {
		doc.ActionTimings = []ActionTiming{}
	}
	if err := w.write(doc); err != nil {
		return fmt.Errorf("initialize result document: %w", err)
	}
	return nil
}

// Read returns the current document. Fails with a descriptive error when the
// document has not been initialized.
func (w *Writer) Read() (*TestResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.read()
}

// AddAction upserts a timing entry keyed by its action index.
func (w *Writer) AddAction(timing ActionTiming) {
	w.update(func(doc *TestResult) {
		for i := range doc.ActionTimings {
			if doc.ActionTimings[i].ActionIndex == timing.ActionIndex {
				doc.ActionTimings[i] = timing
				return
			}
		}
		doc.ActionTimings = append(doc.ActionTimings, timing)
	})
}

// AddEvaluationStep upserts an evaluation phase entry keyed by its type.
func (w *Writer) AddEvaluationStep(step EvaluationStep) {
	w.update(func(doc *TestResult) {
		for i := range doc.EvaluationProgress {
			if doc.EvaluationProgress[i].Type == step.Type {
				doc.EvaluationProgress[i] = step
				return
			}
		}
		doc.EvaluationProgress = append(doc.EvaluationProgress, step)
	})
}

// UpdateActionMethods replaces the running method counters.
func (w *Writer) UpdateActionMethods(cua, dom, none int) {
	w.update(func(doc *TestResult) {
		doc.ActionMethods = ActionMethods{CUA: cua, DOM: dom, None: none}
	})
}

// Finalize records the terminal outcome. Called exactly once per attempt,
// including aborted ones, so partial results stay observable.
func (w *Writer) Finalize(success bool, endedAt time.Time) {
	w.update(func(doc *TestResult) {
		doc.Success = &success
		doc.EndedAt = &endedAt
	})
}

func (w *Writer) update(apply func(*TestResult)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, err := w.read()
	if err != nil {
		fmt.Fprintf(w.warn, "result: incremental update dropped: %v\n", err)
		return
	}
	apply(doc)
	if err := w.write(doc); err != nil {
		fmt.Fprintf(w.warn, "result: incremental update dropped: %v\n", err)
	}
}

func (w *Writer) read() (*TestResult, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("result document not initialized at %s: %w", w.path, err)
	}
	var doc TestResult
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("result document at %s is corrupt: %w", w.path, err)
	}
	return &doc, nil
}

// write replaces the whole document. Temp-file-plus-rename keeps the on-disk
// JSON valid at every observation point.
func (w *Writer) write(doc *TestResult) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result document: %w", err)
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write result document: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replace result document: %w", err)
	}
	return nil
}
