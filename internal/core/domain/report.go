package domain

import (
	"errors"
	"sync"
	"time"
)

// TargetStatus is the outcome of one target within a build.
type TargetStatus string

const (
	// StatusSucceeded means the action ran and produced its outputs.
	StatusSucceeded TargetStatus = "Succeeded"
	// StatusSkipped means the target was up to date.
	StatusSkipped TargetStatus = "Skipped"
	// StatusFailed means the action or its setup failed.
	StatusFailed TargetStatus = "Failed"
	// StatusAborted means the target was not started because a prerequisite failed.
	StatusAborted TargetStatus = "Aborted"
)

// TargetResult records what happened to one target.
type TargetResult struct {
	Name     string
	Status   TargetStatus
	Log      string
	Err      error
	Duration time.Duration
}

// BuildReport collects per-target results of one executor run.
// It is safe for concurrent use by the targets of a wave.
type BuildReport struct {
	Mode     Mode
	Duration time.Duration

	mu      sync.RWMutex
	order   []string
	results map[string]*TargetResult
}

// NewBuildReport creates an empty report for the given mode.
func NewBuildReport(mode Mode) *BuildReport {
	return &BuildReport{
		Mode:    mode,
		results: make(map[string]*TargetResult),
	}
}

// Record stores a target result, replacing any previous result for that name.
func (r *BuildReport) Record(res TargetResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.results[res.Name]; !seen {
		r.order = append(r.order, res.Name)
	}
	rc := res
	r.results[res.Name] = &rc
}

// Result returns the result of the named target.
func (r *BuildReport) Result(name string) (TargetResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[name]
	if !ok {
		return TargetResult{}, false
	}
	return *res, true
}

// Status returns the status of the named target, or "" if it was not visited.
func (r *BuildReport) Status(name string) TargetStatus {
	res, _ := r.Result(name)
	return res.Status
}

// Results returns all results in the order they were recorded.
func (r *BuildReport) Results() []TargetResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TargetResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.results[name])
	}
	return out
}

// Success is true iff no target failed or was aborted.
func (r *BuildReport) Success() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.results {
		if res.Status == StatusFailed || res.Status == StatusAborted {
			return false
		}
	}
	return true
}

// Count returns how many targets ended with status.
func (r *BuildReport) Count(status TargetStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, res := range r.results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Err returns nil on success, otherwise ErrBuildFailed joined with the
// errors of the failed targets (aborted targets are consequences and are
// not repeated).
func (r *BuildReport) Err() error {
	if r.Success() {
		return nil
	}
	errs := []error{ErrBuildFailed}
	for _, res := range r.Results() {
		if res.Status == StatusFailed && res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
