package model

import (
	"fmt"
	"time"
)

const (
	// OutcomeApplied marks an operation that was applied successfully.
	OutcomeApplied = "applied"
	// OutcomeFailed marks an operation whose remote call failed.
	OutcomeFailed = "failed"
	// OutcomeSkipped marks an operation that was not applied (no-ops,
	// cancelled runs).
	OutcomeSkipped = "skipped"
)

// OperationResult captures the outcome of applying a single operation.
type OperationResult struct {
	Operation Operation
	Outcome   string
	// Reason qualifies a failed or skipped outcome ("timeout", "cancelled",
	// a remote error summary).
	Reason    string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Status renders the outcome in failed:<reason> form for summaries.
func (r OperationResult) Status() string {
	if r.Outcome == OutcomeFailed && r.Reason != "" {
		return r.Outcome + ":" + r.Reason
	}
	return r.Outcome
}

// RunResult accumulates per-operation outcomes over one apply pass.
// Created empty at the start of apply, appended to as each operation
// completes, then handed to the health reporter.
type RunResult struct {
	Results []OperationResult
	Aborted bool

	Applied int
	Failed  int
	Skipped int
}

// Record appends an operation outcome and updates the counters.
func (r *RunResult) Record(res OperationResult) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeApplied:
		r.Applied++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// Succeeded reports overall run health: true when nothing failed and the
// run was not aborted.
func (r *RunResult) Succeeded() bool {
	return !r.Aborted && r.Failed == 0
}

// Summary renders a one-line outcome count for logs and monitoring.
func (r *RunResult) Summary() string {
	if r.Aborted {
		return "aborted before applying"
	}
	return fmt.Sprintf("%d applied, %d failed, %d skipped", r.Applied, r.Failed, r.Skipped)
}
