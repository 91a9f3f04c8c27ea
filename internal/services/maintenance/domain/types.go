// Package domain defines maintenance runs, their requests and the ports the runner drives
package domain

import (
	"time"

	"curator/internal/core/batch"
	"curator/internal/core/staleness"
)

// Selection names the candidate entities of a run; the sources are unioned, then the
// exclude file is subtracted
type Selection struct {
	IDs         []int64
	IDFile      string
	Kinds       []string
	All         bool
	ExcludeFile string
	Limit       int
}

// SummaryOptions control the resumable summary file
type SummaryOptions struct {
	Path          string
	Metrics       []string
	Resume        bool
	Retry         bool
	RetryStatuses []batch.Status
}

// Request is one invocation of a maintenance command
type Request struct {
	Operation   string
	Select      Selection
	Summary     SummaryOptions
	Staleness   staleness.Options
	UnitTimeout time.Duration
}

// Run is the ledger row for one invocation
type Run struct {
	ID          string     `json:"run_id"`
	Operation   string     `json:"operation"`
	Mode        string     `json:"mode"`
	Cutoff      *time.Time `json:"cutoff,omitempty"`
	Concurrency int        `json:"concurrency"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Succeeded   int        `json:"succeeded"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Unsupported int        `json:"unsupported"` // UNSUPPORTED and UNKNOWN outcomes
}

// OutcomeRow is one ledger outcome
type OutcomeRow struct {
	RunID    string    `json:"run_id"`
	EntityID int64     `json:"entity_id"`
	Status   string    `json:"status"`
	Label    string    `json:"label,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// RowFrom converts an outcome for the ledger
func RowFrom(runID string, o batch.Outcome) OutcomeRow {
	return OutcomeRow{
		RunID:    runID,
		EntityID: o.EntityID,
		Status:   string(o.Status),
		Label:    o.Label,
		Detail:   o.Detail,
		At:       o.At,
	}
}

// Report summarizes a finished run
type Report struct {
	RunID     string
	Operation string
	Counts    map[batch.Status]int
	Failures  []batch.Outcome
	Duration  time.Duration
}

// Result is what a processor reports for one entity
type Result struct {
	Status  batch.Status // empty means success
	Label   string
	Detail  string
	Metrics []float64
	Note    string // stored on the appended event
}
