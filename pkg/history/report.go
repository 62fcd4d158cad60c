package history

import (
	"time"

	"github.com/google/uuid"
)

// Sweep statuses.
const (
	// StatusOK means the result passed the safety guard.
	StatusOK = "ok"
	// StatusForced means the guard reported unsafe and force was set.
	StatusForced = "forced"
	// StatusBlocked means the guard reported unsafe and nothing was
	// reported for removal.
	StatusBlocked = "blocked"
	// StatusFailed means the sweep could not complete.
	StatusFailed = "failed"
)

// Report is the persisted summary of a sweep.
type Report struct {
	ID string `json:"id" yaml:"id"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Now is the reference instant ages were computed against.
	Now time.Time `json:"now" yaml:"now"`

	// Trigger is what started the sweep ("manual", "schedule", "start", "reload").
	Trigger string `json:"trigger" yaml:"trigger"`

	// Source describes where the records came from.
	Source string `json:"source" yaml:"source"`

	// Policy is the applied policy in "maxage:spacing,..." form.
	Policy string `json:"policy" yaml:"policy"`

	Status  string `json:"status" yaml:"status"`
	MinKeep int    `json:"min_keep" yaml:"min_keep"`
	Safe    bool   `json:"safe" yaml:"safe"`
	Forced  bool   `json:"forced" yaml:"forced"`

	Kept       int `json:"kept" yaml:"kept"`
	Discarded  int `json:"discarded" yaml:"discarded"`
	Unmatched  int `json:"unmatched" yaml:"unmatched"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`

	// DiscardIDs lists the identifiers classified as discardable.
	DiscardIDs []string `json:"discard_ids,omitempty" yaml:"discard_ids,omitempty"`

	// Error is set for failed sweeps.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReport returns a report with a fresh ID and the given start time.
func NewReport(startedAt time.Time) *Report {
	return &Report{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
	}
}

// Duration returns how long the sweep took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// clone returns a deep copy of r.
func (r *Report) clone() *Report {
	c := *r
	c.DiscardIDs = append([]string(nil), r.DiscardIDs...)
	return &c
}
