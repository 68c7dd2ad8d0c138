// Package pipeline runs the staged asset import: extract raw CSV rows,
// clean and map them onto the asset schema, validate, and hold the
// result in staging until an operator approves or rejects the job.
package pipeline

import (
	"time"
)

// Status is a job's position in the import lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusStaged    Status = "STAGED"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRejected  Status = "REJECTED"
)

// Phase is the processing step a running job is currently in.
type Phase string

const (
	PhaseExtract   Phase = "EXTRACT"
	PhaseClean     Phase = "CLEAN"
	PhaseTransform Phase = "TRANSFORM"
	PhaseLoad      Phase = "LOAD"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusRunning, StatusFailed},
	StatusRunning:  {StatusStaged, StatusFailed},
	StatusStaged:   {StatusApproved, StatusRejected, StatusFailed},
	StatusApproved: {StatusCompleted, StatusFailed},
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Progress tracks how far a job has worked through its source file.
// ProcessedRows only ever increases.
type Progress struct {
	TotalRows     int `json:"totalRows"`
	ProcessedRows int `json:"processedRows"`
}

// Job is one import run over a single source file.
type Job struct {
	ID           string    `json:"id"`
	SourceFileID string    `json:"sourceFileId"`
	Status       Status    `json:"status"`
	Phase        Phase     `json:"phase"`
	Progress     Progress  `json:"progress"`
	Errors       []string  `json:"errors,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
