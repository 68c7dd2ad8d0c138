package pipeline

import (
	"context"
	"fmt"
)

// ApprovalResult reports what an approve run committed.
type ApprovalResult struct {
	JobID         string `json:"jobId"`
	ImportedCount int    `json:"importedCount"`
	FailedCount   int    `json:"failedCount"`
}

// Approve commits a staged job's importable rows to the asset table.
// Each row is written independently: one bad row is recorded on the
// job and skipped, never rolling back rows already committed. Only a
// STAGED job can be approved; anything else is ErrConflict.
func (o *Orchestrator) Approve(ctx context.Context, jobID string) (*ApprovalResult, error) {
	if err := o.stores.Jobs.SetStatus(ctx, jobID, StatusStaged, StatusApproved); err != nil {
		return nil, err
	}

	result, err := o.load(ctx, jobID)
	if err != nil {
		// The job already left STAGED; a load that cannot finish must
		// not strand it in APPROVED, where neither approve nor reject
		// can act on it again.
		o.fail(jobID, StatusApproved, err)
		return nil, err
	}

	o.logger.Info("job approved",
		"job_id", jobID,
		"imported", result.ImportedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// load writes the job's importable rows to the asset table and drives
// the job from APPROVED to COMPLETED.
func (o *Orchestrator) load(ctx context.Context, jobID string) (*ApprovalResult, error) {
	if err := o.stores.Jobs.SetPhase(ctx, jobID, PhaseLoad); err != nil {
		return nil, fmt.Errorf("entering %s: %w", PhaseLoad, err)
	}

	rows, err := o.stores.Staging.ListImportable(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading staged rows: %w", err)
	}

	result := &ApprovalResult{JobID: jobID}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.stores.Assets.UpsertByAssetTag(ctx, row.MappedData); err != nil {
			result.FailedCount++
			msg := fmt.Sprintf("row %d: %v", row.RowNumber, err)
			if aerr := o.stores.Jobs.AppendError(ctx, jobID, msg); aerr != nil {
				o.logger.Error("recording row failure", "job_id", jobID, "error", aerr)
			}
			continue
		}
		result.ImportedCount++
	}

	if err := o.stores.Jobs.SetStatus(ctx, jobID, StatusApproved, StatusCompleted); err != nil {
		return nil, fmt.Errorf("completing job: %w", err)
	}
	return result, nil
}

// RejectResult reports what a reject run cleared.
type RejectResult struct {
	JobID        string `json:"jobId"`
	ClearedCount int    `json:"clearedCount"`
}

// Reject discards a staged job's rows without touching the asset
// table. Rejecting an already-rejected job is a no-op that reports
// zero cleared rows; any other non-STAGED status is ErrConflict.
func (o *Orchestrator) Reject(ctx context.Context, jobID string) (*RejectResult, error) {
	job, err := o.stores.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusRejected {
		return &RejectResult{JobID: jobID}, nil
	}

	if err := o.stores.Jobs.SetStatus(ctx, jobID, StatusStaged, StatusRejected); err != nil {
		return nil, err
	}
	cleared, err := o.stores.Staging.Clear(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("clearing staged rows: %w", err)
	}

	o.logger.Info("job rejected", "job_id", jobID, "cleared", cleared)
	return &RejectResult{JobID: jobID, ClearedCount: cleared}, nil
}
