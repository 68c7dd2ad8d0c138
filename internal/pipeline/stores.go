package pipeline

import (
	"context"
	"errors"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/filestore"
)

var (
	// ErrNotFound means the referenced job or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the operation is not legal for the job's
	// current status.
	ErrConflict = errors.New("conflict with current job status")

	// ErrInvalidFile means the file exists but cannot be processed,
	// such as an oversized file, broken CSV or a missing header row.
	ErrInvalidFile = errors.New("file cannot be processed")
)

// JobStore persists import jobs. SetStatus is conditional on the
// current status so concurrent actors cannot double-apply a transition.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	List(ctx context.Context, limit int) ([]*Job, error)

	// SetStatus moves a job from one status to another. It returns
	// ErrConflict if the job is not currently in from, and ErrNotFound
	// if the job does not exist.
	SetStatus(ctx context.Context, jobID string, from, to Status) error

	SetPhase(ctx context.Context, jobID string, phase Phase) error
	SetProgress(ctx context.Context, jobID string, progress Progress) error
	AppendError(ctx context.Context, jobID string, msg string) error
}

// StagingStore holds processed rows between transform and approval.
type StagingStore interface {
	// Replace atomically swaps the job's staged rows for the given
	// set. It returns ErrConflict if the job is not RUNNING.
	Replace(ctx context.Context, jobID string, rows []StagedRow) error

	List(ctx context.Context, jobID string, limit int) ([]StagedRow, error)
	ListImportable(ctx context.Context, jobID string) ([]StagedRow, error)
	Counts(ctx context.Context, jobID string) (total, valid, willImport int, err error)

	// Clear drops all staged rows for the job and reports how many
	// were removed.
	Clear(ctx context.Context, jobID string) (int, error)
}

// AssetStore is the destination table. Upserts key on the asset tag so
// re-importing a file updates rather than duplicates.
type AssetStore interface {
	UpsertByAssetTag(ctx context.Context, fields map[string]string) error
}

// ConfigStore supplies the operator-managed import configuration.
type ConfigStore interface {
	ListAliases(ctx context.Context) ([]alias.Mapping, error)
	ListRules(ctx context.Context) ([]cleaning.Rule, error)
}

// FileStore resolves file IDs to CSV content.
type FileStore interface {
	List(ctx context.Context) ([]filestore.FileInfo, error)
	Stat(ctx context.Context, fileID string) (filestore.FileInfo, error)
	Read(ctx context.Context, fileID string) ([][]string, error)
}
