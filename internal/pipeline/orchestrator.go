package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/filestore"
)

const (
	// progressEvery is how many rows pass between progress writes.
	// The final count is always written.
	progressEvery = 100

	defaultMaxConcurrentJobs = 4
	defaultJobTimeout        = 10 * time.Minute
)

// Options tune the orchestrator. Zero values fall back to defaults.
type Options struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
}

// Stores bundles the persistence the orchestrator needs.
type Stores struct {
	Jobs    JobStore
	Staging StagingStore
	Assets  AssetStore
	Config  ConfigStore
	Files   FileStore
}

// Orchestrator drives import jobs through extract, clean, transform and
// staging, and applies the approve/reject decisions that follow.
type Orchestrator struct {
	stores Stores
	logger *slog.Logger

	sem        *semaphore.Weighted
	jobTimeout time.Duration
	wg         sync.WaitGroup
}

func NewOrchestrator(stores Stores, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}
	return &Orchestrator{
		stores:     stores,
		logger:     logger,
		sem:        semaphore.NewWeighted(int64(opts.MaxConcurrentJobs)),
		jobTimeout: opts.JobTimeout,
	}
}

// StartImport creates a PENDING job for the file and kicks off
// processing in the background. It returns ErrNotFound if the file ID
// does not resolve to a readable CSV.
func (o *Orchestrator) StartImport(ctx context.Context, fileID string) (*Job, error) {
	if _, err := o.stores.Files.Stat(ctx, fileID); err != nil {
		return nil, fmt.Errorf("%w: file %q", ErrNotFound, fileID)
	}

	now := time.Now().UTC()
	job := &Job{
		ID:           uuid.NewString(),
		SourceFileID: fileID,
		Status:       StatusPending,
		Phase:        PhaseExtract,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.stores.Jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	o.wg.Add(1)
	go o.run(job.ID, fileID)

	o.logger.Info("import started", "job_id", job.ID, "file", fileID)
	return job, nil
}

// Wait blocks until all in-flight jobs finish. Used during shutdown.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run executes one job end to end. It owns its own context so the job
// survives the HTTP request that started it.
func (o *Orchestrator) run(jobID, fileID string) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)
	defer cancel()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		o.fail(jobID, StatusPending, fmt.Errorf("waiting for worker slot: %w", err))
		return
	}
	defer o.sem.Release(1)

	if err := o.stores.Jobs.SetStatus(ctx, jobID, StatusPending, StatusRunning); err != nil {
		o.logger.Error("job could not start", "job_id", jobID, "error", err)
		return
	}

	if err := o.process(ctx, jobID, fileID); err != nil {
		o.fail(jobID, StatusRunning, err)
		return
	}

	if err := o.stores.Jobs.SetStatus(ctx, jobID, StatusRunning, StatusStaged); err != nil {
		o.logger.Error("job could not move to staged", "job_id", jobID, "error", err)
	}
}

func (o *Orchestrator) process(ctx context.Context, jobID, fileID string) error {
	log := o.logger.With("job_id", jobID, "file", fileID)

	var (
		headers []string
		rows    []RawRow
	)
	err := o.phase(ctx, log, jobID, PhaseExtract, func() error {
		records, err := o.stores.Files.Read(ctx, fileID)
		if err != nil {
			return fmt.Errorf("reading source file: %w", err)
		}
		headers, rows, err = extract(records)
		return err
	})
	if err != nil {
		return err
	}
	if err := o.stores.Jobs.SetProgress(ctx, jobID, Progress{TotalRows: len(rows)}); err != nil {
		return fmt.Errorf("recording row count: %w", err)
	}

	var (
		plan   headerPlan
		engine *cleaning.Engine
	)
	err = o.phase(ctx, log, jobID, PhaseClean, func() error {
		aliases, err := o.stores.Config.ListAliases(ctx)
		if err != nil {
			return fmt.Errorf("loading aliases: %w", err)
		}
		rules, err := o.stores.Config.ListRules(ctx)
		if err != nil {
			return fmt.Errorf("loading cleaning rules: %w", err)
		}
		plan = planHeaders(headers, alias.NewResolver(aliases))
		engine = cleaning.NewEngine(rules)
		if plan.coverage < alias.CoverageAdvisoryThreshold {
			log.Warn("low header coverage",
				"coverage", plan.coverage,
				"unmapped", plan.unmapped,
			)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var staged []StagedRow
	err = o.phase(ctx, log, jobID, PhaseTransform, func() error {
		staged = make([]StagedRow, 0, len(rows))
		for i, raw := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			staged = append(staged, stageRow(jobID, cleanRow(raw, plan, engine)))

			done := i + 1
			if done%progressEvery == 0 || done == len(rows) {
				p := Progress{TotalRows: len(rows), ProcessedRows: done}
				if err := o.stores.Jobs.SetProgress(ctx, jobID, p); err != nil {
					return fmt.Errorf("recording progress: %w", err)
				}
			}
		}
		if err := o.stores.Staging.Replace(ctx, jobID, staged); err != nil {
			return fmt.Errorf("staging rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	valid := 0
	for _, r := range staged {
		if r.IsValid {
			valid++
		}
	}
	log.Info("job staged", "total_rows", len(staged), "valid_rows", valid)
	return nil
}

// phase records the job's current phase and logs its duration.
func (o *Orchestrator) phase(ctx context.Context, log *slog.Logger, jobID string, p Phase, fn func() error) error {
	if err := o.stores.Jobs.SetPhase(ctx, jobID, p); err != nil {
		return fmt.Errorf("entering %s: %w", p, err)
	}
	start := time.Now()
	log.Info("phase started", "phase", p)

	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	log.Info("phase finished", "phase", p, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// fail moves the job to FAILED and records the cause. A background
// context is used so a timed-out job still gets its failure recorded.
func (o *Orchestrator) fail(jobID string, from Status, cause error) {
	o.logger.Error("job failed", "job_id", jobID, "error", cause)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := o.stores.Jobs.AppendError(ctx, jobID, cause.Error()); err != nil {
		o.logger.Error("recording job failure", "job_id", jobID, "error", err)
	}
	if err := o.stores.Jobs.SetStatus(ctx, jobID, from, StatusFailed); err != nil {
		o.logger.Error("marking job failed", "job_id", jobID, "error", err)
	}
}

// GetStatus returns the job's current state.
func (o *Orchestrator) GetStatus(ctx context.Context, jobID string) (*Job, error) {
	return o.stores.Jobs.Get(ctx, jobID)
}

// ListJobs returns recent jobs, newest first.
func (o *Orchestrator) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	return o.stores.Jobs.List(ctx, limit)
}

// ListFiles returns the CSV files available for import.
func (o *Orchestrator) ListFiles(ctx context.Context) ([]filestore.FileInfo, error) {
	return o.stores.Files.List(ctx)
}

// StagedPage is a page of staged rows together with job-wide counts.
type StagedPage struct {
	JobID      string      `json:"jobId"`
	TotalRows  int         `json:"totalRows"`
	ValidRows  int         `json:"validRows"`
	WillImport int         `json:"willImport"`
	Rows       []StagedRow `json:"rows"`
}

// GetStagedRows returns up to limit staged rows for a job plus counts
// over the whole staging set.
func (o *Orchestrator) GetStagedRows(ctx context.Context, jobID string, limit int) (*StagedPage, error) {
	if _, err := o.stores.Jobs.Get(ctx, jobID); err != nil {
		return nil, err
	}
	total, valid, willImport, err := o.stores.Staging.Counts(ctx, jobID)
	if err != nil {
		return nil, err
	}
	rows, err := o.stores.Staging.List(ctx, jobID, limit)
	if err != nil {
		return nil, err
	}
	return &StagedPage{
		JobID:      jobID,
		TotalRows:  total,
		ValidRows:  valid,
		WillImport: willImport,
		Rows:       rows,
	}, nil
}
