package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetdesk/importer/internal/pipeline"
)

// Jobs persists import jobs in Postgres.
type Jobs struct {
	pool *pgxpool.Pool
}

func NewJobs(pool *pgxpool.Pool) *Jobs {
	return &Jobs{pool: pool}
}

const jobColumns = "id, source_file_id, status, phase, total_rows, processed_rows, errors, created_at, updated_at"

func (s *Jobs) Create(ctx context.Context, job *pipeline.Job) error {
	errsJSON, err := json.Marshal(job.Errors)
	if err != nil {
		return fmt.Errorf("encoding job errors: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_jobs (id, source_file_id, status, phase, total_rows, processed_rows, errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, job.SourceFileID, string(job.Status), string(job.Phase),
		job.Progress.TotalRows, job.Progress.ProcessedRows, errsJSON,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

func (s *Jobs) Get(ctx context.Context, jobID string) (*pipeline.Job, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+jobColumns+" FROM import_jobs WHERE id = $1", jobID)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading job: %w", err)
	}
	return job, nil
}

func (s *Jobs) List(ctx context.Context, limit int) ([]*pipeline.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+jobColumns+" FROM import_jobs ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*pipeline.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SetStatus applies a conditional status transition. The WHERE clause
// on the current status makes concurrent transitions race-safe: only
// one caller's update can match.
func (s *Jobs) SetStatus(ctx context.Context, jobID string, from, to pipeline.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		jobID, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = s.pool.QueryRow(ctx, "SELECT status FROM import_jobs WHERE id = $1", jobID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	if err != nil {
		return fmt.Errorf("checking job status: %w", err)
	}
	return fmt.Errorf("%w: job is %s, not %s", pipeline.ErrConflict, current, from)
}

func (s *Jobs) SetPhase(ctx context.Context, jobID string, phase pipeline.Phase) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE import_jobs SET phase = $2, updated_at = now() WHERE id = $1",
		jobID, string(phase),
	)
	if err != nil {
		return fmt.Errorf("updating job phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	return nil
}

// SetProgress writes progress counters. GREATEST keeps the processed
// count monotonic even if updates land out of order.
func (s *Jobs) SetProgress(ctx context.Context, jobID string, progress pipeline.Progress) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs
		SET total_rows = $2, processed_rows = GREATEST(processed_rows, $3), updated_at = now()
		WHERE id = $1`,
		jobID, progress.TotalRows, progress.ProcessedRows,
	)
	if err != nil {
		return fmt.Errorf("updating job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	return nil
}

func (s *Jobs) AppendError(ctx context.Context, jobID string, msg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs SET errors = errors || to_jsonb($2::text), updated_at = now()
		WHERE id = $1`,
		jobID, msg,
	)
	if err != nil {
		return fmt.Errorf("appending job error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	return nil
}

func scanJob(row pgx.Row) (*pipeline.Job, error) {
	var (
		job      pipeline.Job
		status   string
		phase    string
		errsJSON []byte
	)
	err := row.Scan(
		&job.ID, &job.SourceFileID, &status, &phase,
		&job.Progress.TotalRows, &job.Progress.ProcessedRows,
		&errsJSON, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = pipeline.Status(status)
	job.Phase = pipeline.Phase(phase)
	if err := json.Unmarshal(errsJSON, &job.Errors); err != nil {
		return nil, fmt.Errorf("decoding job errors: %w", err)
	}
	return &job, nil
}
