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

// Staging holds processed rows between transform and approval.
type Staging struct {
	pool *pgxpool.Pool
}

func NewStaging(pool *pgxpool.Pool) *Staging {
	return &Staging{pool: pool}
}

// Replace swaps the job's staged rows for the given set in one
// transaction. The job row is locked first so a concurrent approve or
// reject cannot interleave with the swap.
func (s *Staging) Replace(ctx context.Context, jobID string, rows []pipeline.StagedRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM import_jobs WHERE id = $1 FOR UPDATE", jobID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: job %q", pipeline.ErrNotFound, jobID)
	}
	if err != nil {
		return fmt.Errorf("locking job: %w", err)
	}
	if pipeline.Status(status) != pipeline.StatusRunning {
		return fmt.Errorf("%w: job is %s", pipeline.ErrConflict, status)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM staged_rows WHERE job_id = $1", jobID); err != nil {
		return fmt.Errorf("clearing old staged rows: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"staged_rows"},
		[]string{"job_id", "row_number", "raw_data", "mapped_data", "is_valid", "will_import", "errors"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			rawJSON, err := json.Marshal(r.RawData)
			if err != nil {
				return nil, fmt.Errorf("row %d: encoding raw data: %w", r.RowNumber, err)
			}
			mappedJSON, err := json.Marshal(r.MappedData)
			if err != nil {
				return nil, fmt.Errorf("row %d: encoding mapped data: %w", r.RowNumber, err)
			}
			errs := r.Errors
			if errs == nil {
				errs = []pipeline.ValidationError{}
			}
			errsJSON, err := json.Marshal(errs)
			if err != nil {
				return nil, fmt.Errorf("row %d: encoding errors: %w", r.RowNumber, err)
			}
			return []any{jobID, r.RowNumber, rawJSON, mappedJSON, r.IsValid, r.WillImport, errsJSON}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying staged rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing staged rows: %w", err)
	}
	return nil
}

const stagedColumns = "job_id, row_number, raw_data, mapped_data, is_valid, will_import, errors"

func (s *Staging) List(ctx context.Context, jobID string, limit int) ([]pipeline.StagedRow, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+stagedColumns+" FROM staged_rows WHERE job_id = $1 ORDER BY row_number LIMIT $2",
		jobID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing staged rows: %w", err)
	}
	defer rows.Close()
	return scanStagedRows(rows)
}

func (s *Staging) ListImportable(ctx context.Context, jobID string) ([]pipeline.StagedRow, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+stagedColumns+" FROM staged_rows WHERE job_id = $1 AND will_import ORDER BY row_number",
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing importable rows: %w", err)
	}
	defer rows.Close()
	return scanStagedRows(rows)
}

func (s *Staging) Counts(ctx context.Context, jobID string) (total, valid, willImport int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE is_valid),
		       count(*) FILTER (WHERE will_import)
		FROM staged_rows WHERE job_id = $1`,
		jobID,
	).Scan(&total, &valid, &willImport)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("counting staged rows: %w", err)
	}
	return total, valid, willImport, nil
}

func (s *Staging) Clear(ctx context.Context, jobID string) (int, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM staged_rows WHERE job_id = $1", jobID)
	if err != nil {
		return 0, fmt.Errorf("clearing staged rows: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanStagedRows(rows pgx.Rows) ([]pipeline.StagedRow, error) {
	var out []pipeline.StagedRow
	for rows.Next() {
		var (
			r          pipeline.StagedRow
			rawJSON    []byte
			mappedJSON []byte
			errsJSON   []byte
		)
		if err := rows.Scan(&r.JobID, &r.RowNumber, &rawJSON, &mappedJSON, &r.IsValid, &r.WillImport, &errsJSON); err != nil {
			return nil, fmt.Errorf("scanning staged row: %w", err)
		}
		if err := json.Unmarshal(rawJSON, &r.RawData); err != nil {
			return nil, fmt.Errorf("decoding raw data: %w", err)
		}
		if err := json.Unmarshal(mappedJSON, &r.MappedData); err != nil {
			return nil, fmt.Errorf("decoding mapped data: %w", err)
		}
		if err := json.Unmarshal(errsJSON, &r.Errors); err != nil {
			return nil, fmt.Errorf("decoding row errors: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
