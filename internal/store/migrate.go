// Package store persists jobs, staged rows, assets and pipeline
// configuration in PostgreSQL via pgx.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetdesk/importer/internal/schema"
)

// Migrate creates the importer's tables if they do not exist yet. The
// assets table is generated from the canonical field schema so the two
// never drift apart.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS import_jobs (
			id             UUID PRIMARY KEY,
			source_file_id TEXT NOT NULL,
			status         TEXT NOT NULL,
			phase          TEXT NOT NULL,
			total_rows     INTEGER NOT NULL DEFAULT 0,
			processed_rows INTEGER NOT NULL DEFAULT 0,
			errors         JSONB NOT NULL DEFAULT '[]',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS staged_rows (
			id          BIGSERIAL PRIMARY KEY,
			job_id      UUID NOT NULL REFERENCES import_jobs(id) ON DELETE CASCADE,
			row_number  INTEGER NOT NULL,
			raw_data    JSONB NOT NULL,
			mapped_data JSONB NOT NULL,
			is_valid    BOOLEAN NOT NULL,
			will_import BOOLEAN NOT NULL,
			errors      JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS staged_rows_job_idx ON staged_rows (job_id, row_number)`,
		`CREATE TABLE IF NOT EXISTS field_aliases (
			id          BIGSERIAL PRIMARY KEY,
			csv_alias   TEXT NOT NULL,
			asset_field TEXT NOT NULL,
			confidence  INTEGER NOT NULL DEFAULT 100,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (csv_alias, asset_field)
		)`,
		`CREATE TABLE IF NOT EXISTS cleaning_rules (
			id          BIGSERIAL PRIMARY KEY,
			field       TEXT NOT NULL,
			rule_type   TEXT NOT NULL,
			pattern     TEXT NOT NULL DEFAULT '',
			replacement TEXT NOT NULL DEFAULT '',
			terms       JSONB NOT NULL DEFAULT '[]',
			data_type   TEXT NOT NULL DEFAULT '',
			priority    INTEGER NOT NULL DEFAULT 100,
			active      BOOLEAN NOT NULL DEFAULT true,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		assetsDDL(),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

func assetsDDL() string {
	var cols []string
	for _, f := range schema.Fields() {
		col := f.Column + " " + columnType(f)
		if f.Name == "assetTag" {
			col += " PRIMARY KEY"
		} else if f.Required {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	cols = append(cols,
		"created_at TIMESTAMPTZ NOT NULL DEFAULT now()",
		"updated_at TIMESTAMPTZ NOT NULL DEFAULT now()",
	)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS assets (\n\t%s\n)", strings.Join(cols, ",\n\t"))
}

func columnType(f schema.Field) string {
	switch f.Type {
	case schema.FieldDate:
		return "DATE"
	case schema.FieldNumeric:
		return "NUMERIC(14,2)"
	case schema.FieldBool:
		return "BOOLEAN"
	default:
		if f.MaxLen > 0 {
			return fmt.Sprintf("VARCHAR(%d)", f.MaxLen)
		}
		return "TEXT"
	}
}
