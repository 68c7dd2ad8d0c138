package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/pipeline"
)

// Config persists the operator-managed import configuration: field
// aliases and cleaning rules.
type Config struct {
	pool *pgxpool.Pool
}

func NewConfig(pool *pgxpool.Pool) *Config {
	return &Config{pool: pool}
}

// EnsureDefaults seeds the alias and rule tables on first run. Tables
// an operator has touched are left alone.
func (s *Config) EnsureDefaults(ctx context.Context) error {
	var aliasCount int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM field_aliases").Scan(&aliasCount); err != nil {
		return fmt.Errorf("counting aliases: %w", err)
	}
	if aliasCount == 0 {
		for _, a := range alias.Defaults() {
			if _, err := s.CreateAlias(ctx, a); err != nil {
				return fmt.Errorf("seeding alias %q: %w", a.CsvAlias, err)
			}
		}
	}

	var ruleCount int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM cleaning_rules").Scan(&ruleCount); err != nil {
		return fmt.Errorf("counting cleaning rules: %w", err)
	}
	if ruleCount == 0 {
		for _, r := range cleaning.Defaults() {
			if _, err := s.CreateRule(ctx, r); err != nil {
				return fmt.Errorf("seeding rule for %q: %w", r.Field, err)
			}
		}
	}
	return nil
}

func (s *Config) ListAliases(ctx context.Context) ([]alias.Mapping, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, csv_alias, asset_field, confidence FROM field_aliases ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	var out []alias.Mapping
	for rows.Next() {
		var m alias.Mapping
		if err := rows.Scan(&m.ID, &m.CsvAlias, &m.AssetField, &m.Confidence); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Config) CreateAlias(ctx context.Context, m alias.Mapping) (alias.Mapping, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO field_aliases (csv_alias, asset_field, confidence)
		VALUES ($1, $2, $3)
		ON CONFLICT (csv_alias, asset_field) DO UPDATE SET confidence = EXCLUDED.confidence
		RETURNING id`,
		m.CsvAlias, m.AssetField, m.Confidence,
	).Scan(&m.ID)
	if err != nil {
		return alias.Mapping{}, fmt.Errorf("inserting alias: %w", err)
	}
	return m, nil
}

func (s *Config) DeleteAlias(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM field_aliases WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting alias: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: alias %d", pipeline.ErrNotFound, id)
	}
	return nil
}

func (s *Config) ListRules(ctx context.Context) ([]cleaning.Rule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, field, rule_type, pattern, replacement, terms, data_type, priority, active
		FROM cleaning_rules ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("listing cleaning rules: %w", err)
	}
	defer rows.Close()

	var out []cleaning.Rule
	for rows.Next() {
		var (
			r         cleaning.Rule
			ruleType  string
			termsJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.Field, &ruleType, &r.Pattern, &r.Replacement, &termsJSON, &r.DataType, &r.Priority, &r.Active); err != nil {
			return nil, fmt.Errorf("scanning cleaning rule: %w", err)
		}
		r.Type = cleaning.RuleType(ruleType)
		if err := json.Unmarshal(termsJSON, &r.Terms); err != nil {
			return nil, fmt.Errorf("decoding rule terms: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Config) CreateRule(ctx context.Context, r cleaning.Rule) (cleaning.Rule, error) {
	terms := r.Terms
	if terms == nil {
		terms = []string{}
	}
	termsJSON, err := json.Marshal(terms)
	if err != nil {
		return cleaning.Rule{}, fmt.Errorf("encoding rule terms: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO cleaning_rules (field, rule_type, pattern, replacement, terms, data_type, priority, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		r.Field, string(r.Type), r.Pattern, r.Replacement, termsJSON, r.DataType, r.Priority, r.Active,
	).Scan(&r.ID)
	if err != nil {
		return cleaning.Rule{}, fmt.Errorf("inserting cleaning rule: %w", err)
	}
	return r, nil
}

func (s *Config) SetRuleActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.pool.Exec(ctx, "UPDATE cleaning_rules SET active = $2 WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("updating cleaning rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %d", pipeline.ErrNotFound, id)
	}
	return nil
}

func (s *Config) DeleteRule(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM cleaning_rules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting cleaning rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %d", pipeline.ErrNotFound, id)
	}
	return nil
}

// GetRule returns a single cleaning rule by ID.
func (s *Config) GetRule(ctx context.Context, id int64) (cleaning.Rule, error) {
	var (
		r         cleaning.Rule
		ruleType  string
		termsJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, field, rule_type, pattern, replacement, terms, data_type, priority, active
		FROM cleaning_rules WHERE id = $1`, id,
	).Scan(&r.ID, &r.Field, &ruleType, &r.Pattern, &r.Replacement, &termsJSON, &r.DataType, &r.Priority, &r.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return cleaning.Rule{}, fmt.Errorf("%w: rule %d", pipeline.ErrNotFound, id)
	}
	if err != nil {
		return cleaning.Rule{}, fmt.Errorf("loading cleaning rule: %w", err)
	}
	r.Type = cleaning.RuleType(ruleType)
	if err := json.Unmarshal(termsJSON, &r.Terms); err != nil {
		return cleaning.Rule{}, fmt.Errorf("decoding rule terms: %w", err)
	}
	return r, nil
}
