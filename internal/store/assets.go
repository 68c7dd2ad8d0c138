package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assetdesk/importer/internal/schema"
)

// Assets writes imported rows into the destination asset table. The
// upsert keys on asset_tag so re-importing a file updates records in
// place instead of duplicating them.
type Assets struct {
	pool *pgxpool.Pool
}

func NewAssets(pool *pgxpool.Pool) *Assets {
	return &Assets{pool: pool}
}

// assetUpsertSQL is generated from the canonical field schema once at
// startup; parameter order matches schema.Fields().
var assetUpsertSQL = buildAssetUpsert()

func buildAssetUpsert() string {
	fields := schema.Fields()
	cols := make([]string, 0, len(fields))
	params := make([]string, 0, len(fields))
	sets := make([]string, 0, len(fields))
	for i, f := range fields {
		cols = append(cols, f.Column)
		params = append(params, fmt.Sprintf("$%d", i+1))
		if f.Name != "assetTag" {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", f.Column, f.Column))
		}
	}
	sets = append(sets, "updated_at = now()")
	return fmt.Sprintf(
		"INSERT INTO assets (%s) VALUES (%s) ON CONFLICT (asset_tag) DO UPDATE SET %s",
		strings.Join(cols, ", "), strings.Join(params, ", "), strings.Join(sets, ", "),
	)
}

func (s *Assets) UpsertByAssetTag(ctx context.Context, fields map[string]string) error {
	tag := strings.TrimSpace(fields["assetTag"])
	if tag == "" {
		return fmt.Errorf("missing asset tag")
	}

	args := make([]any, 0, len(schema.Fields()))
	for _, f := range schema.Fields() {
		args = append(args, toPgValue(f, fields[f.Name]))
	}
	if _, err := s.pool.Exec(ctx, assetUpsertSQL, args...); err != nil {
		return fmt.Errorf("upserting asset %s: %w", tag, err)
	}
	return nil
}

// toPgValue converts a cleaned string to the column's pg type. Text is
// truncated to the column width; validation already flagged the
// over-length value as a warning.
func toPgValue(f schema.Field, value string) any {
	switch f.Type {
	case schema.FieldDate:
		return ToPgDate(value)
	case schema.FieldNumeric:
		return ToPgNumeric(value)
	case schema.FieldBool:
		return ToPgBool(value)
	default:
		if f.MaxLen > 0 && len(value) > f.MaxLen {
			// Cut on a rune boundary so Postgres never sees a torn
			// UTF-8 sequence.
			runes := []rune(value)
			if len(runes) > f.MaxLen {
				runes = runes[:f.MaxLen]
			}
			value = string(runes)
		}
		if f.Required {
			// NOT NULL columns keep their value even if blank made
			// it past validation.
			return strings.TrimSpace(value)
		}
		return ToPgText(value)
	}
}
