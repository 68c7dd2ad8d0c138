package store

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/assetdesk/importer/internal/schema"
)

// ToPgText converts a string to pgtype.Text. Empty input becomes NULL.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date, accepting every layout the
// row parsers accept. Unparseable input becomes NULL.
func ToPgDate(s string) pgtype.Date {
	t, ok := schema.ParseDate(s)
	if !ok {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// ToPgNumeric converts a string to pgtype.Numeric, tolerating currency
// symbols and thousands separators. Unparseable input becomes NULL.
func ToPgNumeric(s string) pgtype.Numeric {
	v, ok := schema.ParseNumber(s)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ToPgBool converts a string to pgtype.Bool. Unparseable input becomes
// NULL.
func ToPgBool(s string) pgtype.Bool {
	b, ok := schema.ParseBool(s)
	if !ok {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: b, Valid: true}
}
