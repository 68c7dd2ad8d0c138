// Package csvio handles raw CSV parsing and cell cleanup for import files.
// Files arrive from spreadsheet exports, so parsing is deliberately lenient:
// ragged rows, lazy quotes, UTF-8 damage and Excel artifacts are tolerated
// here and judged later by validation.
package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is the maximum number of leading rows to scan for the
// header row. Exports sometimes carry title or summary lines above it.
var MaxHeaderSearchRows = 20

// Parse reads a whole CSV file into records. Invalid UTF-8 is replaced rather
// than rejected and rows may have differing field counts.
func Parse(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(SanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// SanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so downstream string handling never sees broken encoding.
func SanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// CleanCell strips whitespace, byte-order marks, and Excel formula wrappers
// (="value") from a single cell.
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	// Excel exports sometimes force text with a formula wrapper.
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// CleanHeader normalizes a header cell for lookup: cleaned and lowercased.
func CleanHeader(s string) string {
	return strings.ToLower(CleanCell(s))
}

// FindHeader returns the index of the first row that looks like a header:
// the first row within MaxHeaderSearchRows where every non-empty cell is
// non-numeric text. Returns -1 when no candidate is found.
func FindHeader(records [][]string) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		if isHeaderRow(records[i]) {
			return i
		}
	}
	return -1
}

func isHeaderRow(row []string) bool {
	nonEmpty := 0
	for _, cell := range row {
		c := CleanCell(cell)
		if c == "" {
			continue
		}
		nonEmpty++
		if isNumeric(c) {
			return false
		}
	}
	if len(row) == 1 {
		return nonEmpty == 1
	}
	// Multi-column files: a lone value padded with empty cells is a
	// title line, not a header.
	return nonEmpty > 1
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' && r != ',' {
			return false
		}
	}
	return true
}

// IsEmptyRow reports whether every cell in the row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
