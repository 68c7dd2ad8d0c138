package schema

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pre-compiled regex for numeric validation (avoids recompilation on each call)
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
// Example with pivot=20 in year 2025: "46" → 1946 (not 2046), "24" → 2024
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	// 2-digit year layouts - require pivot year adjustment
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	// 4-digit year layouts - no adjustment needed
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// ParseDate parses a date in any of the accepted layouts.
// Returns the zero time and false when the value is empty or unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			// Go's time.Parse interprets 2-digit years as 00-68 → 2000-2068,
			// 69-99 → 1969-1999; apply a consistent pivot instead.
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseNumber parses a numeric value, tolerating currency symbols, thousands
// separators, and accounting-style negatives like "(123.45)".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseBool parses common boolean spellings: true/false, t/f, yes/no, y/n, 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// NormalizeNumber returns the canonical string form of a numeric value, or the
// input unchanged when it does not parse.
func NormalizeNumber(s string) string {
	f, ok := ParseNumber(s)
	if !ok {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeDate returns the ISO form (YYYY-MM-DD) of a date value, or the
// input unchanged when it does not parse.
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02")
}

// NormalizeBool returns "true"/"false" for a recognized boolean value, or the
// input unchanged.
func NormalizeBool(s string) string {
	b, ok := ParseBool(s)
	if !ok {
		return s
	}
	return strconv.FormatBool(b)
}
