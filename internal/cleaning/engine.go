// Package cleaning normalizes raw field values before validation.
//
// Rules are operator-managed configuration scoped to one target field. The
// engine applies every active rule for a field in ascending priority order
// and never fails a row: a rule that cannot run (bad regex, unknown type)
// degrades to pass-through with a recorded flag so the batch keeps moving.
package cleaning

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/assetdesk/importer/internal/schema"
)

// RuleType identifies the normalization a rule performs.
type RuleType string

const (
	RuleTrim          RuleType = "trim"
	RuleRegexReplace  RuleType = "regex_replace"
	RuleExactMatch    RuleType = "exact_match"
	RuleFuzzyMatch    RuleType = "fuzzy_match"
	RuleRequiredField RuleType = "required_field"
	RuleDataTypeCheck RuleType = "data_type_check"
)

// ValidRuleTypes lists every accepted rule type, for configuration validation.
var ValidRuleTypes = []RuleType{
	RuleTrim, RuleRegexReplace, RuleExactMatch,
	RuleFuzzyMatch, RuleRequiredField, RuleDataTypeCheck,
}

// IsValidRuleType reports whether t names a known rule type.
func IsValidRuleType(t RuleType) bool {
	for _, v := range ValidRuleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Rule is one configured cleaning step targeting a canonical asset field.
type Rule struct {
	ID          int64    `json:"id,omitempty"`
	Field       string   `json:"field"`
	Type        RuleType `json:"type"`
	Pattern     string   `json:"pattern,omitempty"`     // regex_replace
	Replacement string   `json:"replacement,omitempty"` // regex_replace
	Terms       []string `json:"terms,omitempty"`       // exact_match / fuzzy_match reference set
	DataType    string   `json:"dataType,omitempty"`    // data_type_check: number, boolean, date
	Priority    int      `json:"priority"`              // lower runs first
	Active      bool     `json:"isActive"`
}

// Flag records a condition a rule observed but could not resolve, such as a
// missing required value or a type mismatch. Flags are data for the row
// validator, never errors.
type Flag struct {
	Field   string
	Rule    RuleType
	Message string
}

// Engine applies cleaning rules grouped by target field.
type Engine struct {
	byField map[string][]Rule
	regexes map[int64]*regexp.Regexp
	broken  map[int64]string // rule ID -> compile error, reported as flags
}

// NewEngine indexes rules by field and pre-compiles regex patterns. Inactive
// rules are dropped here; rules for the same field run in ascending priority
// order, equal priorities in configuration order.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{
		byField: make(map[string][]Rule),
		regexes: make(map[int64]*regexp.Regexp),
		broken:  make(map[int64]string),
	}

	for _, r := range rules {
		if !r.Active {
			continue
		}
		if r.Type == RuleRegexReplace {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				e.broken[r.ID] = err.Error()
			} else {
				e.regexes[r.ID] = re
			}
		}
		e.byField[r.Field] = append(e.byField[r.Field], r)
	}

	for field := range e.byField {
		rs := e.byField[field]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority < rs[j].Priority })
	}

	return e
}

// Apply runs every active rule for field against value and returns the
// cleaned value plus any flags raised. Malformed input never aborts: the
// value passes through unchanged and the problem is flagged.
func (e *Engine) Apply(field, value string) (string, []Flag) {
	var flags []Flag

	for _, r := range e.byField[field] {
		switch r.Type {
		case RuleTrim:
			value = strings.TrimSpace(value)

		case RuleRegexReplace:
			re, ok := e.regexes[r.ID]
			if !ok {
				flags = append(flags, Flag{
					Field:   field,
					Rule:    RuleRegexReplace,
					Message: fmt.Sprintf("rule %d skipped: invalid pattern: %s", r.ID, e.broken[r.ID]),
				})
				continue
			}
			value = re.ReplaceAllString(value, r.Replacement)

		case RuleExactMatch:
			value = exactMatch(value, r.Terms)

		case RuleFuzzyMatch:
			value = FuzzyMatch(value, r.Terms)

		case RuleRequiredField:
			if strings.TrimSpace(value) == "" {
				flags = append(flags, Flag{
					Field:   field,
					Rule:    RuleRequiredField,
					Message: "value is required",
				})
			}

		case RuleDataTypeCheck:
			cleaned, flag := checkDataType(field, value, r.DataType)
			value = cleaned
			if flag != nil {
				flags = append(flags, *flag)
			}

		default:
			flags = append(flags, Flag{
				Field:   field,
				Rule:    r.Type,
				Message: fmt.Sprintf("rule %d skipped: unknown rule type %q", r.ID, r.Type),
			})
		}
	}

	return value, flags
}

// HasRules reports whether any active rule targets field.
func (e *Engine) HasRules(field string) bool {
	return len(e.byField[field]) > 0
}

// exactMatch returns the canonical term when value equals one case-sensitively,
// otherwise the value unchanged.
func exactMatch(value string, terms []string) string {
	for _, t := range terms {
		if value == t {
			return t
		}
	}
	return value
}

// checkDataType coerces value to the canonical form of the expected primitive
// type. An empty value is left for the required-field check; a value that does
// not parse passes through with a type-mismatch flag.
func checkDataType(field, value, dataType string) (string, *Flag) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}

	var ok bool
	var normalized string

	switch dataType {
	case "number":
		normalized = schema.NormalizeNumber(value)
		_, ok = schema.ParseNumber(value)
	case "boolean":
		normalized = schema.NormalizeBool(value)
		_, ok = schema.ParseBool(value)
	case "date":
		normalized = schema.NormalizeDate(value)
		_, ok = schema.ParseDate(value)
	default:
		return value, &Flag{
			Field:   field,
			Rule:    RuleDataTypeCheck,
			Message: fmt.Sprintf("rule skipped: unknown data type %q", dataType),
		}
	}

	if !ok {
		return value, &Flag{
			Field:   field,
			Rule:    RuleDataTypeCheck,
			Message: fmt.Sprintf("expected %s, got %q", dataType, value),
		}
	}
	return normalized, nil
}

// Defaults returns the seed rule set installed when the configuration store
// is empty: trim everything, normalize the enum fields, and type-check the
// date and cost columns.
func Defaults() []Rule {
	var rules []Rule

	for _, f := range schema.Fields() {
		rules = append(rules, Rule{
			Field: f.Name, Type: RuleTrim, Priority: 10, Active: true,
		})

		if f.Type == schema.FieldEnum {
			rules = append(rules, Rule{
				Field: f.Name, Type: RuleFuzzyMatch, Terms: f.EnumValues,
				Priority: 20, Active: true,
			})
		}

		switch f.Type {
		case schema.FieldNumeric:
			rules = append(rules, Rule{
				Field: f.Name, Type: RuleDataTypeCheck, DataType: "number",
				Priority: 30, Active: true,
			})
		case schema.FieldDate:
			rules = append(rules, Rule{
				Field: f.Name, Type: RuleDataTypeCheck, DataType: "date",
				Priority: 30, Active: true,
			})
		}

		if f.Required {
			rules = append(rules, Rule{
				Field: f.Name, Type: RuleRequiredField, Priority: 40, Active: true,
			})
		}
	}

	return rules
}
