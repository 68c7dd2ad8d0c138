package pipeline

import (
	"fmt"

	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/schema"
)

// validateRow checks a cleaned row's fields against the asset schema
// and folds in cleaning flags as warnings. Blocking findings are
// missing required fields and invalid enum values; recoverable ones
// (bad optional dates, over-length strings, rule flags) are warnings.
func validateRow(fields map[string]string, flags []cleaning.Flag) []ValidationError {
	var errs []ValidationError
	flagged := make(map[string]bool)

	add := func(field, value, msg string, sev Severity) {
		errs = append(errs, ValidationError{Field: field, Value: value, Error: msg, Severity: sev})
		flagged[field] = true
	}

	for _, f := range schema.Fields() {
		value, present := fields[f.Name]

		if f.Required && (!present || value == "") {
			add(f.Name, value, "required field is missing", SeverityError)
			continue
		}
		if value == "" {
			continue
		}

		switch f.Type {
		case schema.FieldEnum:
			if !contains(f.EnumValues, value) {
				add(f.Name, value, fmt.Sprintf("not one of %v", f.EnumValues), SeverityError)
			}
		case schema.FieldDate:
			if _, ok := schema.ParseDate(value); !ok {
				sev := SeverityWarning
				if f.Required {
					sev = SeverityError
				}
				add(f.Name, value, "not a recognized date", sev)
			}
		case schema.FieldNumeric:
			if _, ok := schema.ParseNumber(value); !ok {
				sev := SeverityWarning
				if f.Required {
					sev = SeverityError
				}
				add(f.Name, value, "not a number", sev)
			}
		case schema.FieldBool:
			if _, ok := schema.ParseBool(value); !ok {
				add(f.Name, value, "not a recognized boolean", SeverityWarning)
			}
		}

		if f.MaxLen > 0 && len(value) > f.MaxLen {
			add(f.Name, value, fmt.Sprintf("longer than %d characters", f.MaxLen), SeverityWarning)
		}
	}

	// Cleaning flags come through as warnings, but a field the schema
	// checks already reported stays reported once.
	for _, fl := range flags {
		if flagged[fl.Field] {
			continue
		}
		errs = append(errs, ValidationError{
			Field:    fl.Field,
			Value:    fields[fl.Field],
			Error:    fmt.Sprintf("%s: %s", fl.Rule, fl.Message),
			Severity: SeverityWarning,
		})
	}
	return errs
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
