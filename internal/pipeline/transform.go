package pipeline

import (
	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/schema"
)

// headerPlan is the per-job resolution of CSV headers onto canonical
// asset fields. Headers are fixed for the life of a job, so this is
// computed once and reused for every row.
type headerPlan struct {
	headers  []string
	fieldFor map[string]string
	unmapped []string
	coverage float64
}

func planHeaders(headers []string, resolver *alias.Resolver) headerPlan {
	plan := headerPlan{
		headers:  headers,
		fieldFor: make(map[string]string, len(headers)),
	}
	resolved := resolver.Resolve(headers)
	plan.coverage = alias.Coverage(resolved)

	claimed := make(map[string]bool, len(headers))
	for _, m := range resolved {
		if m.CsvAlias == "" {
			continue
		}
		// Two headers can resolve to the same field; the leftmost
		// column wins and the rest count as unmapped.
		if m.IsMapped && schema.IsCanonical(m.AssetField) && !claimed[m.AssetField] {
			plan.fieldFor[m.CsvAlias] = m.AssetField
			claimed[m.AssetField] = true
			continue
		}
		plan.unmapped = append(plan.unmapped, m.CsvAlias)
	}
	return plan
}

// cleanRow applies the header plan and cleaning rules to one raw row,
// producing canonical field values plus any flags the rules raised.
func cleanRow(raw RawRow, plan headerPlan, engine *cleaning.Engine) CleanedRow {
	out := CleanedRow{
		RowNumber: raw.RowNumber,
		Raw:       raw.Raw,
		Fields:    make(map[string]string, len(plan.fieldFor)),
	}
	for _, h := range plan.headers {
		field, ok := plan.fieldFor[h]
		if !ok {
			continue
		}
		value, flags := engine.Apply(field, raw.Raw[h])
		out.Fields[field] = value
		out.Flags = append(out.Flags, flags...)
	}
	return out
}

// stageRow validates a cleaned row and produces its staged form.
// Rows with error-severity findings stage as invalid and are excluded
// from import by default; warning-only rows import as-is.
func stageRow(jobID string, row CleanedRow) StagedRow {
	errs := validateRow(row.Fields, row.Flags)

	valid := true
	for _, e := range errs {
		if e.Severity == SeverityError {
			valid = false
			break
		}
	}
	return StagedRow{
		JobID:      jobID,
		RowNumber:  row.RowNumber,
		RawData:    row.Raw,
		MappedData: row.Fields,
		IsValid:    valid,
		WillImport: valid,
		Errors:     errs,
	}
}
