package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/csvio"
)

// maxSampleIssues caps how many rows' findings a validation summary
// carries. The full detail is available per row after a real import.
const maxSampleIssues = 50

// readFile resolves a file ID to extracted CSV content. An unknown ID
// is ErrNotFound; a file that exists but cannot be read or has no
// header row is ErrInvalidFile.
func (o *Orchestrator) readFile(ctx context.Context, fileID string) (records [][]string, headers []string, rows []RawRow, err error) {
	records, err = o.stores.Files.Read(ctx, fileID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil, fmt.Errorf("%w: file %q", ErrNotFound, fileID)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	headers, rows, err = extract(records)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %q: %v", ErrInvalidFile, fileID, err)
	}
	return records, headers, rows, nil
}

// Validate runs the full clean/transform/validate pass over a file
// without creating a job or staging anything. It runs on the caller's
// context, so an abandoned request stops the work.
func (o *Orchestrator) Validate(ctx context.Context, fileID string) (*ValidationSummary, error) {
	_, headers, rows, err := o.readFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	aliases, err := o.stores.Config.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aliases: %w", err)
	}
	rules, err := o.stores.Config.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cleaning rules: %w", err)
	}
	plan := planHeaders(headers, alias.NewResolver(aliases))
	engine := cleaning.NewEngine(rules)

	summary := &ValidationSummary{
		FileID:          fileID,
		TotalRows:       len(rows),
		HeaderCoverage:  plan.coverage,
		UnmappedHeaders: plan.unmapped,
	}
	if plan.coverage < alias.CoverageAdvisoryThreshold {
		summary.CoverageAdvisory = fmt.Sprintf(
			"only %.0f%% of headers mapped to asset fields; check the alias configuration",
			plan.coverage*100,
		)
	}

	for _, raw := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		staged := stageRow("", cleanRow(raw, plan, engine))

		if staged.IsValid {
			summary.ValidRows++
		} else {
			summary.InvalidRows++
		}
		if staged.IsValid && len(staged.Errors) > 0 {
			summary.WarningRows++
		}
		if len(staged.Errors) > 0 && len(summary.SampleIssues) < maxSampleIssues {
			summary.SampleIssues = append(summary.SampleIssues, RowIssues{
				RowNumber: staged.RowNumber,
				Errors:    staged.Errors,
			})
		}
	}
	return summary, nil
}

// PreviewFile returns the headers and first few raw rows of a file.
func (o *Orchestrator) PreviewFile(ctx context.Context, fileID string, limit int) (*Preview, error) {
	records, headers, rows, err := o.readFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		FileID:    fileID,
		Headers:   headers,
		TotalRows: len(rows),
	}
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	p.Rows = rows[:limit]
	p.HeaderRow = csvio.FindHeader(records) + 1
	return p, nil
}
