package pipeline

import (
	"github.com/assetdesk/importer/internal/cleaning"
)

// RawRow is one data row straight out of the CSV, keyed by the original
// header text. RowNumber is the 1-based line number in the source file,
// so it already accounts for the header row and any preamble above it.
type RawRow struct {
	RowNumber int               `json:"rowNumber"`
	Raw       map[string]string `json:"raw"`
}

// CleanedRow is a raw row after alias resolution and rule application:
// values are keyed by canonical asset field and carry any flags the
// cleaning rules raised.
type CleanedRow struct {
	RowNumber int
	Raw       map[string]string
	Fields    map[string]string
	Flags     []cleaning.Flag
}

// Severity splits validation findings into blockers and advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is one finding against one field of one row.
type ValidationError struct {
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Error    string   `json:"error"`
	Severity Severity `json:"severity"`
}

// StagedRow is the fully processed form of a row, held in staging until
// the job is approved or rejected. WillImport starts equal to IsValid;
// an operator can overrule it before approval.
type StagedRow struct {
	JobID      string            `json:"jobId"`
	RowNumber  int               `json:"rowNumber"`
	RawData    map[string]string `json:"rawData"`
	MappedData map[string]string `json:"mappedData"`
	IsValid    bool              `json:"isValid"`
	WillImport bool              `json:"willImport"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// RowIssues groups a row's validation findings for summary payloads.
type RowIssues struct {
	RowNumber int               `json:"rowNumber"`
	Errors    []ValidationError `json:"errors"`
}

// ValidationSummary is the result of a dry run over a source file. No
// job is created and nothing is staged.
type ValidationSummary struct {
	FileID           string      `json:"fileId"`
	TotalRows        int         `json:"totalRows"`
	ValidRows        int         `json:"validRows"`
	InvalidRows      int         `json:"invalidRows"`
	WarningRows      int         `json:"warningRows"`
	HeaderCoverage   float64     `json:"headerCoverage"`
	CoverageAdvisory string      `json:"coverageAdvisory,omitempty"`
	UnmappedHeaders  []string    `json:"unmappedHeaders,omitempty"`
	SampleIssues     []RowIssues `json:"sampleIssues,omitempty"`
}

// Preview is the raw head of a source file, for showing an operator
// what they are about to import.
type Preview struct {
	FileID    string     `json:"fileId"`
	Headers   []string   `json:"headers"`
	Rows      []RawRow   `json:"rows"`
	TotalRows int        `json:"totalRows"`
	HeaderRow int        `json:"headerRow"`
}
