// Package alias maps raw CSV column headers to canonical asset fields.
//
// Aliases are operator-managed configuration: each one pairs a source header
// spelling with a canonical field and a confidence score. The resolver is a
// pure lookup over that table; it never mutates configuration and never
// blocks an import on its own. Poor coverage is surfaced as an advisory.
package alias

import (
	"github.com/assetdesk/importer/internal/csvio"
)

// CoverageAdvisoryThreshold is the mapped/total header ratio below which the
// resolver flags the file for operator review.
const CoverageAdvisoryThreshold = 0.5

// Mapping pairs a CSV column header with a canonical asset field.
// As configuration, CsvAlias holds the expected header spelling; as resolver
// output, CsvAlias holds the actual header text from the file.
type Mapping struct {
	ID         int64  `json:"id,omitempty"`
	CsvAlias   string `json:"csvAlias"`
	AssetField string `json:"assetField"`
	Confidence int    `json:"confidence"`
	IsMapped   bool   `json:"isMapped"`
}

type entry struct {
	field      string
	confidence int
}

// Resolver resolves headers against a fixed alias table.
type Resolver struct {
	byAlias map[string]entry
}

// NewResolver builds a resolver from configured aliases. When several aliases
// share the same header spelling, the highest confidence wins; equal
// confidence keeps the first-registered alias.
func NewResolver(aliases []Mapping) *Resolver {
	byAlias := make(map[string]entry, len(aliases))
	for _, a := range aliases {
		key := csvio.CleanHeader(a.CsvAlias)
		if key == "" || a.AssetField == "" {
			continue
		}
		cur, exists := byAlias[key]
		if exists && cur.confidence >= a.Confidence {
			continue
		}
		byAlias[key] = entry{field: a.AssetField, confidence: a.Confidence}
	}
	return &Resolver{byAlias: byAlias}
}

// Resolve maps each header to its canonical field. Unmatched headers come
// back with an empty AssetField, confidence 0 and IsMapped=false; their
// column data is dropped during transformation.
func (r *Resolver) Resolve(headers []string) []Mapping {
	out := make([]Mapping, len(headers))
	for i, h := range headers {
		out[i] = Mapping{CsvAlias: h}

		e, ok := r.byAlias[csvio.CleanHeader(h)]
		if !ok {
			continue
		}
		out[i].AssetField = e.field
		out[i].Confidence = e.confidence
		out[i].IsMapped = true
	}
	return out
}

// Coverage returns the mapped/total ratio for a resolution pass.
// An empty header set counts as fully covered.
func Coverage(mappings []Mapping) float64 {
	if len(mappings) == 0 {
		return 1
	}
	mapped := 0
	for _, m := range mappings {
		if m.IsMapped {
			mapped++
		}
	}
	return float64(mapped) / float64(len(mappings))
}

// Defaults returns the seed alias table installed when the configuration
// store is empty. Operators extend it per tenant.
func Defaults() []Mapping {
	return []Mapping{
		{CsvAlias: "Asset Tag", AssetField: "assetTag", Confidence: 100},
		{CsvAlias: "Tag", AssetField: "assetTag", Confidence: 90},
		{CsvAlias: "Asset ID", AssetField: "assetTag", Confidence: 80},
		{CsvAlias: "Asset Name", AssetField: "assetName", Confidence: 100},
		{CsvAlias: "Name", AssetField: "assetName", Confidence: 85},
		{CsvAlias: "Description", AssetField: "assetName", Confidence: 60},
		{CsvAlias: "Status", AssetField: "status", Confidence: 100},
		{CsvAlias: "State", AssetField: "status", Confidence: 80},
		{CsvAlias: "Condition", AssetField: "condition", Confidence: 100},
		{CsvAlias: "Serial Number", AssetField: "serialNumber", Confidence: 100},
		{CsvAlias: "Serial", AssetField: "serialNumber", Confidence: 90},
		{CsvAlias: "SN", AssetField: "serialNumber", Confidence: 70},
		{CsvAlias: "Manufacturer", AssetField: "manufacturer", Confidence: 100},
		{CsvAlias: "Make", AssetField: "manufacturer", Confidence: 85},
		{CsvAlias: "Vendor", AssetField: "manufacturer", Confidence: 70},
		{CsvAlias: "Model", AssetField: "model", Confidence: 100},
		{CsvAlias: "Model Number", AssetField: "model", Confidence: 90},
		{CsvAlias: "Category", AssetField: "category", Confidence: 100},
		{CsvAlias: "Type", AssetField: "category", Confidence: 75},
		{CsvAlias: "Location", AssetField: "location", Confidence: 100},
		{CsvAlias: "Site", AssetField: "location", Confidence: 80},
		{CsvAlias: "Assigned To", AssetField: "assignedTo", Confidence: 100},
		{CsvAlias: "Owner", AssetField: "assignedTo", Confidence: 80},
		{CsvAlias: "User", AssetField: "assignedTo", Confidence: 70},
		{CsvAlias: "Purchase Date", AssetField: "purchaseDate", Confidence: 100},
		{CsvAlias: "Acquisition Date", AssetField: "purchaseDate", Confidence: 85},
		{CsvAlias: "Purchase Cost", AssetField: "purchaseCost", Confidence: 100},
		{CsvAlias: "Cost", AssetField: "purchaseCost", Confidence: 85},
		{CsvAlias: "Price", AssetField: "purchaseCost", Confidence: 75},
		{CsvAlias: "Warranty Expiry", AssetField: "warrantyExpiry", Confidence: 100},
		{CsvAlias: "Warranty End", AssetField: "warrantyExpiry", Confidence: 90},
		{CsvAlias: "Notes", AssetField: "notes", Confidence: 100},
		{CsvAlias: "Comments", AssetField: "notes", Confidence: 85},
		{CsvAlias: "Remarks", AssetField: "notes", Confidence: 75},
	}
}
