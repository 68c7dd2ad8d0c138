// Package schema defines the canonical asset record: the fixed set of fields
// an imported row may populate, their types, and their validation bounds.
// The alias resolver, cleaning engine, row validator and asset store all
// consult this table so the field list lives in exactly one place.
package schema

// FieldType represents the expected data type for an asset field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

// Field describes one canonical asset field.
type Field struct {
	Name       string    // Canonical name used in mapped row data: "assetTag"
	Column     string    // Database column name: "asset_tag"
	Type       FieldType // Expected data type
	Required   bool      // Row is invalid when missing or empty
	MaxLen     int       // Maximum string length, 0 means unbounded
	EnumValues []string  // Valid values for FieldEnum type
}

// ValidStatuses are the accepted values for the status field.
var ValidStatuses = []string{"ACTIVE", "INACTIVE", "MAINTENANCE", "RETIRED", "DISPOSED"}

// ValidConditions are the accepted values for the condition field.
var ValidConditions = []string{"NEW", "EXCELLENT", "GOOD", "FAIR", "POOR", "BROKEN"}

// assetFields is the canonical asset schema in column order.
var assetFields = []Field{
	{Name: "assetTag", Column: "asset_tag", Type: FieldText, Required: true, MaxLen: 50},
	{Name: "assetName", Column: "asset_name", Type: FieldText, Required: true, MaxLen: 255},
	{Name: "category", Column: "category", Type: FieldText, MaxLen: 100},
	{Name: "status", Column: "status", Type: FieldEnum, Required: true, EnumValues: ValidStatuses},
	{Name: "condition", Column: "condition", Type: FieldEnum, EnumValues: ValidConditions},
	{Name: "serialNumber", Column: "serial_number", Type: FieldText, MaxLen: 100},
	{Name: "manufacturer", Column: "manufacturer", Type: FieldText, MaxLen: 100},
	{Name: "model", Column: "model", Type: FieldText, MaxLen: 100},
	{Name: "location", Column: "location", Type: FieldText, MaxLen: 255},
	{Name: "assignedTo", Column: "assigned_to", Type: FieldText, MaxLen: 255},
	{Name: "purchaseDate", Column: "purchase_date", Type: FieldDate},
	{Name: "purchaseCost", Column: "purchase_cost", Type: FieldNumeric},
	{Name: "warrantyExpiry", Column: "warranty_expiry", Type: FieldDate},
	{Name: "notes", Column: "notes", Type: FieldText},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(assetFields))
	for _, f := range assetFields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the canonical asset fields in column order.
// The returned slice must not be mutated.
func Fields() []Field {
	return assetFields
}

// ByName returns the field definition for a canonical field name.
func ByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// IsCanonical reports whether name is a canonical asset field name.
func IsCanonical(name string) bool {
	_, ok := fieldsByName[name]
	return ok
}

// RequiredFields returns the canonical fields that must be present and
// non-empty for a row to be importable.
func RequiredFields() []Field {
	var req []Field
	for _, f := range assetFields {
		if f.Required {
			req = append(req, f)
		}
	}
	return req
}
