package cleaning

import "testing"

func TestApply_Trim(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "assetTag", Type: RuleTrim, Priority: 1, Active: true},
	})

	got, flags := e.Apply("assetTag", "  AB-100  ")
	if got != "AB-100" {
		t.Errorf("Apply() = %q, want %q", got, "AB-100")
	}
	if len(flags) != 0 {
		t.Errorf("Apply() flags = %v, want none", flags)
	}
}

func TestApply_RegexReplace(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "serialNumber", Type: RuleRegexReplace, Pattern: `[^A-Za-z0-9-]`, Replacement: "", Priority: 1, Active: true},
	})

	got, _ := e.Apply("serialNumber", "SN 123/456")
	if got != "SN123456" {
		t.Errorf("Apply() = %q, want %q", got, "SN123456")
	}
}

func TestApply_InvalidRegexDegradesToPassthrough(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 7, Field: "notes", Type: RuleRegexReplace, Pattern: `[unclosed`, Priority: 1, Active: true},
	})

	got, flags := e.Apply("notes", "original")
	if got != "original" {
		t.Errorf("Apply() = %q, want pass-through", got)
	}
	if len(flags) != 1 || flags[0].Rule != RuleRegexReplace {
		t.Fatalf("Apply() flags = %v, want one regex flag", flags)
	}
}

func TestApply_PriorityOrder(t *testing.T) {
	// Lower priority runs first: trim before the regex that collapses spaces,
	// checked by a replace that only matches the trimmed form.
	e := NewEngine([]Rule{
		{ID: 2, Field: "assetTag", Type: RuleRegexReplace, Pattern: `^AB-`, Replacement: "XX-", Priority: 2, Active: true},
		{ID: 1, Field: "assetTag", Type: RuleTrim, Priority: 1, Active: true},
	})

	got, _ := e.Apply("assetTag", "  AB-100")
	if got != "XX-100" {
		t.Errorf("Apply() = %q, want %q (trim must run before replace)", got, "XX-100")
	}
}

func TestApply_InactiveRuleSkipped(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "assetTag", Type: RuleTrim, Priority: 1, Active: false},
	})

	got, _ := e.Apply("assetTag", "  AB-100  ")
	if got != "  AB-100  " {
		t.Errorf("inactive rule ran: %q", got)
	}
	if e.HasRules("assetTag") {
		t.Error("HasRules true with only inactive rules")
	}
}

func TestApply_ExactMatch(t *testing.T) {
	rule := Rule{ID: 1, Field: "status", Type: RuleExactMatch, Terms: []string{"ACTIVE", "RETIRED"}, Priority: 1, Active: true}
	e := NewEngine([]Rule{rule})

	if got, _ := e.Apply("status", "ACTIVE"); got != "ACTIVE" {
		t.Errorf("exact member = %q, want ACTIVE", got)
	}
	// Case-sensitive: lowercase does not match, passes through unchanged.
	if got, _ := e.Apply("status", "active"); got != "active" {
		t.Errorf("non-member = %q, want pass-through", got)
	}
}

func TestApply_FuzzyMatch(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "status", Type: RuleFuzzyMatch, Terms: []string{"ACTIVE", "INACTIVE", "RETIRED"}, Priority: 1, Active: true},
	})

	tests := []struct {
		input string
		want  string
	}{
		{input: "active", want: "ACTIVE"},     // case difference only
		{input: "ACTVE", want: "ACTIVE"},      // one dropped letter
		{input: "RETIRD", want: "RETIRED"},    // one dropped letter
		{input: "BOGUS", want: "BOGUS"},       // nothing close enough
		{input: "", want: ""},                 // empty passes through
		{input: "DECOMMISSIONED", want: "DECOMMISSIONED"},
	}

	for _, tt := range tests {
		if got, _ := e.Apply("status", tt.input); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestApply_RequiredFieldFlagsEmpty(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "assetTag", Type: RuleRequiredField, Priority: 1, Active: true},
	})

	got, flags := e.Apply("assetTag", "   ")
	if got != "   " {
		t.Errorf("required_field mutated value: %q", got)
	}
	if len(flags) != 1 || flags[0].Rule != RuleRequiredField {
		t.Fatalf("flags = %v, want one required_field flag", flags)
	}

	_, flags = e.Apply("assetTag", "AB-1")
	if len(flags) != 0 {
		t.Errorf("non-empty value flagged: %v", flags)
	}
}

func TestApply_DataTypeCheck(t *testing.T) {
	e := NewEngine([]Rule{
		{ID: 1, Field: "purchaseCost", Type: RuleDataTypeCheck, DataType: "number", Priority: 1, Active: true},
		{ID: 2, Field: "purchaseDate", Type: RuleDataTypeCheck, DataType: "date", Priority: 1, Active: true},
	})

	got, flags := e.Apply("purchaseCost", "$1,200.00")
	if got != "1200" {
		t.Errorf("number coercion = %q, want %q", got, "1200")
	}
	if len(flags) != 0 {
		t.Errorf("valid number flagged: %v", flags)
	}

	got, flags = e.Apply("purchaseCost", "twelve")
	if got != "twelve" {
		t.Errorf("unparseable value mutated: %q", got)
	}
	if len(flags) != 1 || flags[0].Rule != RuleDataTypeCheck {
		t.Fatalf("flags = %v, want one data_type_check flag", flags)
	}

	got, _ = e.Apply("purchaseDate", "3/15/2024")
	if got != "2024-03-15" {
		t.Errorf("date coercion = %q, want %q", got, "2024-03-15")
	}

	// Empty values are left for the required-field check.
	_, flags = e.Apply("purchaseCost", "")
	if len(flags) != 0 {
		t.Errorf("empty value flagged by type check: %v", flags)
	}
}

func TestApply_NoRulesForField(t *testing.T) {
	e := NewEngine(nil)

	got, flags := e.Apply("assetTag", "  raw  ")
	if got != "  raw  " || len(flags) != 0 {
		t.Errorf("Apply() with no rules = %q, %v, want untouched input", got, flags)
	}
}

func TestDefaults(t *testing.T) {
	e := NewEngine(Defaults())

	// Every canonical field at least gets trimmed.
	got, _ := e.Apply("assetTag", "  AB-100 ")
	if got != "AB-100" {
		t.Errorf("default trim = %q, want %q", got, "AB-100")
	}

	// Enum fields are fuzzy-normalized.
	got, _ = e.Apply("status", "active")
	if got != "ACTIVE" {
		t.Errorf("default status normalization = %q, want ACTIVE", got)
	}

	// Required fields are flagged when empty.
	_, flags := e.Apply("assetName", "")
	found := false
	for _, f := range flags {
		if f.Rule == RuleRequiredField {
			found = true
		}
	}
	if !found {
		t.Errorf("empty required field not flagged: %v", flags)
	}
}
