package schema

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // ISO date, empty means parse failure expected
	}{
		{name: "ISO format", input: "2024-03-15", want: "2024-03-15"},
		{name: "US slashes", input: "3/15/2024", want: "2024-03-15"},
		{name: "US padded", input: "03/15/2024", want: "2024-03-15"},
		{name: "day first with month name", input: "15 Mar 2024", want: "2024-03-15"},
		{name: "month name", input: "Mar 15, 2024", want: "2024-03-15"},
		{name: "compact", input: "20240315", want: "2024-03-15"},
		{name: "two digit year recent", input: "3/15/24", want: "2024-03-15"},
		{name: "whitespace trimmed", input: "  2024-03-15  ", want: "2024-03-15"},
		{name: "empty", input: "", want: ""},
		{name: "garbage", input: "not a date", want: ""},
		{name: "numbers only", input: "12345", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if tt.want == "" {
				if ok {
					t.Errorf("ParseDate(%q) = %v, want failure", tt.input, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q) failed, want %s", tt.input, tt.want)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	// A 2-digit year far in the future should land in the previous century.
	farFuture := (time.Now().Year() + TwoDigitYearPivot + 5) % 100
	input := "1/2/" + twoDigit(farFuture)

	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.Year() > time.Now().Year()+TwoDigitYearPivot {
		t.Errorf("ParseDate(%q) year = %d, expected previous century", input, got.Year())
	}
}

func twoDigit(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain integer", input: "42", want: 42, ok: true},
		{name: "decimal", input: "3.14", want: 3.14, ok: true},
		{name: "negative", input: "-7.5", want: -7.5, ok: true},
		{name: "currency symbol", input: "$1,234.56", want: 1234.56, ok: true},
		{name: "euro symbol", input: "€99", want: 99, ok: true},
		{name: "accounting negative", input: "(123.45)", want: -123.45, ok: true},
		{name: "scientific", input: "1.5e3", want: 1500, ok: true},
		{name: "whitespace", input: "  10  ", want: 10, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "text", input: "abc", ok: false},
		{name: "mixed", input: "12abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "t", "yes", "Y", "1"}
	falsy := []string{"false", "F", "no", "n", "0"}
	invalid := []string{"", "maybe", "2", "on"}

	for _, s := range truthy {
		if b, ok := ParseBool(s); !ok || !b {
			t.Errorf("ParseBool(%q) = %v, %v, want true", s, b, ok)
		}
	}
	for _, s := range falsy {
		if b, ok := ParseBool(s); !ok || b {
			t.Errorf("ParseBool(%q) = %v, %v, want false", s, b, ok)
		}
	}
	for _, s := range invalid {
		if _, ok := ParseBool(s); ok {
			t.Errorf("ParseBool(%q) ok = true, want failure", s)
		}
	}
}

func TestNormalizers(t *testing.T) {
	if got := NormalizeNumber("$1,000.50"); got != "1000.5" {
		t.Errorf("NormalizeNumber = %q, want %q", got, "1000.5")
	}
	if got := NormalizeNumber("bogus"); got != "bogus" {
		t.Errorf("NormalizeNumber passthrough = %q, want %q", got, "bogus")
	}
	if got := NormalizeDate("3/15/2024"); got != "2024-03-15" {
		t.Errorf("NormalizeDate = %q, want %q", got, "2024-03-15")
	}
	if got := NormalizeBool("Yes"); got != "true" {
		t.Errorf("NormalizeBool = %q, want %q", got, "true")
	}
}

func TestSchemaFields(t *testing.T) {
	if !IsCanonical("assetTag") {
		t.Error("assetTag should be canonical")
	}
	if IsCanonical("Asset Tag") {
		t.Error("raw header text should not be canonical")
	}

	f, ok := ByName("status")
	if !ok {
		t.Fatal("status field missing")
	}
	if f.Type != FieldEnum {
		t.Errorf("status type = %v, want FieldEnum", f.Type)
	}
	if len(f.EnumValues) == 0 {
		t.Error("status has no enum values")
	}

	var sawTag, sawName bool
	for _, f := range RequiredFields() {
		switch f.Name {
		case "assetTag":
			sawTag = true
		case "assetName":
			sawName = true
		}
	}
	if !sawTag || !sawName {
		t.Errorf("RequiredFields missing assetTag/assetName: %v %v", sawTag, sawName)
	}
}
