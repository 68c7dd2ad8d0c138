package store

import (
	"testing"
	"time"
)

func TestToPgText(t *testing.T) {
	if v := ToPgText("  hello  "); !v.Valid || v.String != "hello" {
		t.Errorf("got %+v", v)
	}
	if v := ToPgText("   "); v.Valid {
		t.Errorf("blank input should be NULL, got %+v", v)
	}
}

func TestToPgDate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"2024-03-15", true, "2024-03-15"},
		{"3/15/2024", true, "2024-03-15"},
		{"15 Mar 2024", true, "2024-03-15"},
		{"not a date", false, ""},
		{"", false, ""},
	}
	for _, tc := range tests {
		v := ToPgDate(tc.in)
		if v.Valid != tc.valid {
			t.Errorf("ToPgDate(%q): valid=%v, want %v", tc.in, v.Valid, tc.valid)
			continue
		}
		if tc.valid && v.Time.Format(time.DateOnly) != tc.want {
			t.Errorf("ToPgDate(%q): got %s, want %s", tc.in, v.Time.Format(time.DateOnly), tc.want)
		}
	}
}

func TestToPgNumeric(t *testing.T) {
	for _, in := range []string{"1200", "$1,200.00", "(45.50)", "-3.14"} {
		if v := ToPgNumeric(in); !v.Valid {
			t.Errorf("ToPgNumeric(%q) should be valid", in)
		}
	}
	for _, in := range []string{"", "twelve", "1.2.3"} {
		if v := ToPgNumeric(in); v.Valid {
			t.Errorf("ToPgNumeric(%q) should be NULL", in)
		}
	}
}

func TestToPgBool(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  bool
	}{
		{"true", true, true},
		{"Yes", true, true},
		{"0", true, false},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tc := range tests {
		v := ToPgBool(tc.in)
		if v.Valid != tc.valid || (tc.valid && v.Bool != tc.want) {
			t.Errorf("ToPgBool(%q): got %+v", tc.in, v)
		}
	}
}
