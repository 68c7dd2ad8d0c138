package csvio

import (
	"bytes"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte("Asset Tag,Asset Name,Status\nAB-100,Widget,ACTIVE\nAB-101,Gadget,RETIRED\n")

	records, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Parse() rows = %d, want 3", len(records))
	}
	if records[1][0] != "AB-100" {
		t.Errorf("records[1][0] = %q, want %q", records[1][0], "AB-100")
	}
}

func TestParse_RaggedRows(t *testing.T) {
	data := []byte("a,b,c\n1,2\n1,2,3,4\n")

	records, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v for ragged rows", err)
	}
	if len(records) != 3 {
		t.Errorf("Parse() rows = %d, want 3", len(records))
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	data := []byte("name\ncaf\xe9\n")

	records, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if records[1][0] != "caf�" {
		t.Errorf("invalid byte not replaced: %q", records[1][0])
	}
}

func TestSanitizeUTF8_ValidUnchanged(t *testing.T) {
	in := []byte("hello \xe4\xb8\x96\xe7\x95\x8c") // hello 世界
	if got := SanitizeUTF8(in); !bytes.Equal(got, in) {
		t.Errorf("SanitizeUTF8 altered valid input: %q", got)
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "value", want: "value"},
		{name: "whitespace", input: "  value  ", want: "value"},
		{name: "BOM prefix", input: "\uFEFFvalue", want: "value"},
		{name: "excel formula wrapper", input: `="AB-100"`, want: "AB-100"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanHeader(t *testing.T) {
	if got := CleanHeader("  Asset Tag "); got != "asset tag" {
		t.Errorf("CleanHeader = %q, want %q", got, "asset tag")
	}
}

func TestFindHeader(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		want    int
	}{
		{
			name:    "header first",
			records: [][]string{{"Asset Tag", "Status"}, {"AB-1", "ACTIVE"}},
			want:    0,
		},
		{
			name: "title lines before header",
			records: [][]string{
				{"Inventory Export"},
				{""},
				{"Asset Tag", "Status"},
				{"AB-1", "ACTIVE"},
			},
			want: 0, // single-column title row is indistinguishable from a header
		},
		{
			name: "padded title line skipped",
			records: [][]string{
				{"Inventory Export", "", ""},
				{"", "", ""},
				{"Asset Tag", "Status", "Location"},
				{"AB-1", "ACTIVE", "HQ"},
			},
			want: 2,
		},
		{
			name:    "blank row then header",
			records: [][]string{{"", ""}, {"Asset Tag", "Status"}},
			want:    1,
		},
		{
			name:    "numeric first row rejected",
			records: [][]string{{"100", "200"}, {"Asset Tag", "Status"}},
			want:    1,
		},
		{
			name:    "no header",
			records: [][]string{{"1", "2"}, {"3", "4"}},
			want:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindHeader(tt.records); got != tt.want {
				t.Errorf("FindHeader() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", ""}) {
		t.Error("blank row not detected")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("non-blank row reported empty")
	}
}
