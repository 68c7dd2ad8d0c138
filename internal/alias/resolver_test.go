package alias

import "testing"

func TestResolve_Basic(t *testing.T) {
	r := NewResolver(Defaults())

	got := r.Resolve([]string{"Asset Tag", "Asset Name", "Status"})
	if len(got) != 3 {
		t.Fatalf("Resolve() len = %d, want 3", len(got))
	}

	want := []struct {
		field      string
		confidence int
	}{
		{"assetTag", 100},
		{"assetName", 100},
		{"status", 100},
	}
	for i, w := range want {
		if !got[i].IsMapped {
			t.Errorf("header %d not mapped", i)
		}
		if got[i].AssetField != w.field {
			t.Errorf("header %d field = %q, want %q", i, got[i].AssetField, w.field)
		}
		if got[i].Confidence != w.confidence {
			t.Errorf("header %d confidence = %d, want %d", i, got[i].Confidence, w.confidence)
		}
	}
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	r := NewResolver(Defaults())

	got := r.Resolve([]string{"  asset tag ", "SERIAL NUMBER"})
	if !got[0].IsMapped || got[0].AssetField != "assetTag" {
		t.Errorf("messy header not resolved: %+v", got[0])
	}
	if !got[1].IsMapped || got[1].AssetField != "serialNumber" {
		t.Errorf("uppercase header not resolved: %+v", got[1])
	}
}

func TestResolve_Unmatched(t *testing.T) {
	r := NewResolver(Defaults())

	got := r.Resolve([]string{"Completely Unknown Column"})
	if got[0].IsMapped {
		t.Error("unknown header reported mapped")
	}
	if got[0].AssetField != "" || got[0].Confidence != 0 {
		t.Errorf("unknown header mapping = %+v, want empty field, confidence 0", got[0])
	}
	if got[0].CsvAlias != "Completely Unknown Column" {
		t.Errorf("original header text lost: %q", got[0].CsvAlias)
	}
}

func TestResolve_HighestConfidenceWins(t *testing.T) {
	r := NewResolver([]Mapping{
		{CsvAlias: "ID", AssetField: "serialNumber", Confidence: 60},
		{CsvAlias: "ID", AssetField: "assetTag", Confidence: 90},
	})

	got := r.Resolve([]string{"ID"})
	if got[0].AssetField != "assetTag" {
		t.Errorf("field = %q, want assetTag (higher confidence)", got[0].AssetField)
	}
	if got[0].Confidence != 90 {
		t.Errorf("confidence = %d, want 90", got[0].Confidence)
	}
}

func TestResolve_TieKeepsFirstRegistered(t *testing.T) {
	r := NewResolver([]Mapping{
		{CsvAlias: "Ref", AssetField: "assetTag", Confidence: 80},
		{CsvAlias: "Ref", AssetField: "serialNumber", Confidence: 80},
	})

	got := r.Resolve([]string{"Ref"})
	if got[0].AssetField != "assetTag" {
		t.Errorf("field = %q, want assetTag (first registered)", got[0].AssetField)
	}
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name     string
		mappings []Mapping
		want     float64
	}{
		{name: "empty", mappings: nil, want: 1},
		{
			name: "half mapped",
			mappings: []Mapping{
				{IsMapped: true},
				{IsMapped: false},
			},
			want: 0.5,
		},
		{
			name:     "all mapped",
			mappings: []Mapping{{IsMapped: true}, {IsMapped: true}},
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coverage(tt.mappings); got != tt.want {
				t.Errorf("Coverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaults_TargetCanonicalFields(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Defaults() {
		if m.AssetField == "" {
			t.Errorf("default alias %q has empty target", m.CsvAlias)
		}
		if m.Confidence <= 0 || m.Confidence > 100 {
			t.Errorf("default alias %q confidence = %d, want 1-100", m.CsvAlias, m.Confidence)
		}
		seen[m.AssetField] = true
	}
	for _, f := range []string{"assetTag", "assetName", "status", "condition"} {
		if !seen[f] {
			t.Errorf("no default alias targets %s", f)
		}
	}
}
