package cleaning

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"active", "actve", 1},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("active", "active"); got != 1 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Errorf("empty similarity = %v, want 1", got)
	}

	got := Similarity("active", "actve")
	if got < 0.8 || got >= 1 {
		t.Errorf("one-edit similarity = %v, want in [0.8, 1)", got)
	}

	if got := Similarity("abc", "xyz"); got > 0.1 {
		t.Errorf("disjoint similarity = %v, want near 0", got)
	}
}

func TestFuzzyMatch_Threshold(t *testing.T) {
	terms := []string{"MAINTENANCE"}

	// Close enough: one edit over eleven characters.
	if got := FuzzyMatch("MAINTENANCE", terms); got != "MAINTENANCE" {
		t.Errorf("exact = %q", got)
	}
	if got := FuzzyMatch("MAINTENANC", terms); got != "MAINTENANCE" {
		t.Errorf("near match = %q, want MAINTENANCE", got)
	}

	// Too far: passes through.
	if got := FuzzyMatch("MAINT", terms); got != "MAINT" {
		t.Errorf("far value = %q, want pass-through", got)
	}
}

func TestFuzzyMatch_KeepsCanonicalCasing(t *testing.T) {
	if got := FuzzyMatch("retired", []string{"RETIRED"}); got != "RETIRED" {
		t.Errorf("FuzzyMatch = %q, want canonical casing RETIRED", got)
	}
}
