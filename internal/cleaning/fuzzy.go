package cleaning

import "strings"

// FuzzyThreshold is the minimum normalized similarity (1 - distance/maxLen)
// for a fuzzy match to rewrite a value to a canonical term.
const FuzzyThreshold = 0.8

// FuzzyMatch normalizes value to the closest term from the reference set when
// the best similarity clears FuzzyThreshold; otherwise the value passes
// through unchanged. Comparison is case-insensitive, the returned term keeps
// its canonical casing. Equal similarity keeps the earlier term.
func FuzzyMatch(value string, terms []string) string {
	if strings.TrimSpace(value) == "" || len(terms) == 0 {
		return value
	}

	lower := strings.ToLower(value)
	best := ""
	bestScore := 0.0

	for _, term := range terms {
		score := Similarity(lower, strings.ToLower(term))
		if score > bestScore {
			bestScore = score
			best = term
		}
	}

	if bestScore >= FuzzyThreshold {
		return best
	}
	return value
}

// Similarity returns the normalized Levenshtein similarity of two strings in
// [0, 1]: identical strings score 1, disjoint strings approach 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(max)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
