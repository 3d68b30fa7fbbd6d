package taxonomy

import "filesorter-ai/internal/storage"

// FuzzyThreshold is the minimum combined score for a fuzzy match.
const FuzzyThreshold = 0.85

// scoreEpsilon absorbs float rounding so a score of exactly FuzzyThreshold matches.
const scoreEpsilon = 1e-9

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity scores two normalized strings in [0,1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// CombinedScore averages the category and subcategory similarity against an entry.
func CombinedScore(entry storage.TaxonomyEntry, normCategory, normSubcategory string) float64 {
	return (Similarity(normCategory, entry.NormalizedCategory) +
		Similarity(normSubcategory, entry.NormalizedSubcategory)) / 2
}

// MeetsThreshold reports whether score is at or above FuzzyThreshold.
func MeetsThreshold(score float64) bool {
	return score+scoreEpsilon >= FuzzyThreshold
}
