package usecase

import "strings"

// Similarity tiers for food name comparison
const (
	similarityExact       = 1.0
	similarityContainment = 0.8
	wordOverlapCap        = 0.9
)

// FoodNameSimilarity scores how alike two food names are on a 0-1 scale.
// Names are lower-cased and trimmed before comparison. Exact match wins
// outright; substring containment in either direction is the second tier;
// the fallback is a word-overlap ratio 2*common/(len1+len2), capped below
// 1.0 so only exact matches reach the top score.
//
// This is the single similarity implementation for the whole codebase:
// route-level and service-level deduplication must agree on semantics.
func FoodNameSimilarity(name1, name2 string) float64 {
	n1 := strings.ToLower(strings.TrimSpace(name1))
	n2 := strings.ToLower(strings.TrimSpace(name2))

	if n1 == n2 {
		return similarityExact
	}
	if n1 == "" || n2 == "" {
		return 0
	}

	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return similarityContainment
	}

	words1 := strings.Fields(n1)
	words2 := strings.Fields(n2)

	seen := make(map[string]bool, len(words2))
	for _, word := range words2 {
		seen[word] = true
	}

	common := 0
	for _, word := range words1 {
		if seen[word] {
			common++
		}
	}

	if common == 0 {
		return 0
	}

	overlap := float64(2*common) / float64(len(words1)+len(words2))
	if overlap > wordOverlapCap {
		return wordOverlapCap
	}
	return overlap
}
