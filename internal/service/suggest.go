package service

import (
	"sort"
	"strings"

	"skillboard/internal/models"
)

// Suggester proposes known skill names close to a query that matched nothing
type Suggester struct {
	Threshold float64
	Max       int
}

// NewSuggester creates a suggester with the default threshold and size
func NewSuggester() *Suggester {
	return &Suggester{Threshold: 0.3, Max: 5}
}

// Suggest ranks the distinct skill items of rules by similarity to query
func (s *Suggester) Suggest(rules []models.Rule, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	seen := make(map[string]bool)
	type scored struct {
		item  string
		score float64
	}
	var candidates []scored

	consider := func(items []string) {
		for _, item := range items {
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			score := Similarity(query, key)
			if score >= s.Threshold {
				candidates = append(candidates, scored{item: item, score: score})
			}
		}
	}
	for _, r := range rules {
		consider(r.AntecedentItems())
		consider(r.ConsequentItems())
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].item < candidates[j].item
	})

	out := []string{}
	for _, c := range candidates {
		if s.Max > 0 && len(out) >= s.Max {
			break
		}
		out = append(out, c.item)
	}
	return out
}

// Similarity blends trigram Jaccard and Levenshtein ratio (0-1)
func Similarity(s1, s2 string) float64 {
	jac := jaccardSimilarity(s1, s2)
	lev := LevenshteinRatio(s1, s2)
	if jac > lev {
		return jac
	}
	return lev
}

// generateNGrams creates character n-grams
func generateNGrams(s string, n int) []string {
	r := []rune(strings.ToLower(s))
	if len(r) < n {
		return []string{string(r)}
	}

	grams := make([]string, 0, len(r)-n+1)
	for i := 0; i <= len(r)-n; i++ {
		grams = append(grams, string(r[i:i+n]))
	}
	return grams
}

// jaccardSimilarity calculates Jaccard similarity of character 3-grams
func jaccardSimilarity(s1, s2 string) float64 {
	set1 := make(map[string]bool)
	set2 := make(map[string]bool)
	for _, g := range generateNGrams(s1, 3) {
		set1[g] = true
	}
	for _, g := range generateNGrams(s2, 3) {
		set2[g] = true
	}

	intersection := 0
	for g := range set1 {
		if set2[g] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// LevenshteinRatio calculates similarity ratio (0-1)
func LevenshteinRatio(s1, s2 string) float64 {
	r1 := []rune(strings.ToLower(s1))
	r2 := []rune(strings.ToLower(s2))
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(r1, r2))/float64(maxLen)
}

func levenshtein(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}
