package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggester(t *testing.T) {
	table := loadTestTable(t)
	s := NewSuggester()

	got := s.Suggest(table.Rules, "pyhton")
	assert.NotEmpty(t, got)
	assert.Equal(t, "python", got[0])

	assert.Contains(t, s.Suggest(table.Rules, "tablaeu"), "tableau")
	assert.Empty(t, s.Suggest(table.Rules, "zzzzzzzz"))
	assert.Nil(t, s.Suggest(table.Rules, "  "))
}

func TestSuggester_DedupesCaseInsensitive(t *testing.T) {
	table := loadTestTable(t)
	s := NewSuggester()

	count := 0
	for _, item := range s.Suggest(table.Rules, "python") {
		if item == "python" || item == "Python" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSuggester_Max(t *testing.T) {
	table := loadTestTable(t)
	s := &Suggester{Threshold: 0, Max: 2}
	assert.Len(t, s.Suggest(table.Rules, "a"), 2)
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 1.0, LevenshteinRatio("", ""))
	assert.Equal(t, 1.0, LevenshteinRatio("SQL", "sql"))
	assert.InDelta(t, 1-1.0/3, LevenshteinRatio("sql", "sq"), 1e-9)
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0.0, LevenshteinRatio("abc", "xyz"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("python", "python"))
	assert.Greater(t, Similarity("python", "pyhton"), Similarity("python", "excel"))
}
