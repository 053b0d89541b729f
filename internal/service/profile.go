package service

import (
	"math"

	"skillboard/internal/analysis"
	"skillboard/internal/models"
)

// ProfileTable computes data quality metrics for every column of the table
func ProfileTable(t *analysis.RuleTable) []models.ColumnProfile {
	if t == nil {
		return nil
	}
	profiles := make([]models.ColumnProfile, 0, len(t.Headers))
	for i := range t.Headers {
		profiles = append(profiles, ProfileColumn(t, i))
	}
	return profiles
}

// ProfileColumn analyzes quality metrics for a single column
func ProfileColumn(t *analysis.RuleTable, colIdx int) models.ColumnProfile {
	profile := models.ColumnProfile{
		Column: t.Headers[colIdx],
	}

	uniqueValues := make(map[string]int)
	for _, row := range t.Rows {
		if colIdx >= len(row) || isNullValue(row[colIdx]) {
			profile.NullCount++
			continue
		}
		uniqueValues[row[colIdx]]++
	}
	profile.DistinctCount = len(uniqueValues)
	profile.Entropy = entropy(uniqueValues)

	colType := analysis.InferColumnType(t.Rows, colIdx)
	profile.Numeric = colType == "int" || colType == "float"
	return profile
}

func entropy(counts map[string]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	e := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}

func isNullValue(v string) bool {
	switch v {
	case "", "null", "NULL", "None", "nan", "NaN":
		return true
	}
	return false
}
