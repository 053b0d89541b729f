package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"skillboard/internal/models"
)

// Summary is the dashboard overview of a rule table
type Summary struct {
	Rules               int
	DistinctAntecedents int
	DistinctConsequents int
	Metrics             []models.MetricStats
}

// Summarize computes rule counts and per-metric statistics
func Summarize(t *RuleTable) Summary {
	s := Summary{Rules: t.Len()}
	if t == nil {
		return s
	}

	antecedents := make(map[string]bool)
	consequents := make(map[string]bool)
	support := make([]float64, 0, len(t.Rules))
	confidence := make([]float64, 0, len(t.Rules))
	lift := make([]float64, 0, len(t.Rules))

	for _, r := range t.Rules {
		for _, item := range r.AntecedentItems() {
			antecedents[item] = true
		}
		for _, item := range r.ConsequentItems() {
			consequents[item] = true
		}
		support = append(support, r.Support)
		confidence = append(confidence, r.Confidence)
		lift = append(lift, r.Lift)
	}
	s.DistinctAntecedents = len(antecedents)
	s.DistinctConsequents = len(consequents)

	for _, m := range []struct {
		name   string
		values []float64
	}{
		{ColSupport, support},
		{ColConfidence, confidence},
		{ColLift, lift},
	} {
		min, max, mean, median, err := CalculateStats(m.values)
		if err != nil {
			continue
		}
		s.Metrics = append(s.Metrics, models.MetricStats{
			Name: m.name, Min: min, Max: max, Mean: mean, Median: median,
		})
	}
	return s
}

// CalculateStats computes basic stats for a numeric column
func CalculateStats(values []float64) (min, max, mean, median float64, err error) {
	if len(values) == 0 {
		return 0, 0, 0, 0, fmt.Errorf("no numeric values")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	min = sorted[0]
	max = sorted[len(sorted)-1]

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))

	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	} else {
		median = sorted[len(sorted)/2]
	}

	return
}

// InferColumnType guesses "int", "float", "date" or "string" from a sample of rows
func InferColumnType(rows [][]string, colIndex int) string {
	// Check a sample of rows
	sampleSize := 20
	if len(rows) < sampleSize {
		sampleSize = len(rows)
	}

	isInt := true
	isFloat := true
	isDate := true
	seen := 0

	for i := 0; i < sampleSize; i++ {
		if colIndex >= len(rows[i]) {
			continue
		}
		val := rows[i][colIndex]
		if val == "" {
			continue // Skip empties
		}
		seen++

		if _, err := strconv.Atoi(val); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			isFloat = false
		}
		if !isDateString(val) {
			isDate = false
		}
	}

	switch {
	case seen == 0:
		return "string"
	case isInt:
		return "int"
	case isFloat:
		return "float"
	case isDate:
		return "date"
	}
	return "string"
}

func isDateString(val string) bool {
	formats := []string{
		time.RFC3339,
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
		"2006/01/02",
	}
	for _, f := range formats {
		if _, err := time.Parse(f, val); err == nil {
			return true
		}
	}
	return false
}
