package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"skillboard/internal/models"
)

// Column selects which side of a rule a filter matches against
type Column string

// Filterable columns
const (
	ColumnAntecedents Column = "antecedents"
	ColumnConsequents Column = "consequents"
)

// ErrUnknownColumn is returned for filter columns other than antecedents/consequents
var ErrUnknownColumn = errors.New("unknown filter column")

// ParseColumn converts a query parameter to a Column; empty means antecedents
func ParseColumn(name string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(ColumnAntecedents):
		return ColumnAntecedents, nil
	case string(ColumnConsequents):
		return ColumnConsequents, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

func (c Column) value(r models.Rule) string {
	if c == ColumnConsequents {
		return r.Consequents
	}
	return r.Antecedents
}

// FilterRules returns the rules whose column contains query, case-insensitively,
// in table order and capped at limit (limit <= 0 means no cap).
func FilterRules(rules []models.Rule, column Column, query string, limit int) []models.Rule {
	needle := strings.ToLower(strings.TrimSpace(query))
	matches := []models.Rule{}
	for _, r := range rules {
		if limit > 0 && len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(column.value(r)), needle) {
			matches = append(matches, r)
		}
	}
	return matches
}

// CountMatches returns how many rules FilterRules would match without a cap
func CountMatches(rules []models.Rule, column Column, query string) int {
	needle := strings.ToLower(strings.TrimSpace(query))
	n := 0
	for _, r := range rules {
		if strings.Contains(strings.ToLower(column.value(r)), needle) {
			n++
		}
	}
	return n
}

// TopByLift returns the n rules with the highest lift, ties in table order
func TopByLift(rules []models.Rule, n int) []models.Rule {
	sorted := make([]models.Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Lift > sorted[j].Lift
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// LiftChart converts rules to chart points labelled "antecedents → consequents"
func LiftChart(rules []models.Rule) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(rules))
	for _, r := range rules {
		points = append(points, models.ChartPoint{
			Label: models.DisplaySet(r.Antecedents) + " → " + models.DisplaySet(r.Consequents),
			Lift:  r.Lift,
		})
	}
	return points
}
