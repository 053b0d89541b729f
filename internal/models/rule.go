package models

import (
	"strings"
)

// Rule is one precomputed association rule: holding the antecedent skills
// correlates with holding the consequent skills.
type Rule struct {
	Antecedents string  `json:"antecedents"`
	Consequents string  `json:"consequents"`
	Support     float64 `json:"support"`
	Confidence  float64 `json:"confidence"`
	Lift        float64 `json:"lift"`
}

// AntecedentItems returns the antecedent skill set as individual items
func (r Rule) AntecedentItems() []string {
	return SplitItems(r.Antecedents)
}

// ConsequentItems returns the consequent skill set as individual items
func (r Rule) ConsequentItems() []string {
	return SplitItems(r.Consequents)
}

// SplitItems normalizes a skill-set cell into its items.
// Accepts frozenset literals (frozenset({'a', 'b'})), bracketed lists
// (['a', 'b'] or {a, b}) and plain comma separated text.
func SplitItems(cell string) []string {
	s := strings.TrimSpace(cell)
	if strings.HasPrefix(s, "frozenset(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "frozenset("), ")")
		s = strings.TrimSpace(s)
	}
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	items := []string{}
	for _, part := range strings.Split(s, ",") {
		item := strings.Trim(strings.TrimSpace(part), `'"`)
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DisplaySet renders a skill-set cell as "a, b"
func DisplaySet(cell string) string {
	return strings.Join(SplitItems(cell), ", ")
}
