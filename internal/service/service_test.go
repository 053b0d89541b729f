package service

import (
	"strings"
	"testing"

	"skillboard/internal/analysis"
	"skillboard/internal/models"

	"github.com/stretchr/testify/require"
)

const testCSV = `antecedents,consequents,support,confidence,lift
"frozenset({'python'})","frozenset({'sql'})",0.12,0.61,1.9
"frozenset({'excel'})","frozenset({'power bi'})",0.08,0.44,2.4
"frozenset({'python', 'sql'})","frozenset({'tableau'})",0.05,0.35,1.2
"frozenset({'Python', 'pandas'})","frozenset({'machine learning'})",0.04,0.52,3.1
"frozenset({'java'})","frozenset({'spring'})",0.03,0.7,2.4
`

func loadTestTable(t *testing.T) *analysis.RuleTable {
	t.Helper()
	table, err := analysis.ParseRules(strings.NewReader(testCSV), "test")
	require.NoError(t, err)
	return table
}

func manyRules(n int) []models.Rule {
	rules := make([]models.Rule, n)
	for i := range rules {
		rules[i] = models.Rule{
			Antecedents: "python",
			Consequents: "sql",
			Support:     float64(i) / 1000,
			Confidence:  0.5,
			Lift:        1 + float64(i)/10,
		}
	}
	return rules
}
