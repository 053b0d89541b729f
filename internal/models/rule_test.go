package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitItems(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"frozenset({'python'})", []string{"python"}},
		{"frozenset({'python', 'sql'})", []string{"python", "sql"}},
		{"['excel', \"power bi\"]", []string{"excel", "power bi"}},
		{"{docker, kubernetes}", []string{"docker", "kubernetes"}},
		{"java", []string{"java"}},
		{"  go ,  rust ", []string{"go", "rust"}},
		{"", []string{}},
		{"frozenset()", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitItems(tt.in))
		})
	}
}

func TestRuleItems(t *testing.T) {
	r := Rule{Antecedents: "frozenset({'python', 'sql'})", Consequents: "tableau"}
	assert.Equal(t, []string{"python", "sql"}, r.AntecedentItems())
	assert.Equal(t, []string{"tableau"}, r.ConsequentItems())
	assert.Equal(t, "python, sql", DisplaySet(r.Antecedents))
}

func TestParsePage(t *testing.T) {
	for _, p := range Pages {
		got, err := ParsePage(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePage("  Assistant ")
	require.NoError(t, err)
	assert.Equal(t, PageAssistant, got)

	_, err = ParsePage("settings")
	assert.True(t, errors.Is(err, ErrUnknownPage))
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Dashboard", PageDashboard.Title())
	assert.Equal(t, "AI Roadmap", PageAssistant.Title())
	assert.Equal(t, "other", Page("other").Title())
}
