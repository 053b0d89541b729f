package service

import (
	"strings"
	"testing"

	"skillboard/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileTable(t *testing.T) {
	input := "antecedents,consequents,support,confidence,lift,note\n" +
		"python,sql,0.1,0.5,1.5,\n" +
		"python,excel,0.2,0.5,2.5,None\n" +
		"java,sql,0.3,0.5,1.5,x\n"
	table, err := analysis.ParseRules(strings.NewReader(input), "inline")
	require.NoError(t, err)

	profiles := ProfileTable(table)
	require.Len(t, profiles, 6)

	assert.Equal(t, "antecedents", profiles[0].Column)
	assert.Equal(t, 2, profiles[0].DistinctCount)
	assert.False(t, profiles[0].Numeric)
	assert.Greater(t, profiles[0].Entropy, 0.0)

	assert.True(t, profiles[2].Numeric)
	assert.Equal(t, 3, profiles[2].DistinctCount)

	// a single repeated value carries no information
	assert.Equal(t, 1, profiles[3].DistinctCount)
	assert.Equal(t, 0.0, profiles[3].Entropy)

	assert.Equal(t, 2, profiles[5].NullCount)
	assert.Equal(t, 1, profiles[5].DistinctCount)
}

func TestProfileTable_Nil(t *testing.T) {
	assert.Nil(t, ProfileTable(nil))
}
