package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		min    float64
		max    float64
		mean   float64
		median float64
	}{
		{"odd", []float64{3, 1, 2}, 1, 3, 2, 2},
		{"even", []float64{4, 1, 3, 2}, 1, 4, 2.5, 2.5},
		{"single", []float64{7}, 7, 7, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, mean, median, err := CalculateStats(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
			assert.InDelta(t, tt.mean, mean, 1e-9)
			assert.InDelta(t, tt.median, median, 1e-9)
		})
	}
}

func TestCalculateStats_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, _, _, _, err := CalculateStats(values)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestCalculateStats_Empty(t *testing.T) {
	_, _, _, _, err := CalculateStats(nil)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	table, err := ParseRules(strings.NewReader(sampleCSV), "inline")
	require.NoError(t, err)

	s := Summarize(table)
	assert.Equal(t, 3, s.Rules)
	// python, excel, sql
	assert.Equal(t, 3, s.DistinctAntecedents)
	// sql, power bi, tableau
	assert.Equal(t, 3, s.DistinctConsequents)
	require.Len(t, s.Metrics, 3)
	assert.Equal(t, ColLift, s.Metrics[2].Name)
	assert.InDelta(t, 2.4, s.Metrics[2].Max, 1e-9)
	assert.InDelta(t, 1.2, s.Metrics[2].Min, 1e-9)
}

func TestSummarize_Nil(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Rules)
	assert.Empty(t, s.Metrics)
}

func TestInferColumnType(t *testing.T) {
	rows := [][]string{
		{"python", "1", "0.5", "2024-01-02", ""},
		{"sql", "2", "1", "2024-02-03", ""},
	}
	assert.Equal(t, "string", InferColumnType(rows, 0))
	assert.Equal(t, "int", InferColumnType(rows, 1))
	assert.Equal(t, "float", InferColumnType(rows, 2))
	assert.Equal(t, "date", InferColumnType(rows, 3))
	assert.Equal(t, "string", InferColumnType(rows, 4))
	assert.Equal(t, "string", InferColumnType(rows, 9))
}
