package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `antecedents,consequents,support,confidence,lift
"frozenset({'python'})","frozenset({'sql'})",0.12,0.61,1.9
"frozenset({'excel'})","frozenset({'power bi'})",0.08,0.44,2.4
"frozenset({'java'})","frozenset({'spring'})",0.03,0.7,2.4
`

// setup writes a rule file and config into a temp dir and isolates the environment
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dataPath := filepath.Join(dir, "rules.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(testCSV), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "data_path: " + dataPath + "\nlog_level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	for _, key := range []string{"GEMINI_API_KEY", "DATABASE_URL", "SKILLBOARD_DATA_PATH", "PORT"} {
		t.Setenv(key, "")
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	// Flag variables outlive a single Execute
	exportFormat, exportRows, exportOut = "csv", 25, ""
	searchColumn, searchLimit = "antecedents", 20
	err := rootCmd.Execute()
	return out.String(), err
}

func TestModelsWithoutKey(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "models", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Engine: models/gemini-1.5-flash (fallback)\n", out)
}

func TestSearch(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "search", "PYTHON", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "python")
	assert.Contains(t, out, "1 of 1 matching rules")

	out, err = execute(t, "search", "pythn", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No rules match")
	assert.Contains(t, out, "Did you mean: python")

	_, err = execute(t, "search", "x", "--column", "lift", "--config", cfg)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "export", "--rows", "2", "--config", cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "antecedents,consequents,support,confidence,lift", lines[0])
}

func TestExportPDF(t *testing.T) {
	cfg := setup(t)
	outPath := filepath.Join(t.TempDir(), "rules.pdf")

	_, err := execute(t, "export", "--format", "pdf", "--out", outPath, "--config", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = execute(t, "export", "--format", "pdf", "--config", cfg)
	assert.Error(t, err)
}

func TestMissingDataFile(t *testing.T) {
	cfg := setup(t)
	t.Setenv("SKILLBOARD_DATA_PATH", filepath.Join(t.TempDir(), "missing.csv"))

	_, err := execute(t, "search", "python", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")
}
