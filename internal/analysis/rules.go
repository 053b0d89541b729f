package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"skillboard/internal/models"
)

// Required rule table columns, in canonical order
const (
	ColAntecedents = "antecedents"
	ColConsequents = "consequents"
	ColSupport     = "support"
	ColConfidence  = "confidence"
	ColLift        = "lift"
)

// RequiredColumns is the canonical header of a rule table
var RequiredColumns = []string{ColAntecedents, ColConsequents, ColSupport, ColConfidence, ColLift}

var (
	// ErrDataNotFound means the rule source does not exist
	ErrDataNotFound = errors.New("data file not found")
	// ErrInvalidTable means the source exists but is not a usable rule table
	ErrInvalidTable = errors.New("invalid rule table")
)

// MissingColumnsError lists required columns absent from the header
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrInvalidTable }

// RowError reports a cell that could not be parsed
type RowError struct {
	Line   int
	Column string
	Value  string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: column %s: invalid number %q", e.Line, e.Column, e.Value)
}

func (e *RowError) Unwrap() error { return ErrInvalidTable }

// RuleTable is the loaded, read-only association rule table
type RuleTable struct {
	Headers  []string
	Rows     [][]string
	Rules    []models.Rule
	Source   string
	LoadedAt time.Time
}

// Len returns the number of rules
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rules)
}

// Head returns the first n rules (all of them when n <= 0 or n > Len)
func (t *RuleTable) Head(n int) []models.Rule {
	if t == nil {
		return nil
	}
	if n <= 0 || n > len(t.Rules) {
		n = len(t.Rules)
	}
	return t.Rules[:n]
}

// LoadRulesCSV reads a rule table from a CSV file
func LoadRulesCSV(path string) (*RuleTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	headers, rows, err := readCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return BuildRuleTable(headers, rows, path)
}

// ParseRules reads a rule table from any CSV stream
func ParseRules(r io.Reader, source string) (*RuleTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	headers, rows, err := readCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return BuildRuleTable(headers, rows, source)
}

func newReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func readCSV(rs io.ReadSeeker) ([]string, [][]string, error) {
	reader := newReader(rs, ',')
	headers, err := reader.Read()
	if err == nil && len(headers) == 1 && strings.Contains(headers[0], ";") {
		err = errors.New("single column header")
	}
	if err != nil {
		// Try with semicolon separator
		if _, serr := rs.Seek(0, io.SeekStart); serr != nil {
			return nil, nil, serr
		}
		reader = newReader(rs, ';')
		headers, err = reader.Read()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to read headers: %v", ErrInvalidTable, err)
		}
	}

	// Excel and utf-8-sig exports start with a byte order mark
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}

// BuildRuleTable validates the header and converts raw rows to rules
func BuildRuleTable(headers []string, rows [][]string, source string) (*RuleTable, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	rules := make([]models.Rule, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // header is line 1
		cell := func(col string) (string, error) {
			idx := index[col]
			if idx >= len(row) {
				return "", &RowError{Line: line, Column: col}
			}
			return strings.TrimSpace(row[idx]), nil
		}
		number := func(col string) (float64, error) {
			v, err := cell(col)
			if err != nil {
				return 0, err
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return 0, &RowError{Line: line, Column: col, Value: v}
			}
			return f, nil
		}

		var rule models.Rule
		var err error
		if rule.Antecedents, err = cell(ColAntecedents); err != nil {
			return nil, err
		}
		if rule.Consequents, err = cell(ColConsequents); err != nil {
			return nil, err
		}
		if rule.Support, err = number(ColSupport); err != nil {
			return nil, err
		}
		if rule.Confidence, err = number(ColConfidence); err != nil {
			return nil, err
		}
		if rule.Lift, err = number(ColLift); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return &RuleTable{
		Headers:  headers,
		Rows:     rows,
		Rules:    rules,
		Source:   source,
		LoadedAt: time.Now(),
	}, nil
}
