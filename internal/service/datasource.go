package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"skillboard/internal/analysis"

	"github.com/lib/pq"
)

// ErrTableNotAllowed is returned when the rules table is not in the public schema
var ErrTableNotAllowed = errors.New("table not found in public schema")

// PostgresSource loads the rule table from PostgreSQL
type PostgresSource struct {
	db *sql.DB
}

// ConnectPostgres opens and pings a PostgreSQL connection
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// NewPostgresSource wraps an existing connection
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Close releases the connection
func (p *PostgresSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// ListTables returns the tables of the public schema
func (p *PostgresSource) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// LoadRules reads the five rule columns of tableName into a rule table.
// tableName must be an existing public table.
func (p *PostgresSource) LoadRules(ctx context.Context, tableName string) (*analysis.RuleTable, error) {
	tables, err := p.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	allowed := false
	for _, t := range tables {
		if t == tableName {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s: %w", analysis.ErrDataNotFound, tableName, ErrTableNotAllowed)
	}

	query := fmt.Sprintf(
		"SELECT antecedents, consequents, support, confidence, lift FROM %s",
		pq.QuoteIdentifier(tableName))
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var antecedents, consequents string
		var support, confidence, lift float64
		if err := rows.Scan(&antecedents, &consequents, &support, &confidence, &lift); err != nil {
			return nil, fmt.Errorf("%w: %v", analysis.ErrInvalidTable, err)
		}
		records = append(records, []string{
			antecedents,
			consequents,
			strconv.FormatFloat(support, 'f', -1, 64),
			strconv.FormatFloat(confidence, 'f', -1, 64),
			strconv.FormatFloat(lift, 'f', -1, 64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	headers := append([]string(nil), analysis.RequiredColumns...)
	return analysis.BuildRuleTable(headers, records, "postgres:"+tableName)
}
