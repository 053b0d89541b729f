package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillboard/internal/analysis"
	"skillboard/internal/llm"
	"skillboard/internal/models"

	"go.uber.org/zap"
)

// BillingHint is shown next to every failed remote call
const BillingHint = "Check if your API key is valid and billing is active on Google Cloud."

// ErrEmptyQuery is returned when the assistant receives a blank question
var ErrEmptyQuery = errors.New("query is empty")

// RemoteCallError wraps a failed call to the language model
type RemoteCallError struct {
	Model string
	Err   error
	Hint  string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("sync issue with %s: %v", e.Model, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// Answer is a successful assistant reply
type Answer struct {
	Text    string
	Model   string
	Prompt  string
	Context []models.Rule
}

// AssistantConfig tunes the assistant
type AssistantConfig struct {
	ContextRows int
	Timeout     time.Duration
}

// Assistant enriches questions with matching rules and forwards them to the model
type Assistant struct {
	generator llm.Generator
	resolver  *llm.Resolver
	config    AssistantConfig
	logger    *zap.Logger
}

// NewAssistant creates an assistant
func NewAssistant(gen llm.Generator, resolver *llm.Resolver, cfg AssistantConfig, logger *zap.Logger) *Assistant {
	if cfg.ContextRows <= 0 {
		cfg.ContextRows = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		generator: gen,
		resolver:  resolver,
		config:    cfg,
		logger:    logger,
	}
}

// MatchingRows finds the rules relevant to a question: antecedent matches
// first, then consequent matches when no antecedent matched.
func (a *Assistant) MatchingRows(table *analysis.RuleTable, query string) []models.Rule {
	if table == nil {
		return nil
	}
	rows := FilterRules(table.Rules, ColumnAntecedents, query, a.config.ContextRows)
	if len(rows) == 0 {
		rows = FilterRules(table.Rules, ColumnConsequents, query, a.config.ContextRows)
	}
	return rows
}

// Ask answers a career question using the rule table as context
func (a *Assistant) Ask(ctx context.Context, table *analysis.RuleTable, query string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	rows := a.MatchingRows(table, query)
	prompt := BuildAssistantPrompt(query, rows)
	model := a.resolver.Model(ctx)

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	if a.generator == nil {
		return nil, &RemoteCallError{Model: model, Err: errors.New("language model is not configured"), Hint: BillingHint}
	}
	text, err := a.generator.Generate(ctx, model, prompt)
	if err != nil {
		a.logger.Warn("assistant call failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, &RemoteCallError{Model: model, Err: err, Hint: BillingHint}
	}

	a.logger.Info("assistant answered",
		zap.String("model", model),
		zap.Int("context_rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))

	return &Answer{
		Text:    text,
		Model:   model,
		Prompt:  prompt,
		Context: rows,
	}, nil
}
