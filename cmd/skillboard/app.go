package main

import (
	"context"
	"fmt"

	"skillboard/internal/analysis"
	"skillboard/internal/config"
	"skillboard/internal/llm"
	"skillboard/internal/logging"
	"skillboard/internal/service"
	"skillboard/internal/state"

	"go.uber.org/zap"
)

// app bundles the components shared by all subcommands
type app struct {
	config    *config.Config
	logger    *zap.Logger
	tables    *state.TableCache
	lister    llm.ModelLister
	resolver  *llm.Resolver
	assistant *service.Assistant
	closers   []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, logger: logger}

	loader, err := a.newLoader(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.tables = state.NewTableCache(loader)

	var lister llm.ModelLister
	var gen llm.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, llm.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		lister, gen = client, client
	} else {
		logger.Warn("GEMINI_API_KEY not set; assistant calls will fail",
			zap.String("model", cfg.FallbackModel))
	}

	a.lister = lister
	a.resolver = llm.NewResolver(lister, cfg.PreferredModel, cfg.FallbackModel)
	a.assistant = service.NewAssistant(gen, a.resolver, service.AssistantConfig{
		ContextRows: cfg.ContextRows,
		Timeout:     cfg.LLMTimeout,
	}, logger)

	return a, nil
}

// newLoader returns the Postgres loader when a database is configured, else the CSV loader
func (a *app) newLoader(ctx context.Context) (state.Loader, error) {
	if !a.config.UsesDatabase() {
		path := a.config.DataPath
		return func(ctx context.Context) (*analysis.RuleTable, error) {
			table, err := analysis.LoadRulesCSV(path)
			if err != nil {
				a.logger.Error("failed to load rule table", zap.String("path", path), zap.Error(err))
				return nil, err
			}
			a.logger.Info("rule table loaded", zap.String("source", table.Source), zap.Int("rules", table.Len()))
			return table, nil
		}, nil
	}

	src, err := service.ConnectPostgres(ctx, a.config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrDataNotFound, err)
	}
	a.closers = append(a.closers, src.Close)

	tableName := a.config.RulesTable
	return func(ctx context.Context) (*analysis.RuleTable, error) {
		table, err := src.LoadRules(ctx, tableName)
		if err != nil {
			a.logger.Error("failed to load rule table", zap.String("table", tableName), zap.Error(err))
			return nil, err
		}
		a.logger.Info("rule table loaded", zap.String("source", table.Source), zap.Int("rules", table.Len()))
		return table, nil
	}, nil
}

// Close releases database connections and flushes the logger
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
