package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"skillboard/internal/api"
	"skillboard/internal/service"
	"skillboard/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long:  `Start an HTTP server with the dashboard views and the JSON API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.config
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Warm the cache; a missing table is served as the error view
	if _, err := a.tables.Get(ctx); err != nil {
		a.logger.Warn("starting without a rule table", zap.Error(err))
	}

	handler := api.NewHandler(a.tables, state.NewSessions(), a.assistant, a.resolver,
		service.NewExportService(), api.Options{
			PreviewRows:    cfg.PreviewRows,
			FilterLimit:    cfg.FilterLimit,
			ExportRows:     cfg.ExportRows,
			ChartTop:       cfg.ChartTop,
			AssistantRate:  cfg.AssistantRate,
			AssistantBurst: cfg.AssistantBurst,
		}, a.logger)

	srv := api.NewServer(handler, api.ServerConfig{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		SessionIdle:    cfg.SessionIdle,
	})

	a.logger.Info("skillboard ready",
		zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
		zap.String("model", a.resolver.Model(ctx)))

	return srv.Run(ctx)
}
