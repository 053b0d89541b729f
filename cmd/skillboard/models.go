package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models and show the one the assistant will use",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if a.lister != nil {
		names, err := a.lister.ListModels(cmd.Context())
		if err != nil {
			a.logger.Warn("failed to list models", zap.Error(err))
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
	}

	model := a.resolver.Model(cmd.Context())
	suffix := ""
	if a.resolver.IsFallback(model) {
		suffix = " (fallback)"
	}
	fmt.Fprintf(out, "Engine: %s%s\n", model, suffix)
	return nil
}
