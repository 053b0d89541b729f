// Package main provides the skillboard command: the dashboard server and
// offline tools over the skill association rule table.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skillboard",
	Short: "Skill association dashboard and career roadmap assistant",
	Long: "skillboard serves a dashboard over mined skill association rules, " +
		"answers career questions through Gemini and exports the top rules as CSV or PDF.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
