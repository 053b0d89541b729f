package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"skillboard/internal/models"
	"skillboard/internal/service"

	"github.com/spf13/cobra"
)

var (
	searchColumn string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Filter rules by a skill substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchColumn, "column", "antecedents", "Column to match: antecedents or consequents")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Maximum rows to print (0 for all)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	column, err := service.ParseColumn(searchColumn)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.tables.Get(cmd.Context())
	if err != nil {
		return err
	}

	query := args[0]
	rules := service.FilterRules(table.Rules, column, query, searchLimit)
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintf(out, "No rules match %q.\n", query)
		if s := service.NewSuggester().Suggest(table.Rules, query); len(s) > 0 {
			fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(s, ", "))
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ANTECEDENTS\tCONSEQUENTS\tSUPPORT\tCONFIDENCE\tLIFT")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n",
			models.DisplaySet(r.Antecedents), models.DisplaySet(r.Consequents),
			r.Support, r.Confidence, r.Lift)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d matching rules\n", len(rules), service.CountMatches(table.Rules, column, query))
	return nil
}
