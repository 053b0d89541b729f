package main

import (
	"fmt"
	"io"
	"os"

	"skillboard/internal/service"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportRows   int
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the first rules of the table as CSV or PDF",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv or pdf")
	exportCmd.Flags().IntVarP(&exportRows, "rows", "n", service.DefaultExportRows, "Number of rows (1-50)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout for csv)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportFormat != "csv" && exportFormat != "pdf" {
		return fmt.Errorf("unknown format %q: use csv or pdf", exportFormat)
	}
	if exportFormat == "pdf" && exportOut == "" {
		return fmt.Errorf("--out is required for pdf export")
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

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	rows := service.ClampRows(exportRows)
	exporter := service.NewExportService()
	if exportFormat == "pdf" {
		err = exporter.WritePDF(w, table, rows)
	} else {
		err = exporter.WriteCSV(w, table, rows)
	}
	if err != nil {
		return err
	}

	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rules to %s\n", min(rows, table.Len()), exportOut)
	}
	return nil
}
