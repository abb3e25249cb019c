package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export every trade as CSV",
	Long: `Write all trades as CSV, in entry-date order.

Example:
  tradejournal export csv -o trades.csv`,
	Args: cobra.NoArgs,
	RunE: runExportCSV,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import trades into the journal",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Import trades from a CSV export",
	Long: `Create one trade per CSV row. Rows whose id already exists are skipped,
so importing the same export twice is harmless.

Example:
  tradejournal import csv trades.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.AddCommand(exportCSVCmd)
	importCmd.AddCommand(importCSVCmd)

	exportCSVCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	n, err := a.svc.ExportCSV(ctx, w)
	if err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Printf("✓ Exported %d trades to %s\n", n, exportOutput)
	}
	return nil
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.ImportCSV(ctx, f)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("✓ Imported %d trades (%d already present)\n", res.Created, res.Skipped)
	return nil
}
