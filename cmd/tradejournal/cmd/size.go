package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Calculate a risk-based position size",
	Long: `Size a trade so that hitting the stop loses the configured percent of
the balance, and check it against the risk policy and today's trades.

Example:
  tradejournal size --entry 1.0850 --stop 1.0830 --tp 1.0910`,
	Args: cobra.NoArgs,
	RunE: runSize,
}

var (
	sizeDirection string
	sizeEntry     float64
	sizeStop      float64
	sizeTP        float64
	sizeBalance   float64
	sizeRisk      float64
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().StringVar(&sizeDirection, "direction", "LONG", "LONG or SHORT")
	sizeCmd.Flags().Float64Var(&sizeEntry, "entry", 0, "entry price (required)")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop loss price (required)")
	sizeCmd.Flags().Float64Var(&sizeTP, "tp", 0, "take profit price")
	sizeCmd.Flags().Float64Var(&sizeBalance, "balance", 0, "balance (default: account balance)")
	sizeCmd.Flags().Float64Var(&sizeRisk, "risk", 0, "risk percent (default: account risk)")
	sizeCmd.MarkFlagRequired("entry")
	sizeCmd.MarkFlagRequired("stop")
}

func runSize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.PositionSize(ctx, service.SizeRequest{
		Direction:   journal.Direction(strings.ToUpper(sizeDirection)),
		EntryPrice:  sizeEntry,
		StopLoss:    sizeStop,
		TakeProfit:  sizeTP,
		Balance:     sizeBalance,
		RiskPercent: sizeRisk,
	})
	if err != nil {
		return err
	}
	printSize(os.Stdout, res)
	return nil
}

func printSize(w io.Writer, res service.SizeResult) {
	fmt.Fprintf(w, "Risk amount:   %.2f\n", res.RiskAmount)
	fmt.Fprintf(w, "Stop distance: %.5f\n", res.StopDistance)
	fmt.Fprintf(w, "Position size: %.4f\n", res.PositionSize)
	if res.PlannedRR > 0 {
		fmt.Fprintf(w, "Planned RR:    %.2f\n", res.PlannedRR)
	}
	if res.Decision.Allowed {
		fmt.Fprintln(w, "✓ Within risk policy")
		return
	}
	fmt.Fprintln(w, "✗ Risk policy violations:")
	for _, v := range res.Decision.Violations {
		fmt.Fprintf(w, "  - %s: %s\n", v.Code, v.Msg)
	}
}
