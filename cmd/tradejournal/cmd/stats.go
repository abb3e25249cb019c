package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics and the strategy breakdown",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the daily PnL calendar of a month",
	Long: `Print one line per trading day of the month with its net PnL.

Example:
  tradejournal calendar --month 2024-05`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Replay the journal as a fixed-fractional account",
	Long: `Simulate the equity curve had every trade risked a fixed percent of a
compounding balance, next to the actual cumulative PnL.

Example:
  tradejournal sim --balance 10000 --risk 1`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an Org-mode summary report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var (
	calendarMonth string

	simBalance float64
	simRisk    float64

	reportTitle  string
	reportOutput string
	reportSim    bool
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(reportCmd)

	calendarCmd.Flags().StringVarP(&calendarMonth, "month", "m", "", "month as YYYY-MM (default: current)")

	simCmd.Flags().Float64Var(&simBalance, "balance", 0, "starting balance (default: account balance)")
	simCmd.Flags().Float64Var(&simRisk, "risk", 0, "risk percent per trade (default: account risk)")

	reportCmd.Flags().StringVarP(&reportTitle, "title", "t", "Trading Journal", "report heading")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default: stdout)")
	reportCmd.Flags().BoolVar(&reportSim, "sim", false, "include the simulation section")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, _, err := a.svc.Snapshot(ctx, service.SimOverrides{})
	if err != nil {
		return err
	}
	printStats(os.Stdout, snap)
	return nil
}

func printStats(w io.Writer, snap ledger.Snapshot) {
	s := snap.Stats
	fmt.Fprintf(w, "Trades:        %d (%d wins, %d losses)\n", s.Trades, s.Wins, s.Losses)
	fmt.Fprintf(w, "Net PnL:       %.2f\n", s.TotalPnL)
	fmt.Fprintf(w, "Win rate:      %.1f%%\n", s.WinRate)
	fmt.Fprintf(w, "Avg RR:        %.2f\n", s.AvgRR)
	fmt.Fprintf(w, "Profit factor: %.2f\n", s.ProfitFactor)
	fmt.Fprintf(w, "Expectancy:    %.2f\n", s.Expectancy)

	if len(snap.Strategies) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %7s %5s %8s %12s\n", "STRATEGY", "TRADES", "WINS", "WIN%", "PNL")
	for _, r := range snap.Strategies {
		fmt.Fprintf(w, "%-16s %7d %5d %7.1f%% %12.2f\n", r.Strategy, r.Trades, r.Wins, r.WinRate, r.PnL)
	}

	if len(snap.Heatmap) == 0 {
		return
	}
	fmt.Fprintln(w)
	var b strings.Builder
	for _, p := range snap.Heatmap {
		fmt.Fprintf(&b, "%+.1f ", p.R)
	}
	fmt.Fprintf(w, "Recent R:      %s\n", strings.TrimSpace(b.String()))
}

func runCalendar(cmd *cobra.Command, args []string) error {
	month := time.Now()
	if calendarMonth != "" {
		m, err := time.Parse("2006-01", calendarMonth)
		if err != nil {
			return fmt.Errorf("month: want YYYY-MM: %w", err)
		}
		month = m
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, _, err := a.svc.Snapshot(ctx, service.SimOverrides{})
	if err != nil {
		return err
	}
	printCalendar(os.Stdout, ledger.MonthCalendar(snap.Calendar, month.Year(), month.Month()))
	return nil
}

func printCalendar(w io.Writer, days []ledger.CalendarDay) {
	var total float64
	active := 0
	for _, d := range days {
		if !d.HasData {
			continue
		}
		active++
		total += d.PnL
		fmt.Fprintf(w, "%s  %10.2f\n", d.Date, d.PnL)
	}
	if active == 0 {
		fmt.Fprintln(w, "No trades this month.")
		return
	}
	fmt.Fprintf(w, "%d trading days, net %.2f\n", active, total)
}

// simFlagOverrides turns the sim flags that were given into overrides. An
// explicit --risk 0 is kept and shows the flat curve.
func simFlagOverrides(cmd *cobra.Command) service.SimOverrides {
	on := true
	o := service.SimOverrides{Enabled: &on}
	if cmd.Flags().Changed("balance") {
		b := simBalance
		o.StartingBalance = &b
	}
	if cmd.Flags().Changed("risk") {
		r := simRisk
		o.RiskPercent = &r
	}
	return o
}

func runSim(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, sim, err := a.svc.Snapshot(ctx, simFlagOverrides(cmd))
	if err != nil {
		return err
	}

	fmt.Printf("Starting balance %.2f, risking %.2f%% per trade\n\n", sim.StartingBalance, sim.RiskPercent)
	fmt.Printf("%-10s %14s %14s\n", "DATE", "ACTUAL", "SIMULATED")
	for _, p := range snap.Equity.Points {
		simPnL := 0.0
		if p.SimulatedCumulativePnL != nil {
			simPnL = *p.SimulatedCumulativePnL
		}
		fmt.Printf("%-10s %14.2f %14.2f\n", p.Date.Format("2006-01-02"), p.ActualCumulativePnL, simPnL)
	}
	fmt.Printf("\nFinal balance %.2f, max drawdown %.2f%%\n", snap.Equity.FinalBalance, snap.Equity.MaxDrawdownPct)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var w io.Writer = os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}

	o := service.SimOverrides{}
	if reportSim {
		o.Enabled = &reportSim
	}
	if err := a.svc.WriteReport(ctx, w, reportTitle, o); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if reportOutput != "" {
		fmt.Printf("✓ Report written to %s\n", reportOutput)
	}
	return nil
}
