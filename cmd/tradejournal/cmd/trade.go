package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Add, list, show and delete journaled trades",
	Long: `Manage the trades in the journal.

Subcommands:
  add    - Journal a new trade
  edit   - Change fields of a journaled trade
  list   - List trades, optionally for a day, strategy or symbol
  show   - Show one trade by ID
  delete - Delete one trade by ID

Examples:
  tradejournal trade add --symbol EURUSD --entry 1.0850 --stop 1.0830 --tp 1.0910 --pnl 60
  tradejournal trade add --like <trade-id> --symbol GBPUSD --pnl -25
  tradejournal trade edit <trade-id> --exit 1.0905 --pnl 55
  tradejournal trade list --day 2024-05-02
  tradejournal trade show <trade-id>`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Journal a new trade",
	Long: `Journal a trade. When entry and stop are given and --size is not, the
position size is calculated from the account balance and risk percent,
and the planned RR from the take profit.`,
	Args: cobra.NoArgs,
	RunE: runTradeAdd,
}

var tradeEditCmd = &cobra.Command{
	Use:   "edit <trade-id>",
	Short: "Change fields of a journaled trade",
	Long: `Load a trade into the form, apply the given flags and save it. Changing
entry, stop, take profit or direction recalculates the size and planned RR
unless --size or --rr is given too.`,
	Args: cobra.ExactArgs(1),
	RunE: runTradeEdit,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

// tradeFlags are the add and edit flags, in the order they are applied to the form.
var tradeFlags = []struct {
	name  string
	field dashboard.Field
	usage string
}{
	{"symbol", dashboard.FieldSymbol, "instrument, e.g. EURUSD (required)"},
	{"direction", dashboard.FieldDirection, "LONG or SHORT"},
	{"entry", dashboard.FieldEntryPrice, "entry price"},
	{"stop", dashboard.FieldStopLoss, "stop loss price"},
	{"tp", dashboard.FieldTakeProfit, "take profit price"},
	{"exit", dashboard.FieldExitPrice, "exit price"},
	{"size", dashboard.FieldPositionSize, "position size (default: risk-based)"},
	{"pnl", dashboard.FieldPnLNet, "net PnL"},
	{"rr", dashboard.FieldPlannedRR, "planned RR (default: from entry, stop and tp)"},
	{"strategy", dashboard.FieldStrategyType, "strategy type"},
	{"model", dashboard.FieldEntryModel, "entry model"},
	{"session", dashboard.FieldSession, "ASIA, LONDON, NEW_YORK or SYDNEY"},
	{"timeframe", dashboard.FieldTimeframe, "M1, M5, M15, H1, H4 or D1"},
	{"mental", dashboard.FieldMentalState, "CALM, CONFIDENT, ANXIOUS, FOMO, REVENGE or TIRED"},
	{"confluences", dashboard.FieldConfluences, "comma-separated confluences"},
	{"notes", dashboard.FieldNotes, "free-form notes"},
	{"date", dashboard.FieldEntryDate, "entry date YYYY-MM-DD (default: today)"},
}

var (
	tradeAddValues  = map[string]*string{}
	tradeEditValues = map[string]*string{}
	tradeScreenshot string
	tradeLike       string

	tradeListDay      string
	tradeListSince    string
	tradeListUntil    string
	tradeListStrategy string
	tradeListSymbol   string
	tradeListLimit    int
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)
	tradeCmd.AddCommand(tradeEditCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeShowCmd)
	tradeCmd.AddCommand(tradeDeleteCmd)

	addFormFlags(tradeAddCmd, tradeAddValues)
	addFormFlags(tradeEditCmd, tradeEditValues)
	tradeAddCmd.Flags().StringVar(&tradeScreenshot, "screenshot", "", "chart image to upload")
	tradeEditCmd.Flags().StringVar(&tradeScreenshot, "screenshot", "", "chart image to upload")
	tradeAddCmd.Flags().StringVar(&tradeLike, "like", "", "start from the direction, strategy, model, session, timeframe and date of this trade")
	tradeAddCmd.MarkFlagRequired("symbol")

	tradeListCmd.Flags().StringVar(&tradeListDay, "day", "", "only trades entered on YYYY-MM-DD")
	tradeListCmd.Flags().StringVar(&tradeListSince, "since", "", "first day, inclusive")
	tradeListCmd.Flags().StringVar(&tradeListUntil, "until", "", "last day, inclusive")
	tradeListCmd.Flags().StringVar(&tradeListStrategy, "strategy", "", "strategy type")
	tradeListCmd.Flags().StringVar(&tradeListSymbol, "symbol", "", "instrument")
	tradeListCmd.Flags().IntVar(&tradeListLimit, "limit", 0, "maximum number of trades")
}

func addFormFlags(cmd *cobra.Command, values map[string]*string) {
	for _, f := range tradeFlags {
		v := new(string)
		values[f.name] = v
		cmd.Flags().StringVar(v, f.name, "", f.usage)
	}
}

func flagValues(values map[string]*string) map[string]string {
	out := make(map[string]string, len(values))
	for name, v := range values {
		out[name] = *v
	}
	return out
}

// startForm returns the state a trade command fills in: the trade being
// edited, the carried-over setup of an earlier trade, or the blank form.
func startForm(st dashboard.State, edit, like *journal.Trade) dashboard.State {
	switch {
	case edit != nil:
		return st.BeginEdit(*edit)
	case like != nil:
		return st.BeginEdit(*like).ResetForm()
	}
	return st
}

// fillForm applies the set flags to the form in flag order, so the
// auto-calculated size and RR are in place before explicit overrides.
func fillForm(st dashboard.State, values map[string]string) (dashboard.State, error) {
	for _, f := range tradeFlags {
		v, ok := values[f.name]
		if !ok || v == "" {
			continue
		}
		var err error
		if st, err = st.SetField(f.field, v); err != nil {
			return st, err
		}
	}
	return st, nil
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var like *journal.Trade
	if tradeLike != "" {
		prev, err := a.svc.GetTrade(ctx, tradeLike)
		if err != nil {
			return fmt.Errorf("get trade %s: %w", tradeLike, err)
		}
		like = &prev
	}
	t, err := submitForm(ctx, a.svc, nil, like, flagValues(tradeAddValues))
	if err != nil {
		return err
	}
	created, err := a.svc.CreateTrade(ctx, t)
	if err != nil {
		return fmt.Errorf("create trade: %w", err)
	}

	fmt.Println(journal.FormatTradeOrg(created))
	return nil
}

func runTradeEdit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.svc.GetTrade(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	t, err := submitForm(ctx, a.svc, &existing, nil, flagValues(tradeEditValues))
	if err != nil {
		return err
	}
	updated, err := a.svc.UpdateTrade(ctx, existing.ID, t)
	if err != nil {
		return fmt.Errorf("update trade: %w", err)
	}

	fmt.Println(journal.FormatTradeOrg(updated))
	return nil
}

// submitForm runs the dashboard form for add and edit: start, apply the
// flags, attach the screenshot and submit.
func submitForm(ctx context.Context, svc *service.JournalService, edit, like *journal.Trade, values map[string]string) (journal.Trade, error) {
	st, err := svc.State(ctx, service.SimOverrides{})
	if err != nil {
		return journal.Trade{}, fmt.Errorf("load journal: %w", err)
	}
	st, err = fillForm(startForm(st, edit, like), values)
	if err != nil {
		return journal.Trade{}, err
	}
	if tradeScreenshot != "" {
		url, err := uploadFile(ctx, svc, tradeScreenshot)
		if err != nil {
			return journal.Trade{}, err
		}
		if st, err = st.SetField(dashboard.FieldScreenshotURL, url); err != nil {
			return journal.Trade{}, err
		}
	}
	t, err := st.Submit()
	if err != nil {
		return journal.Trade{}, fmt.Errorf("trade form: %w", err)
	}
	return t, nil
}

func uploadFile(ctx context.Context, svc *service.JournalService, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()
	return svc.UploadScreenshot(ctx, filepath.Base(path), f, "")
}

func listFilter() (journal.TradeFilter, error) {
	f := journal.TradeFilter{
		Strategy: strings.TrimSpace(tradeListStrategy),
		Symbol:   strings.TrimSpace(tradeListSymbol),
		Limit:    tradeListLimit,
	}
	if tradeListDay != "" {
		tradeListSince, tradeListUntil = tradeListDay, tradeListDay
	}
	if tradeListSince != "" {
		d, err := journal.ParseDate(tradeListSince)
		if err != nil {
			return f, err
		}
		f.Since = d
	}
	if tradeListUntil != "" {
		d, err := journal.ParseDate(tradeListUntil)
		if err != nil {
			return f, err
		}
		f.Until = d.AddDate(0, 0, 1)
	}
	return f, nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	f, err := listFilter()
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	trades, err := a.svc.ListTrades(context.Background(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Println("No trades.")
		return nil
	}
	fmt.Println(journal.FormatTradesOrg(trades))
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.svc.GetTrade(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Println(journal.FormatTradeOrg(t))
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.DeleteTrade(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Printf("✓ Deleted trade %s\n", args[0])
	return nil
}
