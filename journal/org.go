package journal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; the notes become the Review section.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** %s %s %s (%s)", t.DateKey(), t.Symbol, t.Direction, id.Short(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":ENTRY_DATE: %s\n", t.DateKey()))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %s\n", f(t.EntryPrice)))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %s\n", f(t.ExitPrice)))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %s\n", f(t.StopLoss)))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %s\n", f(t.TakeProfit)))
	b.WriteString(fmt.Sprintf(":POSITION_SIZE: %s\n", f(t.PositionSize)))
	b.WriteString(fmt.Sprintf(":PNL_NET: %.2f\n", t.PnLNet))
	b.WriteString(fmt.Sprintf(":PLANNED_RR: %.2f\n", t.PlannedRR))
	b.WriteString(fmt.Sprintf(":ACTUAL_RR: %.2f\n", t.ActualRR))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", StatusFor(t.PnLNet)))
	if t.StrategyType != "" {
		b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", t.StrategyType))
	}
	if t.EntryModel != "" {
		b.WriteString(fmt.Sprintf(":ENTRY_MODEL: %s\n", t.EntryModel))
	}
	if t.Session != "" {
		b.WriteString(fmt.Sprintf(":SESSION: %s\n", t.Session))
	}
	if t.Timeframe != "" {
		b.WriteString(fmt.Sprintf(":TIMEFRAME: %s\n", t.Timeframe))
	}
	if t.MentalState != "" {
		b.WriteString(fmt.Sprintf(":MENTAL_STATE: %s\n", t.MentalState))
	}
	if len(t.Confluences) > 0 {
		b.WriteString(fmt.Sprintf(":CONFLUENCES: %s\n", strings.Join(t.Confluences, ", ")))
	}
	b.WriteString(":END:\n")

	if t.ScreenshotURL != "" {
		b.WriteString(fmt.Sprintf("\n[[%s][screenshot]]\n", t.ScreenshotURL))
	}
	b.WriteString("\n*** Review\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		b.WriteString(notes)
		b.WriteString("\n")
	} else {
		b.WriteString("- \n")
	}

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}
