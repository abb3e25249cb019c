// Package ledger derives statistics from a trade collection: aggregate
// performance, a PnL calendar, a per-strategy breakdown, the R-multiple
// series behind the heatmap and a fixed-fractional equity simulation.
//
// Every function is pure and total. Degenerate input (no trades, zero or
// missing fields, non-finite arithmetic) yields zero or clamped values,
// never an error. Nothing is cached; callers derive again whenever the
// trade collection changes.
package ledger

import (
	"math"
	"sort"

	"github.com/rustyeddy/tradejournal/journal"
)

// HeatmapSize is how many recent R values the dashboard heatmap shows.
const HeatmapSize = 50

// Snapshot is everything the dashboard shows, derived in one pass.
type Snapshot struct {
	Stats      AggregateStats `json:"stats"`
	Calendar   CalendarMap    `json:"calendar"`
	Strategies []StrategyRow  `json:"strategies"`
	Heatmap    []RPoint       `json:"heatmap"`
	Equity     EquityCurve    `json:"equity"`
}

// Derive runs the whole engine over trades.
func Derive(trades []journal.Trade, sim SimConfig) Snapshot {
	return Snapshot{
		Stats:      Aggregate(trades),
		Calendar:   GroupByDate(trades),
		Strategies: GroupByStrategy(trades).Sorted(),
		Heatmap:    RSeries(trades, HeatmapSize),
		Equity:     SimulateEquityCurve(trades, sim),
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// finite maps NaN and ±Inf to 0.
func finite(x float64) float64 {
	if isFinite(x) {
		return x
	}
	return 0
}

// Chronological returns a copy of trades sorted by entry date ascending.
// The sort is stable: trades on the same date keep their input order.
func Chronological(trades []journal.Trade) []journal.Trade {
	out := make([]journal.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out
}
