package ledger

import (
	"math"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

const (
	MinR = -5.0
	MaxR = 10.0
)

// RPoint is one cell of the R-multiple heatmap.
type RPoint struct {
	TradeID string    `json:"trade_id"`
	Symbol  string    `json:"symbol"`
	Date    time.Time `json:"date"`
	R       float64   `json:"r"`
}

// RealizedR is the risk multiple used by the heatmap and the simulation.
// A stored, non-zero actual_rr wins; otherwise the value is derived from
// prices and size. The result always lies in [MinR, MaxR].
func RealizedR(t journal.Trade) float64 {
	if t.ActualRR != 0 && !math.IsNaN(t.ActualRR) {
		return clampR(t.ActualRR)
	}
	return DeriveR(t)
}

// DeriveR recomputes the risk multiple from the trade itself, ignoring any
// stored actual_rr: pnl_net / (|entry - stop| * size), or 0 when nothing
// was at risk.
func DeriveR(t journal.Trade) float64 {
	risk := math.Abs(t.EntryPrice-t.StopLoss) * t.PositionSize
	if !(risk > 0) {
		return 0
	}
	return clampR(finite(t.PnLNet) / risk)
}

func clampR(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return 0
	case r < MinR:
		return MinR
	case r > MaxR:
		return MaxR
	}
	return r
}

// RSeries returns realized R values most recent first, at most limit of
// them (limit <= 0 means all). Trades sharing a date appear newest
// inserted first.
func RSeries(trades []journal.Trade, limit int) []RPoint {
	sorted := Chronological(trades)
	n := len(sorted)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]RPoint, 0, n)
	for i := len(sorted) - 1; i >= 0 && len(out) < n; i-- {
		t := sorted[i]
		out = append(out, RPoint{
			TradeID: t.ID,
			Symbol:  t.Symbol,
			Date:    t.EntryDate.UTC(),
			R:       RealizedR(t),
		})
	}
	return out
}
