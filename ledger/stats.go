package ledger

import "github.com/rustyeddy/tradejournal/journal"

// AggregateStats are the headline figures of the journal.
type AggregateStats struct {
	TotalPnL float64 `json:"total_pnl"`
	WinRate  float64 `json:"win_rate"` // percent, 0..100
	Trades   int     `json:"trades"`
	AvgRR    float64 `json:"avg_rr"`

	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"` // positive magnitude
	ProfitFactor float64 `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"` // mean pnl per trade
}

// Aggregate computes AggregateStats. A trade wins when pnl_net > 0;
// non-finite PnL counts as 0. AvgRR averages actual_rr, falling back to
// planned_rr when actual_rr is absent, over trades whose value is finite.
func Aggregate(trades []journal.Trade) AggregateStats {
	var s AggregateStats
	s.Trades = len(trades)
	if s.Trades == 0 {
		return s
	}

	var rrSum float64
	var rrCount int
	for _, t := range trades {
		pnl := finite(t.PnLNet)
		s.TotalPnL += pnl
		if pnl > 0 {
			s.Wins++
			s.GrossProfit += pnl
		} else {
			s.Losses++
			s.GrossLoss -= pnl
		}

		rr := t.ActualRR
		if rr == 0 || !isFinite(rr) {
			rr = t.PlannedRR
		}
		if isFinite(rr) {
			rrSum += rr
			rrCount++
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	if rrCount > 0 {
		s.AvgRR = rrSum / float64(rrCount)
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	s.Expectancy = s.TotalPnL / float64(s.Trades)
	return s
}
