package ledger

import (
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// SimConfig configures the what-if overlay: every trade risks RiskPercent
// of the current simulated balance, compounding from StartingBalance.
type SimConfig struct {
	StartingBalance float64 `json:"starting_balance"`
	RiskPercent     float64 `json:"risk_percent"` // 1 means 1%
	Enabled         bool    `json:"enabled"`
}

type EquityPoint struct {
	Date                   time.Time `json:"date"`
	TradeID                string    `json:"trade_id"`
	ActualCumulativePnL    float64   `json:"actual_cumulative_pnl"`
	SimulatedCumulativePnL *float64  `json:"simulated_cumulative_pnl,omitempty"`
}

type EquityCurve struct {
	Points    []EquityPoint `json:"points"`
	Simulated bool          `json:"simulated"`

	// Only meaningful when Simulated is true.
	FinalBalance   float64 `json:"final_balance"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// SimulateEquityCurve walks trades in ascending entry-date order (stable,
// so same-day trades keep input order) and emits the actual cumulative PnL
// and, when enabled, the simulated cumulative PnL of a fixed-fractional
// account: risk = balance * pct/100, balance += risk * RealizedR.
func SimulateEquityCurve(trades []journal.Trade, cfg SimConfig) EquityCurve {
	start := finite(cfg.StartingBalance)
	pct := finite(cfg.RiskPercent)

	curve := EquityCurve{
		Points:       make([]EquityPoint, 0, len(trades)),
		Simulated:    cfg.Enabled,
		FinalBalance: start,
	}

	balance := start
	peak := start
	var running float64
	for _, t := range Chronological(trades) {
		running += finite(t.PnLNet)

		r := RealizedR(t)
		risk := balance * (pct / 100)
		balance = finite(balance + risk*r)

		p := EquityPoint{
			Date:                t.EntryDate.UTC(),
			TradeID:             t.ID,
			ActualCumulativePnL: running,
		}
		if cfg.Enabled {
			sim := balance - start
			p.SimulatedCumulativePnL = &sim

			if balance > peak {
				peak = balance
			}
			if peak > 0 {
				if dd := (peak - balance) / peak * 100; dd > curve.MaxDrawdownPct {
					curve.MaxDrawdownPct = dd
				}
			}
		}
		curve.Points = append(curve.Points, p)
	}

	if cfg.Enabled {
		curve.FinalBalance = balance
	}
	return curve
}
