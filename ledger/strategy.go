package ledger

import (
	"sort"
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
)

// UnknownStrategy keys trades recorded without a strategy.
const UnknownStrategy = "Unknown"

type StrategyStats struct {
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	PnL    float64 `json:"pnl"`
}

// WinRate is the percentage of winning trades, 0 when there are none.
func (s StrategyStats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades) * 100
}

type StrategyBreakdown map[string]StrategyStats

func GroupByStrategy(trades []journal.Trade) StrategyBreakdown {
	out := StrategyBreakdown{}
	for _, t := range trades {
		key := strings.TrimSpace(t.StrategyType)
		if key == "" {
			key = UnknownStrategy
		}
		s := out[key]
		pnl := finite(t.PnLNet)
		s.Trades++
		if pnl > 0 {
			s.Wins++
		}
		s.PnL += pnl
		out[key] = s
	}
	return out
}

type StrategyRow struct {
	Strategy string  `json:"strategy"`
	Trades   int     `json:"trades"`
	Wins     int     `json:"wins"`
	PnL      float64 `json:"pnl"`
	WinRate  float64 `json:"win_rate"`
}

// Sorted lists the breakdown by PnL descending, then by name.
func (b StrategyBreakdown) Sorted() []StrategyRow {
	rows := make([]StrategyRow, 0, len(b))
	for name, s := range b {
		rows = append(rows, StrategyRow{
			Strategy: name,
			Trades:   s.Trades,
			Wins:     s.Wins,
			PnL:      s.PnL,
			WinRate:  s.WinRate(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PnL != rows[j].PnL {
			return rows[i].PnL > rows[j].PnL
		}
		return rows[i].Strategy < rows[j].Strategy
	})
	return rows
}
