package risk

import "math"

// Inputs describe a planned entry for the sizing calculator.
type Inputs struct {
	Balance     float64
	RiskPercent float64 // 1 means 1%
	Long        bool
	EntryPrice  float64
	StopPrice   float64
	TakeProfit  float64
}

type Result struct {
	RiskAmount   float64 `json:"risk_amount"`
	StopDistance float64 `json:"stop_distance"`
	PositionSize float64 `json:"position_size"`
	PlannedRR    float64 `json:"planned_rr"`
}

// PositionSize returns the size that loses exactly the risk amount at the
// stop: riskAmount / |entry - stop|, or 0 when the distance is 0 or any
// input is not positive.
func PositionSize(balance, riskPercent, entry, stop float64) float64 {
	if entry <= 0 || stop <= 0 {
		return 0
	}
	dist := abs(entry - stop)
	amt := RiskAmount(balance, riskPercent)
	if dist == 0 || amt == 0 {
		return 0
	}
	size := amt / dist
	if !finite(size) {
		return 0
	}
	return size
}

// Round4 rounds a size to four decimals, the precision the journal shows.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

func Calculate(in Inputs) Result {
	return Result{
		RiskAmount:   RiskAmount(in.Balance, in.RiskPercent),
		StopDistance: abs(in.EntryPrice - in.StopPrice),
		PositionSize: Round4(PositionSize(in.Balance, in.RiskPercent, in.EntryPrice, in.StopPrice)),
		PlannedRR:    math.Round(PlannedRR(in.Long, in.EntryPrice, in.StopPrice, in.TakeProfit)*100) / 100,
	}
}
