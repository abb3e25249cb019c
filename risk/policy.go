package risk

// Policy holds the trader's own rules. Percentages are in percent units.
// Zero disables a rule.
type Policy struct {
	MaxRiskPercent      float64 `json:"max_risk_percent" yaml:"max_risk_percent"`
	MinRR               float64 `json:"min_rr" yaml:"min_rr"`
	MaxDailyLossPercent float64 `json:"max_daily_loss_percent" yaml:"max_daily_loss_percent"`
	MaxTradesPerDay     int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`
}

// TradeIntent is a trade about to be journaled or taken.
type TradeIntent struct {
	Long       bool
	Size       float64
	Entry      float64
	Stop       float64
	TakeProfit float64
}

// DayActivity is what has already happened on the intent's day.
type DayActivity struct {
	Trades   int
	Realized float64
}

// DefaultPolicy mirrors a common 1%-risk, 1.5R-minimum rule set.
func DefaultPolicy() Policy {
	return Policy{
		MaxRiskPercent:      2,
		MinRR:               1.5,
		MaxDailyLossPercent: 3,
		MaxTradesPerDay:     5,
	}
}
