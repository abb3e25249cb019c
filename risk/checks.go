package risk

import "fmt"

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Decision is advisory: the journal records trades regardless, but shows
// the violations next to the form.
type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations"`

	PlannedRisk    float64 `json:"planned_risk"`
	PlannedRiskPct float64 `json:"planned_risk_pct"`
	PlannedRR      float64 `json:"planned_rr"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

func Evaluate(p Policy, intent TradeIntent, balance float64, day DayActivity) Decision {
	d := Decision{Allowed: true, Violations: []Violation{}}

	if intent.Stop == 0 || intent.Entry == 0 {
		d.add("NO_STOP_OR_ENTRY", "entry/stop must be set")
		return d
	}
	if intent.Size <= 0 {
		d.add("NO_SIZE", "position size must be positive")
		return d
	}

	d.PlannedRisk = PlannedRisk(intent.Size, intent.Entry, intent.Stop)
	d.PlannedRiskPct = RiskPct(d.PlannedRisk, balance)
	d.PlannedRR = PlannedRR(intent.Long, intent.Entry, intent.Stop, intent.TakeProfit)

	if p.MaxRiskPercent > 0 && d.PlannedRiskPct > p.MaxRiskPercent {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%", d.PlannedRiskPct, p.MaxRiskPercent))
	}
	if p.MinRR > 0 && intent.TakeProfit > 0 && d.PlannedRR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}
	if p.MaxTradesPerDay > 0 && day.Trades >= p.MaxTradesPerDay {
		d.add("TOO_MANY_TRADES",
			fmt.Sprintf("trades today %d >= max %d", day.Trades, p.MaxTradesPerDay))
	}

	// Circuit breaker
	if p.MaxDailyLossPercent > 0 && balance > 0 {
		limit := -p.MaxDailyLossPercent / 100 * balance
		if day.Realized <= limit {
			d.add("DAILY_LOSS_LIMIT", fmt.Sprintf("day realized %.2f <= limit %.2f", day.Realized, limit))
		}
	}

	return d
}
