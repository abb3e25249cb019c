package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// RiskAmount is the cash put at risk on one trade. riskPercent is in
// percent: 1 means 1% of balance.
func RiskAmount(balance, riskPercent float64) float64 {
	if balance <= 0 || riskPercent <= 0 || !finite(balance) || !finite(riskPercent) {
		return 0
	}
	return balance * riskPercent / 100
}

// PlannedRisk computes the absolute cash lost if the stop is hit.
func PlannedRisk(size, entry, stop float64) float64 {
	return size * abs(entry-stop)
}

// RR is the direction-agnostic reward/risk ratio of a bracket.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// PlannedRR is the direction-aware reward/risk of a bracket. A take profit
// on the wrong side of entry, or a non-finite ratio, yields 0.
func PlannedRR(long bool, entry, stop, takeProfit float64) float64 {
	if entry <= 0 || stop <= 0 || takeProfit <= 0 {
		return 0
	}
	var rr float64
	if long {
		rr = (takeProfit - entry) / (entry - stop)
	} else {
		rr = (entry - takeProfit) / (stop - entry)
	}
	if !finite(rr) || rr <= 0 {
		return 0
	}
	return rr
}

// RiskPct expresses a cash risk as a percentage of balance.
func RiskPct(plannedRisk, balance float64) float64 {
	if balance <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / balance * 100
}
