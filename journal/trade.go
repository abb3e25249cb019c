package journal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// StatusFor derives the stored status from net PnL.
func StatusFor(pnl float64) Status {
	if pnl > 0 {
		return Win
	}
	return Loss
}

// Normalize cleans user input in place: upper-cased symbol, default
// direction, trimmed text, set-like confluences and a derived status.
func Normalize(t *Trade) {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Direction = Direction(strings.ToUpper(strings.TrimSpace(string(t.Direction))))
	if t.Direction == "" {
		t.Direction = Long
	}
	t.StrategyType = strings.TrimSpace(t.StrategyType)
	t.EntryModel = strings.TrimSpace(t.EntryModel)
	t.Session = Session(strings.ToUpper(strings.TrimSpace(string(t.Session))))
	t.Timeframe = Timeframe(strings.ToUpper(strings.TrimSpace(string(t.Timeframe))))
	t.MentalState = MentalState(strings.ToUpper(strings.TrimSpace(string(t.MentalState))))
	t.Confluences = NormalizeConfluences(t.Confluences)
	t.Status = StatusFor(t.PnLNet)
}

// NormalizeConfluences trims, drops empties and duplicates, and sorts so
// that two sets with the same members compare equal.
func NormalizeConfluences(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Validate reports the first problem with a normalized trade.
func (t Trade) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	}
	if t.Direction != Long && t.Direction != Short {
		return fmt.Errorf("%w: direction must be LONG or SHORT, got %q", ErrInvalidTrade, t.Direction)
	}
	if t.EntryDate.IsZero() {
		return fmt.Errorf("%w: entry_date is required", ErrInvalidTrade)
	}
	prices := []struct {
		name string
		v    float64
	}{
		{"entry_price", t.EntryPrice},
		{"exit_price", t.ExitPrice},
		{"stop_loss", t.StopLoss},
		{"take_profit", t.TakeProfit},
		{"position_size", t.PositionSize},
	}
	for _, p := range prices {
		if p.v < 0 || math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidTrade, p.name)
		}
	}
	if t.Session != "" && !contains(Sessions, t.Session) {
		return fmt.Errorf("%w: unknown session %q", ErrInvalidTrade, t.Session)
	}
	if t.Timeframe != "" && !contains(Timeframes, t.Timeframe) {
		return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidTrade, t.Timeframe)
	}
	if t.MentalState != "" && !contains(MentalStates, t.MentalState) {
		return fmt.Errorf("%w: unknown mental_state %q", ErrInvalidTrade, t.MentalState)
	}
	return nil
}

// DateKey is the calendar-day key of the entry date. Entry dates are
// stored as midnight UTC, so the key is taken in UTC whatever location
// the value was scanned into.
func (t Trade) DateKey() string {
	return t.EntryDate.UTC().Format(DateLayout)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day at
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD or RFC3339", s)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
