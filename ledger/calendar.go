package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// CalendarMap maps a YYYY-MM-DD day to the summed PnL of trades entered
// that day. Days without trades have no key; a present key with value 0
// means the trades netted to zero.
type CalendarMap map[string]float64

// GroupByDate builds the CalendarMap. Time of day is discarded and trades
// without an entry date are skipped.
func GroupByDate(trades []journal.Trade) CalendarMap {
	cal := CalendarMap{}
	for _, t := range trades {
		if t.EntryDate.IsZero() {
			continue
		}
		cal[t.DateKey()] += finite(t.PnLNet)
	}
	return cal
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date    string  `json:"date"`
	Day     int     `json:"day"`
	PnL     float64 `json:"pnl"`
	HasData bool    `json:"has_data"`
}

// MonthCalendar lays cal out as one cell per day of the given month.
func MonthCalendar(cal CalendarMap, year int, month time.Month) []CalendarDay {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]CalendarDay, 0, days)
	for d := 1; d <= days; d++ {
		key := fmt.Sprintf("%04d-%02d-%02d", year, int(month), d)
		pnl, ok := cal[key]
		out = append(out, CalendarDay{Date: key, Day: d, PnL: pnl, HasData: ok})
	}
	return out
}
