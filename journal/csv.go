package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var CSVHeader = []string{
	"id", "account_id", "entry_date", "symbol", "direction",
	"entry_price", "exit_price", "stop_loss", "take_profit", "position_size",
	"pnl_net", "planned_rr", "actual_rr",
	"strategy_type", "entry_model", "session", "timeframe", "mental_state", "confluences",
	"notes", "screenshot_url", "status",
}

// WriteCSV writes the header followed by one row per trade.
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.AccountID,
			t.DateKey(),
			t.Symbol,
			string(t.Direction),
			f(t.EntryPrice),
			f(t.ExitPrice),
			f(t.StopLoss),
			f(t.TakeProfit),
			f(t.PositionSize),
			f(t.PnLNet),
			f(t.PlannedRR),
			f(t.ActualRR),
			t.StrategyType,
			t.EntryModel,
			string(t.Session),
			string(t.Timeframe),
			string(t.MentalState),
			strings.Join(t.Confluences, ";"),
			t.Notes,
			t.ScreenshotURL,
			string(StatusFor(t.PnLNet)),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses trades written by WriteCSV. Columns are matched by header
// name, so files with a subset or a different order of columns load too.
// Empty numeric cells read as 0. The status column is ignored and
// re-derived by Normalize.
func ReadCSV(r io.Reader) ([]Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Trade{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["entry_date"]; !ok {
		return nil, fmt.Errorf("csv: missing entry_date column")
	}

	out := []Trade{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		num := func(name string) (float64, error) {
			s := get(name)
			if s == "" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			return v, nil
		}

		var t Trade
		t.ID = get("id")
		t.AccountID = get("account_id")
		if t.EntryDate, err = ParseDate(get("entry_date")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Symbol = get("symbol")
		t.Direction = Direction(get("direction"))

		fields := []struct {
			name string
			dst  *float64
		}{
			{"entry_price", &t.EntryPrice},
			{"exit_price", &t.ExitPrice},
			{"stop_loss", &t.StopLoss},
			{"take_profit", &t.TakeProfit},
			{"position_size", &t.PositionSize},
			{"pnl_net", &t.PnLNet},
			{"planned_rr", &t.PlannedRR},
			{"actual_rr", &t.ActualRR},
		}
		for _, fl := range fields {
			if *fl.dst, err = num(fl.name); err != nil {
				return nil, err
			}
		}

		t.StrategyType = get("strategy_type")
		t.EntryModel = get("entry_model")
		t.Session = Session(get("session"))
		t.Timeframe = Timeframe(get("timeframe"))
		t.MentalState = MentalState(get("mental_state"))
		if c := get("confluences"); c != "" {
			t.Confluences = strings.Split(c, ";")
		}
		t.Notes = get("notes")
		t.ScreenshotURL = get("screenshot_url")

		Normalize(&t)
		out = append(out, t)
	}
	return out, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
