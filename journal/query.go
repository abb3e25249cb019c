package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const tradeColumns = `id, account_id, symbol, direction, entry_price, exit_price, stop_loss,
	take_profit, position_size, pnl_net, planned_rr, actual_rr, strategy_type, entry_model,
	session, timeframe, mental_state, confluences, notes, screenshot_url, entry_date, status,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (Trade, error) {
	var rec Trade
	var direction, session, timeframe, mental, status, conf string
	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Symbol,
		&direction,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.StopLoss,
		&rec.TakeProfit,
		&rec.PositionSize,
		&rec.PnLNet,
		&rec.PlannedRR,
		&rec.ActualRR,
		&rec.StrategyType,
		&rec.EntryModel,
		&session,
		&timeframe,
		&mental,
		&conf,
		&rec.Notes,
		&rec.ScreenshotURL,
		&rec.EntryDate,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Trade{}, err
	}
	rec.Direction = Direction(direction)
	rec.Session = Session(session)
	rec.Timeframe = Timeframe(timeframe)
	rec.MentalState = MentalState(mental)
	rec.Status = Status(status)
	rec.Confluences = []string{}
	if conf != "" {
		if err := json.Unmarshal([]byte(conf), &rec.Confluences); err != nil {
			return Trade{}, fmt.Errorf("decode confluences of %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (Trade, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, tradeID)
	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return Trade{}, err
	}
	return rec, nil
}

// ListTrades returns trades matching f, oldest entry date first.
func (j *SQLite) ListTrades(ctx context.Context, f TradeFilter) ([]Trade, error) {
	var (
		where []string
		args  []any
	)
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.Since.IsZero() {
		where = append(where, "entry_date >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		where = append(where, "entry_date < ?")
		args = append(args, f.Until.UTC())
	}
	if f.Strategy != "" {
		where = append(where, "strategy_type = ?")
		args = append(args, f.Strategy)
	}
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, strings.ToUpper(f.Symbol))
	}

	query := `SELECT ` + tradeColumns + ` FROM trades`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_date ASC, created_at ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Trade{}
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
