package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (or creates) the journal database at path and applies
// the schema. Foreign keys are enforced on every pooled connection.
func NewSQLite(path string) (*SQLite, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// EnsureAccount returns the oldest account, creating the default one when
// the table is empty.
func (j *SQLite) EnsureAccount(ctx context.Context) (Account, error) {
	var a Account
	err := j.db.QueryRowContext(ctx, `
		SELECT id, name, currency, balance, risk_percent, created_at
		FROM accounts
		ORDER BY created_at ASC, id ASC
		LIMIT 1`).Scan(&a.ID, &a.Name, &a.Currency, &a.Balance, &a.RiskPercent, &a.CreatedAt)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("query account: %w", err)
	}

	a = DefaultAccount()
	a.ID = id.New()
	a.CreatedAt = time.Now().UTC()
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, currency, balance, risk_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Currency, a.Balance, a.RiskPercent, a.CreatedAt,
	)
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (j *SQLite) GetAccount(ctx context.Context, accountID string) (Account, error) {
	var a Account
	err := j.db.QueryRowContext(ctx, `
		SELECT id, name, currency, balance, risk_percent, created_at
		FROM accounts WHERE id = ?`, accountID).
		Scan(&a.ID, &a.Name, &a.Currency, &a.Balance, &a.RiskPercent, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
		}
		return Account{}, err
	}
	return a, nil
}

func (j *SQLite) UpdateAccount(ctx context.Context, a Account) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, currency = ?, balance = ?, risk_percent = ?
		WHERE id = ?`,
		a.Name, a.Currency, a.Balance, a.RiskPercent, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return expectOne(res, "account", a.ID)
}

// CreateTrade inserts t, assigning an ID and timestamps when missing.
func (j *SQLite) CreateTrade(ctx context.Context, t *Trade) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	conf, err := json.Marshal(NormalizeConfluences(t.Confluences))
	if err != nil {
		return err
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, account_id, symbol, direction, entry_price, exit_price, stop_loss, take_profit,
		 position_size, pnl_net, planned_rr, actual_rr, strategy_type, entry_model, session,
		 timeframe, mental_state, confluences, notes, screenshot_url, entry_date, status,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice,
		t.StopLoss, t.TakeProfit, t.PositionSize, t.PnLNet, t.PlannedRR, t.ActualRR,
		t.StrategyType, t.EntryModel, string(t.Session), string(t.Timeframe),
		string(t.MentalState), string(conf), t.Notes, t.ScreenshotURL,
		t.EntryDate.UTC(), string(StatusFor(t.PnLNet)), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", constraintErr(err, t))
	}
	return nil
}

// UpdateTrade overwrites every editable column of an existing trade.
func (j *SQLite) UpdateTrade(ctx context.Context, t *Trade) error {
	t.UpdatedAt = time.Now().UTC()
	conf, err := json.Marshal(NormalizeConfluences(t.Confluences))
	if err != nil {
		return err
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE trades SET
			account_id = ?, symbol = ?, direction = ?, entry_price = ?, exit_price = ?,
			stop_loss = ?, take_profit = ?, position_size = ?, pnl_net = ?, planned_rr = ?,
			actual_rr = ?, strategy_type = ?, entry_model = ?, session = ?, timeframe = ?,
			mental_state = ?, confluences = ?, notes = ?, screenshot_url = ?, entry_date = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		t.AccountID, t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice,
		t.StopLoss, t.TakeProfit, t.PositionSize, t.PnLNet, t.PlannedRR,
		t.ActualRR, t.StrategyType, t.EntryModel, string(t.Session), string(t.Timeframe),
		string(t.MentalState), string(conf), t.Notes, t.ScreenshotURL, t.EntryDate.UTC(),
		string(StatusFor(t.PnLNet)), t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update trade: %w", constraintErr(err, t))
	}
	return expectOne(res, "trade", t.ID)
}

func (j *SQLite) DeleteTrade(ctx context.Context, tradeID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	return expectOne(res, "trade", tradeID)
}

// constraintErr maps sqlite constraint failures onto the journal sentinels.
func constraintErr(err error, t *Trade) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("trade %q: %w", t.ID, ErrDuplicate)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("account %q: %w", t.AccountID, ErrNoAccount)
	}
	return err
}

func expectOne(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return nil
}
