package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

// Store implements journal.Store using PostgreSQL.
type Store struct {
	pool *Pool
}

var _ journal.Store = (*Store)(nil)

// NewStore creates a Store backed by the given pool. Call Pool.Migrate
// first on a fresh database.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Open connects, migrates and returns a ready Store.
func Open(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	pool, err := NewPool(ctx, dsn, maxConns)
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const accountCols = `id, name, currency, balance, risk_percent, created_at`

func scanAccount(row pgx.Row) (journal.Account, error) {
	var a journal.Account
	err := row.Scan(&a.ID, &a.Name, &a.Currency, &a.Balance, &a.RiskPercent, &a.CreatedAt)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}

// EnsureAccount returns the oldest account, creating the default one when
// none exists.
func (s *Store) EnsureAccount(ctx context.Context) (journal.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts ORDER BY created_at ASC, id ASC LIMIT 1`))
	if err == nil {
		return a, nil
	}
	if !isNotFoundError(err) {
		return journal.Account{}, fmt.Errorf("postgres: query account: %w", err)
	}

	a = journal.DefaultAccount()
	a.ID = id.New()
	a.CreatedAt = time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, currency, balance, risk_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Name, a.Currency, a.Balance, a.RiskPercent, a.CreatedAt,
	)
	if err != nil {
		return journal.Account{}, fmt.Errorf("postgres: insert account: %w", err)
	}
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (journal.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, accountID))
	if err != nil {
		if isNotFoundError(err) {
			return journal.Account{}, fmt.Errorf("account %q: %w", accountID, journal.ErrNotFound)
		}
		return journal.Account{}, fmt.Errorf("postgres: get account: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a journal.Account) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET name = $1, currency = $2, balance = $3, risk_percent = $4
		WHERE id = $5`,
		a.Name, a.Currency, a.Balance, a.RiskPercent, a.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %q: %w", a.ID, journal.ErrNotFound)
	}
	return nil
}

const tradeCols = `id, account_id, symbol, direction, entry_price, exit_price, stop_loss,
	take_profit, position_size, pnl_net, planned_rr, actual_rr, strategy_type, entry_model,
	session, timeframe, mental_state, confluences, notes, screenshot_url, entry_date, status,
	created_at, updated_at`

func scanTrade(row pgx.Row) (journal.Trade, error) {
	var t journal.Trade
	var direction, session, timeframe, mental, status string
	err := row.Scan(
		&t.ID, &t.AccountID, &t.Symbol, &direction,
		&t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TakeProfit, &t.PositionSize,
		&t.PnLNet, &t.PlannedRR, &t.ActualRR,
		&t.StrategyType, &t.EntryModel, &session, &timeframe, &mental, &t.Confluences,
		&t.Notes, &t.ScreenshotURL, &t.EntryDate, &status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return journal.Trade{}, err
	}
	t.Direction = journal.Direction(direction)
	t.Session = journal.Session(session)
	t.Timeframe = journal.Timeframe(timeframe)
	t.MentalState = journal.MentalState(mental)
	t.Status = journal.Status(status)
	// pgx scans timestamptz into time.Local.
	t.EntryDate = t.EntryDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.Confluences == nil {
		t.Confluences = []string{}
	}
	return t, nil
}

func tradeErr(err error, t *journal.Trade) error {
	switch {
	case isDuplicateKeyError(err):
		return fmt.Errorf("trade %q: %w", t.ID, journal.ErrDuplicate)
	case isForeignKeyError(err):
		return fmt.Errorf("account %q: %w", t.AccountID, journal.ErrNoAccount)
	}
	return err
}

// CreateTrade inserts t, assigning an ID and timestamps when missing.
func (s *Store) CreateTrade(ctx context.Context, t *journal.Trade) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trades (`+tradeCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24)`,
		t.ID, t.AccountID, t.Symbol, string(t.Direction),
		t.EntryPrice, t.ExitPrice, t.StopLoss, t.TakeProfit, t.PositionSize,
		t.PnLNet, t.PlannedRR, t.ActualRR,
		t.StrategyType, t.EntryModel, string(t.Session), string(t.Timeframe),
		string(t.MentalState), journal.NormalizeConfluences(t.Confluences),
		t.Notes, t.ScreenshotURL, t.EntryDate.UTC(), string(journal.StatusFor(t.PnLNet)),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert trade: %w", tradeErr(err, t))
	}
	return nil
}

func (s *Store) UpdateTrade(ctx context.Context, t *journal.Trade) error {
	t.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE trades SET
			account_id = $1, symbol = $2, direction = $3, entry_price = $4, exit_price = $5,
			stop_loss = $6, take_profit = $7, position_size = $8, pnl_net = $9, planned_rr = $10,
			actual_rr = $11, strategy_type = $12, entry_model = $13, session = $14,
			timeframe = $15, mental_state = $16, confluences = $17, notes = $18,
			screenshot_url = $19, entry_date = $20, status = $21, updated_at = $22
		WHERE id = $23`,
		t.AccountID, t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice,
		t.StopLoss, t.TakeProfit, t.PositionSize, t.PnLNet, t.PlannedRR,
		t.ActualRR, t.StrategyType, t.EntryModel, string(t.Session),
		string(t.Timeframe), string(t.MentalState), journal.NormalizeConfluences(t.Confluences), t.Notes,
		t.ScreenshotURL, t.EntryDate.UTC(), string(journal.StatusFor(t.PnLNet)), t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update trade: %w", tradeErr(err, t))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %q: %w", t.ID, journal.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTrade(ctx context.Context, tradeID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE id = $1`, tradeID)
	if err != nil {
		return fmt.Errorf("postgres: delete trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %q: %w", tradeID, journal.ErrNotFound)
	}
	return nil
}

func (s *Store) GetTrade(ctx context.Context, tradeID string) (journal.Trade, error) {
	t, err := scanTrade(s.pool.QueryRow(ctx, `SELECT `+tradeCols+` FROM trades WHERE id = $1`, tradeID))
	if err != nil {
		if isNotFoundError(err) {
			return journal.Trade{}, fmt.Errorf("trade %q: %w", tradeID, journal.ErrNotFound)
		}
		return journal.Trade{}, fmt.Errorf("postgres: get trade: %w", err)
	}
	return t, nil
}

// ListTrades returns trades matching f, oldest entry date first.
func (s *Store) ListTrades(ctx context.Context, f journal.TradeFilter) ([]journal.Trade, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AccountID != "" {
		where = append(where, "account_id = "+arg(f.AccountID))
	}
	if !f.Since.IsZero() {
		where = append(where, "entry_date >= "+arg(f.Since.UTC()))
	}
	if !f.Until.IsZero() {
		where = append(where, "entry_date < "+arg(f.Until.UTC()))
	}
	if f.Strategy != "" {
		where = append(where, "strategy_type = "+arg(f.Strategy))
	}
	if f.Symbol != "" {
		where = append(where, "symbol = "+arg(strings.ToUpper(f.Symbol)))
	}

	query := `SELECT ` + tradeCols + ` FROM trades`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_date ASC, created_at ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
		if f.Offset > 0 {
			query += " OFFSET " + arg(f.Offset)
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades: %w", err)
	}
	defer rows.Close()

	out := []journal.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
