// Package service ties the trade store, the blob store and the ledger
// engine together. Handlers and CLI commands go through JournalService;
// every derived value is computed from a fresh read of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/risk"
)

var ErrInvalidInput = errors.New("invalid input")

// SimDefaults are the configured what-if settings. Zero values fall back
// to the account balance and risk percent.
type SimDefaults struct {
	Enabled         bool
	StartingBalance float64
	RiskPercent     float64
}

// SimOverrides come from a request. Nil fields keep the default.
type SimOverrides struct {
	Enabled         *bool
	StartingBalance *float64
	RiskPercent     *float64
}

type JournalService struct {
	store  journal.Store
	blobs  blob.Store
	log    *zap.Logger
	policy risk.Policy
	sim    SimDefaults
	now    func() time.Time
}

type Option func(*JournalService)

func WithPolicy(p risk.Policy) Option {
	return func(s *JournalService) { s.policy = p }
}

func WithSimDefaults(d SimDefaults) Option {
	return func(s *JournalService) { s.sim = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *JournalService) { s.now = now }
}

func New(store journal.Store, blobs blob.Store, log *zap.Logger, opts ...Option) *JournalService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &JournalService{
		store:  store,
		blobs:  blobs,
		log:    log,
		policy: risk.DefaultPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JournalService) Store() journal.Store { return s.store }
func (s *JournalService) Blobs() blob.Store    { return s.blobs }
func (s *JournalService) Policy() risk.Policy  { return s.policy }

// Account returns the journal's account, creating the default one on
// first use.
func (s *JournalService) Account(ctx context.Context) (journal.Account, error) {
	return s.store.EnsureAccount(ctx)
}

// Init ensures the account exists and, while the journal is still empty
// and the account untouched, applies the configured name, currency,
// balance and risk percent. Zero seed fields are ignored.
func (s *JournalService) Init(ctx context.Context, seed journal.Account) (journal.Account, error) {
	acct, err := s.store.EnsureAccount(ctx)
	if err != nil {
		return journal.Account{}, err
	}
	def := journal.DefaultAccount()
	pristine := acct.Name == def.Name && acct.Currency == def.Currency &&
		acct.Balance == def.Balance && acct.RiskPercent == def.RiskPercent
	if !pristine {
		return acct, nil
	}
	trades, err := s.store.ListTrades(ctx, journal.TradeFilter{AccountID: acct.ID, Limit: 1})
	if err != nil {
		return journal.Account{}, err
	}
	if len(trades) > 0 {
		return acct, nil
	}

	next := acct
	if seed.Name != "" {
		next.Name = seed.Name
	}
	if seed.Currency != "" {
		next.Currency = seed.Currency
	}
	if seed.Balance > 0 {
		next.Balance = seed.Balance
	}
	if seed.RiskPercent > 0 {
		next.RiskPercent = seed.RiskPercent
	}
	if next == acct {
		return acct, nil
	}
	if err := s.store.UpdateAccount(ctx, next); err != nil {
		return journal.Account{}, err
	}
	s.log.Info("account initialised from config", zap.String("account_id", next.ID), zap.String("name", next.Name))
	return next, nil
}

// UpdateSettings changes the account balance and risk percent. Zero
// leaves a value unchanged.
func (s *JournalService) UpdateSettings(ctx context.Context, balance, riskPercent float64) (journal.Account, error) {
	if balance < 0 || !isFinite(balance) {
		return journal.Account{}, fmt.Errorf("%w: balance must be positive", ErrInvalidInput)
	}
	if riskPercent < 0 || riskPercent > 100 || !isFinite(riskPercent) {
		return journal.Account{}, fmt.Errorf("%w: risk_percent must be between 0 and 100", ErrInvalidInput)
	}

	acct, err := s.store.EnsureAccount(ctx)
	if err != nil {
		return journal.Account{}, err
	}
	if balance > 0 {
		acct.Balance = balance
	}
	if riskPercent > 0 {
		acct.RiskPercent = riskPercent
	}
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return journal.Account{}, err
	}
	s.log.Info("account settings updated",
		zap.String("account_id", acct.ID),
		zap.Float64("balance", acct.Balance),
		zap.Float64("risk_percent", acct.RiskPercent),
	)
	return acct, nil
}

// prepare normalizes t, fills the account and the calculated fields, and
// validates the result.
func (s *JournalService) prepare(ctx context.Context, t *journal.Trade) error {
	if t.AccountID == "" {
		acct, err := s.store.EnsureAccount(ctx)
		if err != nil {
			return err
		}
		t.AccountID = acct.ID
	}
	journal.Normalize(t)
	if t.PlannedRR == 0 {
		t.PlannedRR = risk.PlannedRR(t.Direction == journal.Long, t.EntryPrice, t.StopLoss, t.TakeProfit)
	}
	// actual_rr is a cache of the recomputed R multiple.
	t.ActualRR = ledger.DeriveR(*t)
	return t.Validate()
}

func (s *JournalService) CreateTrade(ctx context.Context, t journal.Trade) (journal.Trade, error) {
	t.ID = ""
	if err := s.prepare(ctx, &t); err != nil {
		return journal.Trade{}, err
	}
	if err := s.store.CreateTrade(ctx, &t); err != nil {
		return journal.Trade{}, err
	}
	s.log.Info("trade created",
		zap.String("trade_id", t.ID),
		zap.String("symbol", t.Symbol),
		zap.Float64("pnl_net", t.PnLNet),
	)
	return t, nil
}

// UpdateTrade replaces the editable fields of trade id with t.
func (s *JournalService) UpdateTrade(ctx context.Context, id string, t journal.Trade) (journal.Trade, error) {
	existing, err := s.store.GetTrade(ctx, id)
	if err != nil {
		return journal.Trade{}, err
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	if t.AccountID == "" {
		t.AccountID = existing.AccountID
	}
	if err := s.prepare(ctx, &t); err != nil {
		return journal.Trade{}, err
	}
	if err := s.store.UpdateTrade(ctx, &t); err != nil {
		return journal.Trade{}, err
	}
	s.log.Info("trade updated", zap.String("trade_id", t.ID))
	return t, nil
}

func (s *JournalService) DeleteTrade(ctx context.Context, id string) error {
	if err := s.store.DeleteTrade(ctx, id); err != nil {
		return err
	}
	s.log.Info("trade deleted", zap.String("trade_id", id))
	return nil
}

func (s *JournalService) GetTrade(ctx context.Context, id string) (journal.Trade, error) {
	return s.store.GetTrade(ctx, id)
}

func (s *JournalService) ListTrades(ctx context.Context, f journal.TradeFilter) ([]journal.Trade, error) {
	return s.store.ListTrades(ctx, f)
}

// UploadScreenshot stores a chart image under a fresh
// <unix-ms>-<n><ext> name and returns its URL.
func (s *JournalService) UploadScreenshot(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("%w: no blob store configured", ErrInvalidInput)
	}
	name := blob.ScreenshotName(s.now(), filename)
	if contentType == "" {
		contentType = blob.ContentType(name)
	}
	url, err := s.blobs.Put(ctx, name, r, contentType)
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	s.log.Info("screenshot uploaded", zap.String("name", name), zap.String("url", url))
	return url, nil
}

// RefreshRR recomputes the cached actual_rr of every trade and writes back
// the ones that changed. It returns how many were updated.
func (s *JournalService) RefreshRR(ctx context.Context) (int, error) {
	trades, err := s.store.ListTrades(ctx, journal.TradeFilter{})
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range trades {
		t := trades[i]
		r := ledger.DeriveR(t)
		if r == t.ActualRR {
			continue
		}
		t.ActualRR = r
		if err := s.store.UpdateTrade(ctx, &t); err != nil {
			return updated, fmt.Errorf("refresh %s: %w", t.ID, err)
		}
		updated++
	}
	s.log.Info("actual rr refreshed", zap.Int("updated", updated), zap.Int("total", len(trades)))
	return updated, nil
}

// SimConfig resolves the what-if configuration for acct.
func (s *JournalService) SimConfig(acct journal.Account, o SimOverrides) ledger.SimConfig {
	cfg := ledger.SimConfig{
		Enabled:         s.sim.Enabled,
		StartingBalance: s.sim.StartingBalance,
		RiskPercent:     s.sim.RiskPercent,
	}
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = acct.Balance
	}
	if cfg.RiskPercent <= 0 {
		cfg.RiskPercent = acct.RiskPercent
	}
	if o.Enabled != nil {
		cfg.Enabled = *o.Enabled
	}
	if o.StartingBalance != nil {
		cfg.StartingBalance = *o.StartingBalance
	}
	if o.RiskPercent != nil {
		cfg.RiskPercent = *o.RiskPercent
	}
	return cfg
}

func (s *JournalService) load(ctx context.Context) (journal.Account, []journal.Trade, error) {
	acct, err := s.store.EnsureAccount(ctx)
	if err != nil {
		return journal.Account{}, nil, err
	}
	trades, err := s.store.ListTrades(ctx, journal.TradeFilter{AccountID: acct.ID})
	if err != nil {
		return journal.Account{}, nil, err
	}
	return acct, trades, nil
}

// Snapshot derives every statistic from the current trades.
func (s *JournalService) Snapshot(ctx context.Context, o SimOverrides) (ledger.Snapshot, ledger.SimConfig, error) {
	acct, trades, err := s.load(ctx)
	if err != nil {
		return ledger.Snapshot{}, ledger.SimConfig{}, err
	}
	sim := s.SimConfig(acct, o)
	return ledger.Derive(trades, sim), sim, nil
}

// State loads a dashboard state from the account and its trades, with the
// simulation settings applied.
func (s *JournalService) State(ctx context.Context, o SimOverrides) (dashboard.State, error) {
	acct, trades, err := s.load(ctx)
	if err != nil {
		return dashboard.State{}, err
	}
	sim := s.SimConfig(acct, o)

	st := dashboard.New(acct, s.now().UTC()).
		WithTrades(trades).
		WithBalance(sim.StartingBalance).
		WithRiskPercent(sim.RiskPercent)
	if sim.Enabled {
		st = st.ToggleSimulation()
	}
	return st, nil
}

// Dashboard is State followed by View.
func (s *JournalService) Dashboard(ctx context.Context, o SimOverrides) (dashboard.View, error) {
	st, err := s.State(ctx, o)
	if err != nil {
		return dashboard.View{}, err
	}
	return st.View(), nil
}

// Heatmap returns up to limit realized R values, most recent first.
func (s *JournalService) Heatmap(ctx context.Context, limit int) ([]ledger.RPoint, error) {
	_, trades, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.RSeries(trades, limit), nil
}

// Now is the service clock.
func (s *JournalService) Now() time.Time { return s.now() }
