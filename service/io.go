package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/risk"
)

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ExportCSV writes every trade in entry order.
func (s *JournalService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	trades, err := s.store.ListTrades(ctx, journal.TradeFilter{})
	if err != nil {
		return 0, err
	}
	if err := journal.WriteCSV(w, trades); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(trades), nil
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ImportCSV creates a trade per row. Rows whose id already exists are
// skipped, so re-importing an export is harmless. Rows without an account
// go to the journal's account.
func (s *JournalService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	rows, err := journal.ReadCSV(r)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	acct, err := s.store.EnsureAccount(ctx)
	if err != nil {
		return res, err
	}

	for i := range rows {
		t := rows[i]
		if t.AccountID == "" {
			t.AccountID = acct.ID
		}
		if err := s.prepare(ctx, &t); err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		err := s.store.CreateTrade(ctx, &t)
		if errors.Is(err, journal.ErrDuplicate) {
			res.Skipped++
			continue
		}
		if errors.Is(err, journal.ErrNoAccount) {
			// exported from another journal; re-home it
			t.AccountID = acct.ID
			err = s.store.CreateTrade(ctx, &t)
		}
		if err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		res.Created++
	}
	s.log.Info("csv imported", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

// WriteReport renders the Org summary of the current journal.
func (s *JournalService) WriteReport(ctx context.Context, w io.Writer, title string, o SimOverrides) error {
	acct, trades, err := s.load(ctx)
	if err != nil {
		return err
	}
	sim := s.SimConfig(acct, o)
	return ledger.WriteOrgReport(w, ledger.Report{
		Title:     title,
		Account:   acct.Name,
		Currency:  acct.Currency,
		Created:   s.now(),
		Snapshot:  ledger.Derive(trades, sim),
		SimConfig: sim,
	})
}

// SizeRequest is the input of the position-size calculator.
type SizeRequest struct {
	Direction  journal.Direction `json:"direction"`
	EntryPrice float64           `json:"entry_price"`
	StopLoss   float64           `json:"stop_loss"`
	TakeProfit float64           `json:"take_profit"`

	// Optional; the account settings apply when zero.
	Balance     float64 `json:"balance"`
	RiskPercent float64 `json:"risk_percent"`

	// Day the trade would be taken; defaults to today.
	Date time.Time `json:"date"`
}

type SizeResult struct {
	risk.Result
	Decision risk.Decision `json:"decision"`
}

// PositionSize runs the sizing calculator and checks the resulting trade
// against the risk policy, using the trades already journaled that day.
func (s *JournalService) PositionSize(ctx context.Context, req SizeRequest) (SizeResult, error) {
	acct, err := s.store.EnsureAccount(ctx)
	if err != nil {
		return SizeResult{}, err
	}
	if req.Balance <= 0 {
		req.Balance = acct.Balance
	}
	if req.RiskPercent <= 0 {
		req.RiskPercent = acct.RiskPercent
	}
	if req.Date.IsZero() {
		req.Date = s.now().UTC()
	}
	long := req.Direction != journal.Short

	res := risk.Calculate(risk.Inputs{
		Balance:     req.Balance,
		RiskPercent: req.RiskPercent,
		Long:        long,
		EntryPrice:  req.EntryPrice,
		StopPrice:   req.StopLoss,
		TakeProfit:  req.TakeProfit,
	})

	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC)
	todays, err := s.store.ListTrades(ctx, journal.TradeFilter{
		AccountID: acct.ID,
		Since:     day,
		Until:     day.AddDate(0, 0, 1),
	})
	if err != nil {
		return SizeResult{}, err
	}
	activity := risk.DayActivity{Trades: len(todays)}
	for _, t := range todays {
		activity.Realized += t.PnLNet
	}

	decision := risk.Evaluate(s.policy, risk.TradeIntent{
		Long:       long,
		Size:       res.PositionSize,
		Entry:      req.EntryPrice,
		Stop:       req.StopLoss,
		TakeProfit: req.TakeProfit,
	}, req.Balance, activity)

	return SizeResult{Result: res, Decision: decision}, nil
}
