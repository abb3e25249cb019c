package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

var fixedNow = time.Date(2024, 5, 2, 15, 4, 5, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *JournalService {
	t.Helper()

	dir := t.TempDir()
	store, err := journal.NewSQLite(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"), "/screenshots")
	require.NoError(t, err)

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store, blobs, nil, opts...)
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

// the two-trade scenario: R 2 then R -3
func seed(t *testing.T, s *JournalService) []journal.Trade {
	t.Helper()
	ctx := context.Background()

	in := []journal.Trade{
		{Symbol: "eurusd", EntryPrice: 100, StopLoss: 98, TakeProfit: 104, PositionSize: 10, PnLNet: 40, StrategyType: "ICT", EntryDate: day(1)},
		{Symbol: "gbpusd", Direction: journal.Short, EntryPrice: 50, StopLoss: 51, PositionSize: 20, PnLNet: -60, StrategyType: "SMC", EntryDate: day(2)},
	}
	out := make([]journal.Trade, 0, len(in))
	for _, tr := range in {
		created, err := s.CreateTrade(ctx, tr)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestCreateTrade(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	trades := seed(t, s)

	first := trades[0]
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.AccountID)
	assert.Equal(t, "EURUSD", first.Symbol)
	assert.Equal(t, journal.Long, first.Direction)
	assert.Equal(t, journal.Win, first.Status)
	assert.InDelta(t, 2.0, first.PlannedRR, 1e-9, "planned rr filled from the bracket")
	assert.InDelta(t, 2.0, first.ActualRR, 1e-9)

	second := trades[1]
	assert.Zero(t, second.PlannedRR, "no take profit")
	assert.InDelta(t, -3.0, second.ActualRR, 1e-9)

	got, err := s.GetTrade(context.Background(), first.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.ActualRR, 1e-9)
}

func TestCreateTradeInvalid(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	_, err := s.CreateTrade(context.Background(), journal.Trade{Symbol: "EURUSD"})
	assert.ErrorIs(t, err, journal.ErrInvalidTrade)

	_, err = s.CreateTrade(context.Background(), journal.Trade{Symbol: "EURUSD", EntryDate: day(1), Session: "MARS"})
	assert.ErrorIs(t, err, journal.ErrInvalidTrade)
}

func TestUpdateTrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)
	trades := seed(t, s)

	edit := trades[0]
	edit.PnLNet = -20
	edit.ActualRR = 99
	updated, err := s.UpdateTrade(ctx, trades[0].ID, edit)
	require.NoError(t, err)
	assert.Equal(t, journal.Loss, updated.Status)
	assert.InDelta(t, -1.0, updated.ActualRR, 1e-9, "stored rr is recomputed, never trusted")

	_, err = s.UpdateTrade(ctx, "missing", edit)
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestDeleteTrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)
	trades := seed(t, s)

	require.NoError(t, s.DeleteTrade(ctx, trades[0].ID))
	assert.ErrorIs(t, s.DeleteTrade(ctx, trades[0].ID), journal.ErrNotFound)

	left, err := s.ListTrades(ctx, journal.TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)

	acct, err := s.UpdateSettings(ctx, 25000, 0)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, acct.Balance)
	assert.Equal(t, 1.0, acct.RiskPercent)

	acct, err = s.UpdateSettings(ctx, 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, acct.Balance)
	assert.Equal(t, 0.5, acct.RiskPercent)

	_, err = s.UpdateSettings(ctx, -1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.UpdateSettings(ctx, 1, 101)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)

	acct, err := s.Init(ctx, journal.Account{Name: "Prop", Currency: "EUR", Balance: 50000})
	require.NoError(t, err)
	assert.Equal(t, "Prop", acct.Name)
	assert.Equal(t, "EUR", acct.Currency)
	assert.Equal(t, 50000.0, acct.Balance)
	assert.Equal(t, 1.0, acct.RiskPercent)

	// once changed, the stored account wins over the config
	again, err := s.Init(ctx, journal.Account{Name: "Other", Balance: 1})
	require.NoError(t, err)
	assert.Equal(t, "Prop", again.Name)
	assert.Equal(t, 50000.0, again.Balance)
}

func TestUploadScreenshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)

	url, err := s.UploadScreenshot(ctx, "Chart.PNG", strings.NewReader("img"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/screenshots/1714662245000-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	name := strings.TrimPrefix(url, "/screenshots/")
	rc, err := s.Blobs().Get(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
}

func TestRefreshRR(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)
	trades := seed(t, s)

	n, err := s.RefreshRR(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh trades are already in sync")

	// simulate a stale cache written by an older version
	stale := trades[0]
	stale.ActualRR = 7
	require.NoError(t, s.Store().UpdateTrade(ctx, &stale))

	n, err = s.RefreshRR(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetTrade(ctx, stale.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.ActualRR, 1e-9)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)
	seed(t, s)

	snap, sim, err := s.Snapshot(ctx, SimOverrides{})
	require.NoError(t, err)
	assert.False(t, sim.Enabled)
	assert.Equal(t, 10000.0, sim.StartingBalance)
	assert.InDelta(t, -20.0, snap.Stats.TotalPnL, 1e-9)
	assert.InDelta(t, 50.0, snap.Stats.WinRate, 1e-9)
	assert.Equal(t, 2, snap.Stats.Trades)
	require.Len(t, snap.Heatmap, 2)
	assert.InDelta(t, -3.0, snap.Heatmap[0].R, 1e-9)

	on := true
	pct := 2.0
	snap, sim, err = s.Snapshot(ctx, SimOverrides{Enabled: &on, RiskPercent: &pct})
	require.NoError(t, err)
	assert.True(t, sim.Enabled)
	require.Len(t, snap.Equity.Points, 2)
	assert.InDelta(t, 400.0, *snap.Equity.Points[0].SimulatedCumulativePnL, 1e-9)
}

func TestSimDefaults(t *testing.T) {
	t.Parallel()

	s := newTestService(t, WithSimDefaults(SimDefaults{Enabled: true, StartingBalance: 5000}))
	cfg := s.SimConfig(journal.Account{Balance: 10000, RiskPercent: 1}, SimOverrides{})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5000.0, cfg.StartingBalance)
	assert.Equal(t, 1.0, cfg.RiskPercent)
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t)
	seed(t, s)

	on := true
	v, err := s.Dashboard(ctx, SimOverrides{Enabled: &on})
	require.NoError(t, err)
	require.Len(t, v.Trades, 2)
	assert.Equal(t, "GBPUSD", v.Trades[0].Symbol)
	assert.True(t, v.Equity.Simulated)
	assert.Equal(t, "2024-05-02", v.Form.EntryDate)
	assert.InDelta(t, 100.0, v.RiskAmount, 1e-9)
}

func TestCSVExportImport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := newTestService(t)
	seed(t, src)

	var buf bytes.Buffer
	n, err := src.ExportCSV(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	data := buf.Bytes()

	dst := newTestService(t)
	res, err := dst.ImportCSV(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)

	res, err = dst.ImportCSV(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 2}, res)

	snap, _, err := dst.Snapshot(ctx, SimOverrides{})
	require.NoError(t, err)
	assert.InDelta(t, -20.0, snap.Stats.TotalPnL, 1e-9)

	_, err = dst.ImportCSV(ctx, strings.NewReader("symbol\nEURUSD\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.WriteReport(context.Background(), &buf, "Weekly", SimOverrides{}))
	assert.Contains(t, buf.String(), "* Weekly")
	assert.Contains(t, buf.String(), ":NET_PNL:     -20.00")
}

func TestPositionSize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, WithPolicy(risk.Policy{MaxRiskPercent: 2, MinRR: 1.5, MaxTradesPerDay: 1}))
	seed(t, s)

	res, err := s.PositionSize(ctx, SizeRequest{EntryPrice: 100, StopLoss: 98, TakeProfit: 104, Date: day(3)})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, res.PositionSize, 1e-9)
	assert.InDelta(t, 100.0, res.RiskAmount, 1e-9)
	assert.InDelta(t, 2.0, res.PlannedRR, 1e-9)
	assert.True(t, res.Decision.Allowed)

	// one trade already on May 2
	res, err = s.PositionSize(ctx, SizeRequest{EntryPrice: 100, StopLoss: 98, TakeProfit: 104, Date: day(2)})
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	require.Len(t, res.Decision.Violations, 1)
	assert.Equal(t, "TOO_MANY_TRADES", res.Decision.Violations[0].Code)
}
