package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrades(t *testing.T, j *SQLite) (Account, []Trade) {
	t.Helper()

	ctx := context.Background()
	a, err := j.EnsureAccount(ctx)
	require.NoError(t, err)

	// inserted out of date order on purpose
	specs := []struct {
		day      int
		symbol   string
		strategy string
		pnl      float64
	}{
		{5, "EURUSD", "ICT", 40},
		{1, "GBPUSD", "SMC", -60},
		{5, "XAUUSD", "ICT", 10},
		{3, "EURUSD", "", 25},
	}

	out := make([]Trade, 0, len(specs))
	for _, s := range specs {
		tr := sampleTrade(a.ID, s.day, s.pnl)
		tr.Symbol = s.symbol
		tr.StrategyType = s.strategy
		require.NoError(t, j.CreateTrade(ctx, &tr))
		out = append(out, tr)
	}
	return a, out
}

func symbols(trades []Trade) []string {
	out := make([]string, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tr.Symbol)
	}
	return out
}

func TestGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	_, err := j.GetTrade(context.Background(), "NONEXISTENT")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTradesOrdering(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	_, seeded := seedTrades(t, j)

	got, err := j.ListTrades(context.Background(), TradeFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	// same-day trades keep insertion order
	assert.Equal(t, []string{"GBPUSD", "EURUSD", "EURUSD", "XAUUSD"}, symbols(got))
	assert.Equal(t, seeded[0].ID, got[2].ID)
	assert.Equal(t, seeded[2].ID, got[3].ID)
}

func TestListTradesFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	a, _ := seedTrades(t, j)

	tests := []struct {
		name   string
		filter TradeFilter
		want   []string
	}{
		{"account", TradeFilter{AccountID: a.ID}, []string{"GBPUSD", "EURUSD", "EURUSD", "XAUUSD"}},
		{"other_account", TradeFilter{AccountID: "x"}, []string{}},
		{"strategy", TradeFilter{Strategy: "ICT"}, []string{"EURUSD", "XAUUSD"}},
		{"symbol_case_insensitive", TradeFilter{Symbol: "eurusd"}, []string{"EURUSD", "EURUSD"}},
		{
			"date_range",
			TradeFilter{
				Since: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
				Until: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
			},
			[]string{"EURUSD"},
		},
		{"limit", TradeFilter{Limit: 2}, []string{"GBPUSD", "EURUSD"}},
		{"limit_offset", TradeFilter{Limit: 2, Offset: 3}, []string{"XAUUSD"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.ListTrades(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, symbols(got))
		})
	}
}

func TestListTradesEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	got, err := j.ListTrades(context.Background(), TradeFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
