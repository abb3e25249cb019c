package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	store, err := journal.NewSQLite(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"), "/screenshots")
	require.NoError(t, err)

	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	svc := service.New(store, blobs, nil, service.WithClock(func() time.Time { return now }))
	return New(config.ServerConfig{CORSOrigins: []string{"https://journal.example"}, MaxUploadMB: 1}, svc, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func postTrade(t *testing.T, h http.Handler, body map[string]any) journal.Trade {
	t.Helper()
	w, env := do(t, h, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tr journal.Trade
	require.NoError(t, json.Unmarshal(env.Data, &tr))
	return tr
}

func seedTrades(t *testing.T, h http.Handler) (journal.Trade, journal.Trade) {
	a := postTrade(t, h, map[string]any{
		"symbol": "eurusd", "entry_price": 100, "stop_loss": 98, "take_profit": 104,
		"position_size": 10, "pnl_net": 40, "strategy_type": "ICT", "entry_date": "2024-05-01",
	})
	b := postTrade(t, h, map[string]any{
		"symbol": "gbpusd", "direction": "SHORT", "entry_price": 50, "stop_loss": 51,
		"position_size": 20, "pnl_net": -60, "strategy_type": "SMC", "entry_date": "2024-05-02",
	})
	return a, b
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	w, _ := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestAccount(t *testing.T) {
	h := newTestServer(t)

	w, env := do(t, h, http.MethodGet, "/api/account", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acct journal.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "Main", acct.Name)
	assert.Equal(t, 10000.0, acct.Balance)

	w, env = do(t, h, http.MethodPut, "/api/account", map[string]any{"balance": 20000, "risk_percent": 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, 20000.0, acct.Balance)
	assert.Equal(t, 2.0, acct.RiskPercent)

	w, env = do(t, h, http.MethodPut, "/api/account", map[string]any{"balance": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}

func TestTradeCRUD(t *testing.T) {
	h := newTestServer(t)
	a, _ := seedTrades(t, h)

	assert.Equal(t, "EURUSD", a.Symbol)
	assert.Equal(t, journal.Win, a.Status)
	assert.InDelta(t, 2.0, a.ActualRR, 1e-9)

	w, env := do(t, h, http.MethodGet, "/api/trades/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got journal.Trade
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, a.ID, got.ID)

	w, env = do(t, h, http.MethodPut, "/api/trades/"+a.ID, map[string]any{
		"symbol": "EURUSD", "entry_price": 100, "stop_loss": 98,
		"position_size": 10, "pnl_net": -20, "entry_date": "2024-05-01",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, journal.Loss, got.Status)
	assert.InDelta(t, -1.0, got.ActualRR, 1e-9)

	w, _ = do(t, h, http.MethodDelete, "/api/trades/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/trades/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)
}

func TestCreateTradeRejectsBadInput(t *testing.T) {
	h := newTestServer(t)

	w, _ := do(t, h, http.MethodPost, "/api/trades", map[string]any{"symbol": "EURUSD", "entry_date": "not a date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/trades", map[string]any{"entry_date": "2024-05-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/trades", map[string]any{"symbol": "EURUSD", "entry_date": "2024-05-01", "entry_price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTrades(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	w, env := do(t, h, http.MethodGet, "/api/trades?limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trades []journal.Trade
	require.NoError(t, json.Unmarshal(env.Data, &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "GBPUSD", trades[0].Symbol)
	assert.EqualValues(t, 2, env.Meta["total"])
	assert.Equal(t, false, env.Meta["has_next"])

	_, env = do(t, h, http.MethodGet, "/api/trades?strategy=ICT", nil)
	require.NoError(t, json.Unmarshal(env.Data, &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "EURUSD", trades[0].Symbol)

	w, _ = do(t, h, http.MethodGet, "/api/trades?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTradesUntilIsInclusive(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	tests := []struct {
		query string
		want  []string
	}{
		{"since=2024-05-01&until=2024-05-01", []string{"EURUSD"}},
		{"since=2024-05-02&until=2024-05-02", []string{"GBPUSD"}},
		{"until=2024-05-01", []string{"EURUSD"}},
		{"since=2024-05-01&until=2024-05-02", []string{"EURUSD", "GBPUSD"}},
		{"until=2024-04-30", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, env := do(t, h, http.MethodGet, "/api/trades?"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var trades []journal.Trade
			require.NoError(t, json.Unmarshal(env.Data, &trades))
			symbols := []string{}
			for _, tr := range trades {
				symbols = append(symbols, tr.Symbol)
			}
			assert.Equal(t, tt.want, symbols)
		})
	}
}

func TestStatsAndStrategies(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	_, env := do(t, h, http.MethodGet, "/api/stats", nil)
	var stats struct {
		TotalPnL float64 `json:"total_pnl"`
		WinRate  float64 `json:"win_rate"`
		Trades   int     `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.InDelta(t, -20.0, stats.TotalPnL, 1e-9)
	assert.InDelta(t, 50.0, stats.WinRate, 1e-9)
	assert.Equal(t, 2, stats.Trades)

	_, env = do(t, h, http.MethodGet, "/api/strategies", nil)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "ICT", rows[0]["strategy"])
}

func TestCalendar(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	w, env := do(t, h, http.MethodGet, "/api/calendar?month=2024-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cal calendarResponse
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	assert.Equal(t, "2024-05", cal.Month)
	assert.InDelta(t, 40.0, cal.Calendar["2024-05-01"], 1e-9)
	require.Len(t, cal.Days, 31)
	assert.True(t, cal.Days[1].HasData)
	assert.False(t, cal.Days[2].HasData)

	w, _ = do(t, h, http.MethodGet, "/api/calendar?month=May", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHeatmapAndEquity(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	_, env := do(t, h, http.MethodGet, "/api/heatmap?limit=1", nil)
	var points []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &points))
	require.Len(t, points, 1)
	assert.InDelta(t, -3.0, points[0]["r"], 1e-9)

	_, env = do(t, h, http.MethodGet, "/api/equity", nil)
	var curve struct {
		Simulated bool `json:"simulated"`
		Points    []struct {
			Actual    float64  `json:"actual_cumulative_pnl"`
			Simulated *float64 `json:"simulated_cumulative_pnl"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &curve))
	assert.False(t, curve.Simulated)
	require.Len(t, curve.Points, 2)
	assert.Nil(t, curve.Points[0].Simulated)
	assert.InDelta(t, -20.0, curve.Points[1].Actual, 1e-9)

	_, env = do(t, h, http.MethodGet, "/api/equity?simulate=true&risk_percent=1&starting_balance=10000", nil)
	require.NoError(t, json.Unmarshal(env.Data, &curve))
	assert.True(t, curve.Simulated)
	require.NotNil(t, curve.Points[1].Simulated)
	assert.InDelta(t, -106.0, *curve.Points[1].Simulated, 1e-9)

	_, env = do(t, h, http.MethodGet, "/api/equity?simulate=true&risk_percent=0", nil)
	require.NoError(t, json.Unmarshal(env.Data, &curve))
	require.NotNil(t, curve.Points[1].Simulated)
	assert.Zero(t, *curve.Points[1].Simulated)
}

func TestSimulationQueryRejectsBadValues(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	for _, path := range []string{
		"/api/equity?simulate=maybe",
		"/api/stats?risk_percent=lots",
		"/api/dashboard?starting_balance=1e",
		"/api/report?simulate=yes",
	} {
		w, env := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, env.Message, "is not a", path)
	}
}

func TestDashboardAndReport(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	w, env := do(t, h, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Contains(t, v, "stats")
	assert.Contains(t, v, "heatmap")
	assert.Contains(t, v, "form")

	w, _ = do(t, h, http.MethodGet, "/api/report?title=May", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "* May"))
}

func TestPositionSize(t *testing.T) {
	h := newTestServer(t)

	w, env := do(t, h, http.MethodPost, "/api/position-size", map[string]any{
		"entry_price": 100, "stop_loss": 98, "take_profit": 104,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		RiskAmount   float64 `json:"risk_amount"`
		PositionSize float64 `json:"position_size"`
		PlannedRR    float64 `json:"planned_rr"`
		Decision     struct {
			Allowed bool `json:"allowed"`
		} `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 100.0, res.RiskAmount, 1e-9)
	assert.InDelta(t, 50.0, res.PositionSize, 1e-9)
	assert.InDelta(t, 2.0, res.PlannedRR, 1e-9)
	assert.True(t, res.Decision.Allowed)
}

func TestRefreshRR(t *testing.T) {
	h := newTestServer(t)
	seedTrades(t, h)

	w, env := do(t, h, http.MethodPost, "/api/trades/refresh-rr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 0, out["updated"])
}

func TestScreenshotUploadAndServe(t *testing.T) {
	h := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "chart.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/screenshots", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var out map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.True(t, strings.HasPrefix(out["url"], "/screenshots/"))
	assert.True(t, strings.HasSuffix(out["url"], ".png"))

	w, _ = do(t, h, http.MethodGet, out["url"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w, _ = do(t, h, http.MethodGet, "/screenshots/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/screenshots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/trades", nil)
	req.Header.Set("Origin", "https://journal.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://journal.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
