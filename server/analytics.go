package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/service"
)

// AnalyticsHandler serves the derived views. Each request re-reads the
// trades and derives again.
type AnalyticsHandler struct {
	Service *service.JournalService
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/stats", h.stats)
	g.GET("/calendar", h.calendar)
	g.GET("/strategies", h.strategies)
	g.GET("/heatmap", h.heatmap)
	g.GET("/equity", h.equity)
	g.GET("/dashboard", h.dashboard)
	g.GET("/report", h.report)
	g.POST("/position-size", h.positionSize)
}

func (h *AnalyticsHandler) snapshot(c *gin.Context) (ledger.Snapshot, ledger.SimConfig, bool) {
	o, err := simOverrides(c)
	if err != nil {
		fail(c, err)
		return ledger.Snapshot{}, ledger.SimConfig{}, false
	}
	snap, sim, err := h.Service.Snapshot(c.Request.Context(), o)
	if err != nil {
		fail(c, err)
		return ledger.Snapshot{}, ledger.SimConfig{}, false
	}
	return snap, sim, true
}

func (h *AnalyticsHandler) stats(c *gin.Context) {
	snap, _, ok := h.snapshot(c)
	if !ok {
		return
	}
	Ok(c, snap.Stats, nil)
}

type calendarResponse struct {
	Month    string               `json:"month"`
	Calendar ledger.CalendarMap   `json:"calendar"`
	Days     []ledger.CalendarDay `json:"days"`
}

func (h *AnalyticsHandler) calendar(c *gin.Context) {
	month := h.Service.Now().UTC()
	if v := strings.TrimSpace(c.Query("month")); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid month, want YYYY-MM", nil)
			return
		}
		month = m
	}
	snap, _, ok := h.snapshot(c)
	if !ok {
		return
	}
	Ok(c, calendarResponse{
		Month:    month.Format("2006-01"),
		Calendar: snap.Calendar,
		Days:     ledger.MonthCalendar(snap.Calendar, month.Year(), month.Month()),
	}, nil)
}

func (h *AnalyticsHandler) strategies(c *gin.Context) {
	snap, _, ok := h.snapshot(c)
	if !ok {
		return
	}
	Ok(c, snap.Strategies, nil)
}

func (h *AnalyticsHandler) heatmap(c *gin.Context) {
	limit := intQuery(c, "limit", ledger.HeatmapSize)
	points, err := h.Service.Heatmap(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, points, map[string]any{"limit": limit, "min_r": ledger.MinR, "max_r": ledger.MaxR})
}

func (h *AnalyticsHandler) equity(c *gin.Context) {
	snap, sim, ok := h.snapshot(c)
	if !ok {
		return
	}
	Ok(c, snap.Equity, map[string]any{"simulation": sim})
}

func (h *AnalyticsHandler) dashboard(c *gin.Context) {
	o, err := simOverrides(c)
	if err != nil {
		fail(c, err)
		return
	}
	v, err := h.Service.Dashboard(c.Request.Context(), o)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, v, nil)
}

func (h *AnalyticsHandler) report(c *gin.Context) {
	o, err := simOverrides(c)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	title := strings.TrimSpace(c.Query("title"))
	if err := h.Service.WriteReport(c.Request.Context(), &buf, title, o); err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/org; charset=utf-8", buf.Bytes())
}

type positionSizeRequest struct {
	Direction   string  `json:"direction"`
	EntryPrice  float64 `json:"entry_price"`
	StopLoss    float64 `json:"stop_loss"`
	TakeProfit  float64 `json:"take_profit"`
	Balance     float64 `json:"balance"`
	RiskPercent float64 `json:"risk_percent"`
	Date        string  `json:"date"`
}

func (h *AnalyticsHandler) positionSize(c *gin.Context) {
	var req positionSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	sr := service.SizeRequest{
		Direction:   journal.Direction(strings.ToUpper(strings.TrimSpace(req.Direction))),
		EntryPrice:  req.EntryPrice,
		StopLoss:    req.StopLoss,
		TakeProfit:  req.TakeProfit,
		Balance:     req.Balance,
		RiskPercent: req.RiskPercent,
	}
	if req.Date != "" {
		d, err := journal.ParseDate(req.Date)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid date", nil)
			return
		}
		sr.Date = d
	}
	res, err := h.Service.PositionSize(c.Request.Context(), sr)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, res, nil)
}
