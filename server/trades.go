package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

type TradeHandler struct {
	Service *service.JournalService
}

func (h *TradeHandler) Register(r *gin.Engine) {
	g := r.Group("/api/trades")
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/refresh-rr", h.refreshRR)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// tradeRequest is the trade form as posted by a client. EntryDate is a
// calendar date (YYYY-MM-DD) or an RFC3339 timestamp.
type tradeRequest struct {
	Symbol       string   `json:"symbol"`
	Direction    string   `json:"direction"`
	EntryPrice   float64  `json:"entry_price"`
	ExitPrice    float64  `json:"exit_price"`
	StopLoss     float64  `json:"stop_loss"`
	TakeProfit   float64  `json:"take_profit"`
	PositionSize float64  `json:"position_size"`
	PnLNet       float64  `json:"pnl_net"`
	PlannedRR    float64  `json:"planned_rr"`
	StrategyType string   `json:"strategy_type"`
	EntryModel   string   `json:"entry_model"`
	Session      string   `json:"session"`
	Timeframe    string   `json:"timeframe"`
	MentalState  string   `json:"mental_state"`
	Confluences  []string `json:"confluences"`
	Notes        string   `json:"notes"`
	Screenshot   string   `json:"screenshot_url"`
	EntryDate    string   `json:"entry_date"`
}

func (r tradeRequest) trade() (journal.Trade, error) {
	date, err := journal.ParseDate(r.EntryDate)
	if err != nil {
		return journal.Trade{}, fmt.Errorf("%w: %v", journal.ErrInvalidTrade, err)
	}
	return journal.Trade{
		Symbol:        r.Symbol,
		Direction:     journal.Direction(r.Direction),
		EntryPrice:    r.EntryPrice,
		ExitPrice:     r.ExitPrice,
		StopLoss:      r.StopLoss,
		TakeProfit:    r.TakeProfit,
		PositionSize:  r.PositionSize,
		PnLNet:        r.PnLNet,
		PlannedRR:     r.PlannedRR,
		StrategyType:  r.StrategyType,
		EntryModel:    r.EntryModel,
		Session:       journal.Session(r.Session),
		Timeframe:     journal.Timeframe(r.Timeframe),
		MentalState:   journal.MentalState(r.MentalState),
		Confluences:   r.Confluences,
		Notes:         r.Notes,
		ScreenshotURL: r.Screenshot,
		EntryDate:     date,
	}, nil
}

func (h *TradeHandler) list(c *gin.Context) {
	f := journal.TradeFilter{
		Strategy: strings.TrimSpace(c.Query("strategy")),
		Symbol:   strings.TrimSpace(c.Query("symbol")),
	}
	if v := strings.TrimSpace(c.Query("since")); v != "" {
		d, err := journal.ParseDate(v)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid since", nil)
			return
		}
		f.Since = d
	}
	if v := strings.TrimSpace(c.Query("until")); v != "" {
		d, err := journal.ParseDate(v)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid until", nil)
			return
		}
		// until names the last day listed; the store bound is exclusive.
		f.Until = d.AddDate(0, 0, 1)
	}

	trades, err := h.Service.ListTrades(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}

	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)
	total := int64(len(trades))
	page := trades
	if offset > 0 {
		if offset >= len(page) {
			page = page[:0]
		} else {
			page = page[offset:]
		}
	}
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	Ok(c, page, paginationMeta(limit, offset, total))
}

func (h *TradeHandler) get(c *gin.Context) {
	t, err := h.Service.GetTrade(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, t, nil)
}

func (h *TradeHandler) bind(c *gin.Context) (journal.Trade, bool) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return journal.Trade{}, false
	}
	t, err := req.trade()
	if err != nil {
		fail(c, err)
		return journal.Trade{}, false
	}
	return t, true
}

func (h *TradeHandler) create(c *gin.Context) {
	t, ok := h.bind(c)
	if !ok {
		return
	}
	created, err := h.Service.CreateTrade(c.Request.Context(), t)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "created", Data: created})
}

func (h *TradeHandler) update(c *gin.Context) {
	t, ok := h.bind(c)
	if !ok {
		return
	}
	updated, err := h.Service.UpdateTrade(c.Request.Context(), c.Param("id"), t)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, updated, nil)
}

func (h *TradeHandler) delete(c *gin.Context) {
	if err := h.Service.DeleteTrade(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"id": c.Param("id")}, nil)
}

func (h *TradeHandler) refreshRR(c *gin.Context) {
	n, err := h.Service.RefreshRR(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"updated": n}, nil)
}
