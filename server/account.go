package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradejournal/service"
)

type AccountHandler struct {
	Service *service.JournalService
}

func (h *AccountHandler) Register(r *gin.Engine) {
	g := r.Group("/api/account")
	g.GET("", h.get)
	g.PUT("", h.put)
}

func (h *AccountHandler) get(c *gin.Context) {
	acct, err := h.Service.Account(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, acct, nil)
}

type putAccountRequest struct {
	Balance     float64 `json:"balance"`
	RiskPercent float64 `json:"risk_percent"`
}

func (h *AccountHandler) put(c *gin.Context) {
	var req putAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	acct, err := h.Service.UpdateSettings(c.Request.Context(), req.Balance, req.RiskPercent)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, acct, nil)
}
