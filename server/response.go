package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// statusFor maps service and store errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, journal.ErrInvalidTrade),
		errors.Is(err, journal.ErrNoAccount),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, journal.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	Error(c, status, msg, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

// floatQueryPtr is nil when key is absent and an ErrInvalidInput when it
// does not parse.
func floatQueryPtr(c *gin.Context, key string) (*float64, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number: %w", key, val, service.ErrInvalidInput)
	}
	return &f, nil
}

func boolQueryPtr(c *gin.Context, key string) (*bool, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a boolean: %w", key, val, service.ErrInvalidInput)
	}
	return &b, nil
}

// simOverrides reads ?simulate=&starting_balance=&risk_percent=.
func simOverrides(c *gin.Context) (service.SimOverrides, error) {
	var (
		o   service.SimOverrides
		err error
	)
	if o.Enabled, err = boolQueryPtr(c, "simulate"); err != nil {
		return o, err
	}
	if o.StartingBalance, err = floatQueryPtr(c, "starting_balance"); err != nil {
		return o, err
	}
	if o.RiskPercent, err = floatQueryPtr(c, "risk_percent"); err != nil {
		return o, err
	}
	return o, nil
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}
