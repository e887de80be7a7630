package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/service"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TradeHandler handles trade, balance and P&L HTTP requests
type TradeHandler struct {
	tradeService *service.TradeService
	logger       *zap.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(tradeService *service.TradeService, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
		logger:       logger,
	}
}

// GetBalances handles grouped balance summaries
// GET /api/balances?platform=&account_type=
func (h *TradeHandler) GetBalances(c *gin.Context) {
	platform := c.Query("platform")
	accountType := c.Query("account_type")

	summary, err := h.tradeService.GetBalanceSummary(c.Request.Context(), platform, accountType)
	if err != nil {
		h.logger.Error("Failed to get balance summary",
			zap.Error(err),
			zap.String("platform", platform))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to get balances")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTrades handles paginated trade listings
// GET /api/trades?platform=&symbol=&from=&to=&page=&limit=
func (h *TradeHandler) GetTrades(c *gin.Context) {
	filter := model.TradeFilter{
		Platform: c.Query("platform"),
		Symbol:   c.Query("symbol"),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := parseTimeParam(fromStr)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid from format. Use YYYY-MM-DD or RFC3339")
			return
		}
		filter.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := parseTimeParam(toStr)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid to format. Use YYYY-MM-DD or RFC3339")
			return
		}
		filter.To = &to
	}

	params := utils.ParsePaginationParams(c, 100, 1000)
	filter.Page = params.Page
	filter.Limit = params.Limit

	trades, total, err := h.tradeService.GetTrades(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to get trades",
			zap.Error(err),
			zap.String("platform", filter.Platform))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to get trades")
		return
	}

	utils.SendPaginatedResponse(c, http.StatusOK, trades, total, params.Page, params.Limit)
}

// GetPnl handles P&L aggregates over a named or explicit date range
// GET /api/pnl?period=&platform=&range=&from=&to=
func (h *TradeHandler) GetPnl(c *gin.Context) {
	query := model.PnlQuery{
		Period:   c.Query("period"),
		Platform: c.Query("platform"),
		Range:    c.Query("range"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}

	summary, err := h.tradeService.GetPnl(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to get pnl", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to get pnl")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
