package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yourorg/crypto-dashboard/internal/market"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketHandler handles market data HTTP requests
type MarketHandler struct {
	resolver *market.Resolver
	logger   *zap.Logger
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(resolver *market.Resolver, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveSymbols handles batched symbol resolution with fallback
// POST /api/coinmarketcap
func (h *MarketHandler) ResolveSymbols(c *gin.Context) {
	var request struct {
		Symbols      []string `json:"symbols" binding:"required,min=1"`
		FallbackMode bool     `json:"fallbackMode"`
		Reason       string   `json:"reason"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	// Callers must state why they may spend fallback quota.
	if !request.FallbackMode && request.Reason == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Either fallbackMode or reason is required")
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), request.Symbols)
	if err != nil {
		if errors.Is(err, market.ErrRateLimited) {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limited and no cached data available. Try again later.")
			return
		}
		if errors.Is(err, market.ErrNoSymbols) {
			utils.SendErrorResponse(c, http.StatusBadRequest, "No valid symbols in request")
			return
		}
		h.logger.Error("Failed to resolve symbols",
			zap.Error(err),
			zap.Int("symbols", len(request.Symbols)))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch market data")
		return
	}

	if result.QuotaExhausted && len(result.Data) == 0 {
		utils.SendErrorResponse(c, http.StatusTooManyRequests, "Monthly fallback quota exhausted")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCoin handles single-coin detail lookups
// GET /api/coins/:id
func (h *MarketHandler) GetCoin(c *gin.Context) {
	coinID := c.Param("id")
	if coinID == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Coin ID is required")
		return
	}

	detail, fromCache, err := h.resolver.Detail(c.Request.Context(), coinID)
	if err != nil {
		if errors.Is(err, market.ErrRateLimited) {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limited and no cached data available. Try again later.")
			return
		}
		h.logger.Error("Failed to get coin detail",
			zap.Error(err),
			zap.String("coin_id", coinID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch coin data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      detail,
		"fromCache": fromCache,
	})
}

// GetCoinHistory handles OHLC history lookups
// GET /api/coins/:id/history?days=
func (h *MarketHandler) GetCoinHistory(c *gin.Context) {
	coinID := c.Param("id")
	if coinID == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Coin ID is required")
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		utils.SendErrorResponse(c, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	history, err := h.resolver.History(c.Request.Context(), coinID, days)
	if err != nil {
		if errors.Is(err, market.ErrRateLimited) {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limited and no cached data available. Try again later.")
			return
		}
		h.logger.Error("Failed to get coin history",
			zap.Error(err),
			zap.String("coin_id", coinID),
			zap.Int("days", days))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch history data")
		return
	}

	c.JSON(http.StatusOK, history)
}
