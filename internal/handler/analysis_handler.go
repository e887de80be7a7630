package handler

import (
	"net/http"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/service"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalysisHandler handles delegation to the AI analysis microservice
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// Autofetch asks the analyzer to scan channels for new videos
// POST /api/autofetch
func (h *AnalysisHandler) Autofetch(c *gin.Context) {
	var request struct {
		Channels []string `json:"channels" binding:"required,min=1"`
		Force    bool     `json:"force"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	req := model.AnalysisRequest{Channels: request.Channels, Force: request.Force}
	if err := h.analysisService.Autofetch(c.Request.Context(), req); err != nil {
		h.logger.Error("Failed to delegate autofetch", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Analyzer service unavailable")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "channels": len(request.Channels)})
}

// AnalyzeYoutube asks the analyzer to process one video
// POST /api/analyze-youtube
func (h *AnalysisHandler) AnalyzeYoutube(c *gin.Context) {
	var request struct {
		URL   string `json:"url" binding:"required,url"`
		Force bool   `json:"force"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	req := model.AnalysisRequest{URL: request.URL, Force: request.Force}
	if err := h.analysisService.AnalyzeVideo(c.Request.Context(), req); err != nil {
		h.logger.Error("Failed to delegate analysis",
			zap.Error(err),
			zap.String("url", request.URL))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Analyzer service unavailable")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "url": request.URL})
}

// Transcript fetches a video transcript, local captions first
// POST /api/transcript
func (h *AnalysisHandler) Transcript(c *gin.Context) {
	var request struct {
		URL string `json:"url" binding:"required,url"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analysisService.Transcript(c.Request.Context(), request.URL)
	if err != nil {
		h.logger.Error("Failed to fetch transcript",
			zap.Error(err),
			zap.String("url", request.URL))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Transcript unavailable")
		return
	}

	c.JSON(http.StatusOK, result)
}
