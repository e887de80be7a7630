package handler

import (
	"net/http"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/model"
	"github.com/yourorg/crypto-dashboard/internal/service"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KnowledgeHandler handles AI analysis record HTTP requests
type KnowledgeHandler struct {
	knowledgeService *service.KnowledgeService
	logger           *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledgeService: knowledgeService,
		logger:           logger,
	}
}

type knowledgeRecordRequest struct {
	Link     string                 `json:"link" binding:"required,url"`
	Title    string                 `json:"title" binding:"required"`
	Channel  string                 `json:"channel" binding:"required"`
	Date     string                 `json:"date" binding:"required"`
	Summary  string                 `json:"summary"`
	Mentions []model.ProjectMention `json:"mentions"`
}

// CreateKnowledge handles bulk inserts of analysis records
// POST /api/knowledge
func (h *KnowledgeHandler) CreateKnowledge(c *gin.Context) {
	var request struct {
		Records []knowledgeRecordRequest `json:"records" binding:"required,min=1,dive"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	records := make([]model.KnowledgeRecord, 0, len(request.Records))
	for _, r := range request.Records {
		date, err := parseTimeParam(r.Date)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid date for "+r.Link+". Use YYYY-MM-DD or RFC3339")
			return
		}
		records = append(records, model.KnowledgeRecord{
			Link:     r.Link,
			Title:    r.Title,
			Channel:  r.Channel,
			Date:     date,
			Summary:  r.Summary,
			Mentions: r.Mentions,
		})
	}

	result, err := h.knowledgeService.Ingest(c.Request.Context(), records)
	if err != nil {
		h.logger.Error("Failed to ingest knowledge batch",
			zap.Error(err),
			zap.Int("records", len(records)))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to store knowledge records")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetKnowledge handles record retrieval with an optional aggregation summary
// GET /api/knowledge?channel=&from=&to=&limit=&summary=
func (h *KnowledgeHandler) GetKnowledge(c *gin.Context) {
	filter := model.KnowledgeFilter{
		Channel: c.Query("channel"),
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

	params := utils.ParsePaginationParams(c, 200, 1000)
	filter.Limit = params.Limit

	records, err := h.knowledgeService.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list knowledge records", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to get knowledge records")
		return
	}

	response := gin.H{
		"data":      records,
		"count":     len(records),
		"timestamp": time.Now(),
	}

	if c.Query("summary") == "true" {
		response["summary"] = h.knowledgeService.Summarize(records)
	}

	c.JSON(http.StatusOK, response)
}
