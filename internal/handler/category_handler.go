package handler

import (
	"net/http"

	"github.com/yourorg/crypto-dashboard/internal/service"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategoryHandler handles coin category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// GetCategories handles the category listing
// GET /api/categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	result, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get categories", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategory handles a single category with its coins
// GET /api/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID := c.Param("id")
	if categoryID == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Category ID is required")
		return
	}

	result, err := h.categoryService.Get(c.Request.Context(), categoryID)
	if err != nil {
		h.logger.Error("Failed to get category",
			zap.Error(err),
			zap.String("category_id", categoryID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, result)
}
