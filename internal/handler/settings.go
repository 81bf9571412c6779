package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
)

// SettingsHandler serves the landing page content documents
type SettingsHandler struct {
	settings service.SettingsService
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	settings, err := h.settings.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetImages handles GET /images
func (h *SettingsHandler) GetImages(c *gin.Context) {
	images, err := h.settings.GetImages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// UpdateImages handles PUT /images
func (h *SettingsHandler) UpdateImages(c *gin.Context) {
	var patch model.ImagesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	images, err := h.settings.UpdateImages(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}
