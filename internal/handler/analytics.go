package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/service"
)

// AnalyticsHandler records storefront traffic and serves the dashboard summary
type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates an AnalyticsHandler
func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func visitFrom(c *gin.Context) service.Visit {
	return service.Visit{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// TrackPageView handles POST /analytics/track/pageview
func (h *AnalyticsHandler) TrackPageView(c *gin.Context) {
	var req service.PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.analytics.TrackPageView(c.Request.Context(), visitFrom(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TrackAction handles POST /analytics/track/action
func (h *AnalyticsHandler) TrackAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.analytics.TrackAction(c.Request.Context(), visitFrom(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Overview handles GET /analytics/stats/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	var q service.OverviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	stats, err := h.analytics.Overview(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
