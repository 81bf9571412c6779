package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/service"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body
const SignatureHeader = "X-Webhook-Signature"

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	webhooks service.WebhookService
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(webhooks service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// OrionPay handles POST /webhooks/orionpay
func (h *WebhookHandler) OrionPay(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.Localize(c, i18n.ErrInvalidPayload)})
		return
	}

	result, err := h.webhooks.HandleOrionPay(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Probe handles GET /webhooks/orionpay/test
func (h *WebhookHandler) Probe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "OrionPay webhook endpoint is reachable",
	})
}
