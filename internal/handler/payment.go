package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/service"
)

// PaymentHandler serves the PIX payment page
type PaymentHandler struct {
	payments service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// GeneratePix handles POST /payments/pix/generate?order_id=...
func (h *PaymentHandler) GeneratePix(c *gin.Context) {
	orderID := strings.TrimSpace(c.Query("order_id"))
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.Localize(c, i18n.ErrOrderIDRequired)})
		return
	}

	artifact, err := h.payments.GeneratePixPayment(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"pixCode":       artifact.PixCode,
		"qrCode":        artifact.QRCode,
		"transactionId": artifact.TransactionID,
		"expiresAt":     artifact.ExpiresAt,
		"testMode":      artifact.TestMode,
	})
}

// PixStatus handles GET /payments/pix/status/:order_id
func (h *PaymentHandler) PixStatus(c *gin.Context) {
	status, err := h.payments.CheckPixStatus(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
