package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/middleware"
)

// maxWebhookBody bounds how much of a delivery is read before signature
// verification.
const maxWebhookBody = 1 << 20

// webhookHandler receives gateway deliveries. The raw body is handed to the
// reconciler untouched because the HMAC covers the exact bytes on the wire.
type webhookHandler struct {
	reconcilerService portssvc.ReconcilerSvcFacade
}

func newWebhookHandler(rs portssvc.ReconcilerSvcFacade) *webhookHandler {
	return &webhookHandler{reconcilerService: rs}
}

// RegisterWebhookRoutes registers the gateway webhook endpoint.
func RegisterWebhookRoutes(rg *gin.RouterGroup, reconcilerService portssvc.ReconcilerSvcFacade) {
	h := newWebhookHandler(reconcilerService)
	rg.POST("/webhooks/transfeera", h.handleGatewayWebhook)
}

func (h *webhookHandler) handleGatewayWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("X-Signature")
	if err := h.reconcilerService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		// A non-2xx makes the gateway redeliver; only transient failures
		// should land here.
		respondWithError(c, logger, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
