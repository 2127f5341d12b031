package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promopay/promopay_backend/internal/apperrors"
)

// respondWithError maps an application error onto an HTTP status. Retryable
// conditions (contention, gateway outage) get statuses a client may retry;
// permanent rejections get 4xx with the reason.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidAmount):
		logger.Warn("Request rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrContention):
		logger.Warn("Storage contention persisted past retries", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "Operation conflicted with concurrent activity, please retry"})
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrWalletInactive),
		errors.Is(err, apperrors.ErrInvalidState):
		logger.Warn("Operation not allowed in current state", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		logger.Error("Payment gateway unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway unavailable, operation will be retried"})
	case errors.Is(err, apperrors.ErrAuthenticationFailed):
		logger.Warn("Authentication failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Access forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
