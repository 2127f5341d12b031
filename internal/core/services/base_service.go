package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/middleware"
)

// maxContentionRetries bounds how often a serialization or deadlock failure
// is retried before apperrors.ErrContention surfaces to the caller.
const maxContentionRetries = 3

// withContentionRetry runs fn, transparently retrying when the store reports
// contention. Any other error, including success, returns immediately.
func withContentionRetry(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxContentionRetries; attempt++ {
		err = fn()
		if !errors.Is(err, apperrors.ErrContention) {
			return err
		}
		logger.Warn("Retrying after storage contention", slog.String("operation", op), slog.Int("attempt", attempt))
	}
	return err
}

// loggerFrom is a shorthand for the request-scoped logger.
func loggerFrom(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}
