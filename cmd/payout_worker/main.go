// The payout worker drains the payout retry queue and re-dispatches pending
// release and refund legs whose earlier gateway dispatch failed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promopay/promopay_backend/internal/adapters/gateway/transfeera"
	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/services"
	"github.com/promopay/promopay_backend/internal/middleware"
	"github.com/promopay/promopay_backend/internal/platform/config"
	"github.com/promopay/promopay_backend/internal/platform/queue"
	"github.com/promopay/promopay_backend/internal/repositories/database/pgsql"
	"github.com/promopay/promopay_backend/pkg/database"
)

// redeliveryBackoff is the pause after a gateway outage before the nacked
// message comes back around.
const redeliveryBackoff = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required for the payout worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)

	platformWallet, err := repos.WalletRepo.FindPlatformWallet(ctx)
	if err != nil {
		logger.Error("Failed to resolve platform wallet; run the API server once to bootstrap it", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gatewayClient := transfeera.NewClient(transfeera.Config{
		BaseURL:       cfg.TransfeeraBaseURL,
		LoginURL:      cfg.TransfeeraLoginURL,
		ClientID:      cfg.TransfeeraClientID,
		ClientSecret:  cfg.TransfeeraClientSecret,
		WebhookSecret: cfg.TransfeeraWebhookSecret,
	})

	retryQueue, err := queue.NewRabbitMQRetryQueue(cfg.RabbitMQURL, cfg.PayoutRetryQueue)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer retryQueue.Close()

	// No retry queue is injected here; a failed re-dispatch stays on the
	// broker via nack-requeue instead of being published a second time.
	campaignService := services.NewCampaignService(
		repos.CampaignRepo,
		repos.WalletRepo,
		repos.LedgerRepo,
		repos.PartyRepo,
		gatewayClient,
		nil,
		platformWallet.WalletID,
	)

	logger.Info("Payout worker consuming", slog.String("queue", cfg.PayoutRetryQueue))
	err = retryQueue.Consume(ctx, logger, func(ctx context.Context, campaignID string) error {
		err := campaignService.RetryPayout(middleware.WithLogger(ctx, logger), campaignID)
		if errors.Is(err, apperrors.ErrGatewayUnavailable) {
			// Back off before the broker redelivers, otherwise a gateway
			// outage turns into a hot loop.
			select {
			case <-time.After(redeliveryBackoff):
			case <-ctx.Done():
			}
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Payout worker shut down")
}
