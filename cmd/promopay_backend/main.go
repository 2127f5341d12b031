package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/promopay/promopay_backend/internal/adapters/gateway/transfeera"
	portsqueue "github.com/promopay/promopay_backend/internal/core/ports/queue"
	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/core/services"
	"github.com/promopay/promopay_backend/internal/handlers"
	"github.com/promopay/promopay_backend/internal/middleware"
	"github.com/promopay/promopay_backend/internal/platform/config"
	"github.com/promopay/promopay_backend/internal/platform/queue"
	"github.com/promopay/promopay_backend/internal/platform/ratelimit"
	"github.com/promopay/promopay_backend/internal/repositories/database/pgsql"
	"github.com/promopay/promopay_backend/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	platformWallet, err := pgsql.EnsurePlatformWallet(ctx, repos.WalletRepo, cfg.PlatformPixKey)
	if err != nil {
		logger.Error("Failed to bootstrap platform wallet", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Platform wallet ready", slog.String("wallet_id", platformWallet.WalletID))

	gatewayClient := transfeera.NewClient(transfeera.Config{
		BaseURL:       cfg.TransfeeraBaseURL,
		LoginURL:      cfg.TransfeeraLoginURL,
		ClientID:      cfg.TransfeeraClientID,
		ClientSecret:  cfg.TransfeeraClientSecret,
		WebhookSecret: cfg.TransfeeraWebhookSecret,
	})

	var retryQueue portsqueue.PayoutRetryQueue
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQRetryQueue(cfg.RabbitMQURL, cfg.PayoutRetryQueue)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rabbit.Close()
		retryQueue = rabbit
		logger.Info("Payout retry queue connected", slog.String("queue", cfg.PayoutRetryQueue))
	}

	walletService := services.NewWalletService(repos.WalletRepo, repos.LedgerRepo, repos.PartyRepo, gatewayClient)
	campaignService := services.NewCampaignService(
		repos.CampaignRepo,
		repos.WalletRepo,
		repos.LedgerRepo,
		repos.PartyRepo,
		gatewayClient,
		retryQueue,
		platformWallet.WalletID,
	)
	reconcilerService := services.NewReconcilerService(repos.LedgerRepo, gatewayClient)

	serviceContainer := &portssvc.ServiceContainer{
		Wallet:     walletService,
		Campaign:   campaignService,
		Reconciler: reconcilerService,
	}

	apiLimiter, err := ratelimit.NewLimiter(cfg.APIRateLimit, cfg.RedisURL, "ratelimit:api")
	if err != nil {
		logger.Error("Failed to build API rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	webhookLimiter, err := ratelimit.NewLimiter(cfg.WebhookRateLimit, cfg.RedisURL, "ratelimit:webhook")
	if err != nil {
		logger.Error("Failed to build webhook rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, apiLimiter, webhookLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
