package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string
	JWTIssuer    string

	// Transfeera gateway
	TransfeeraBaseURL       string
	TransfeeraLoginURL      string
	TransfeeraClientID      string
	TransfeeraClientSecret  string
	TransfeeraWebhookSecret string

	// Platform identity used on the gateway side
	PlatformPixKey string

	// Rate limiting; redis is optional, memory store is the fallback
	RedisURL         string
	APIRateLimit     string
	WebhookRateLimit string

	// Payout re-dispatch worker
	RabbitMQURL      string
	PayoutRetryQueue string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "promopay-backend")
	viper.SetDefault("TRANSFEERA_BASE_URL", "https://api-sandbox.transfeera.com")
	viper.SetDefault("TRANSFEERA_LOGIN_URL", "https://login-api-sandbox.transfeera.com/authorization")
	viper.SetDefault("TRANSFEERA_CLIENT_ID", "")
	viper.SetDefault("TRANSFEERA_CLIENT_SECRET", "")
	viper.SetDefault("TRANSFEERA_WEBHOOK_SECRET", "")
	viper.SetDefault("PLATFORM_PIX_KEY", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("API_RATE_LIMIT", "100-M")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "600-M")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("PAYOUT_RETRY_QUEUE", "payout.retry")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.TransfeeraBaseURL = viper.GetString("TRANSFEERA_BASE_URL")
	cfg.TransfeeraLoginURL = viper.GetString("TRANSFEERA_LOGIN_URL")
	cfg.TransfeeraClientID = viper.GetString("TRANSFEERA_CLIENT_ID")
	cfg.TransfeeraClientSecret = viper.GetString("TRANSFEERA_CLIENT_SECRET")
	cfg.TransfeeraWebhookSecret = viper.GetString("TRANSFEERA_WEBHOOK_SECRET")
	if cfg.TransfeeraClientID == "" || cfg.TransfeeraClientSecret == "" {
		log.Println("Warning: Transfeera credentials not set. Gateway calls will fail.")
	}
	if cfg.TransfeeraWebhookSecret == "" {
		log.Println("Warning: TRANSFEERA_WEBHOOK_SECRET not set. Webhook deliveries will be rejected.")
	}

	cfg.PlatformPixKey = viper.GetString("PLATFORM_PIX_KEY")

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.APIRateLimit = viper.GetString("API_RATE_LIMIT")
	cfg.WebhookRateLimit = viper.GetString("WEBHOOK_RATE_LIMIT")

	cfg.RabbitMQURL = viper.GetString("RABBITMQ_URL")
	cfg.PayoutRetryQueue = viper.GetString("PAYOUT_RETRY_QUEUE")
	if cfg.RabbitMQURL == "" {
		log.Println("Warning: RABBITMQ_URL not set. Failed payouts will only be logged, not queued for re-dispatch.")
	}

	return cfg, nil
}
