package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/middleware"
	"github.com/promopay/promopay_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiLimiter *limiter.Limiter,
	webhookLimiter *limiter.Limiter,
) {
	registerCustomValidators()

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services, apiLimiter)
	setupWebhookRoutes(r, services, webhookLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1",
		middleware.RateLimit(apiLimiter),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)

	RegisterWalletRoutes(v1, services.Wallet)
	registerCampaignRoutes(v1, services.Campaign)
}

// setupWebhookRoutes configures the gateway webhook group. Webhooks carry
// their own HMAC authentication, so the JWT middleware stays off this group.
func setupWebhookRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	webhookLimiter *limiter.Limiter,
) {
	hooks := r.Group("", middleware.RateLimit(webhookLimiter))
	RegisterWebhookRoutes(hooks, services.Reconciler)
}
