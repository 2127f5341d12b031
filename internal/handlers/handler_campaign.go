package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
	"github.com/promopay/promopay_backend/internal/middleware"
)

// campaignHandler handles HTTP requests related to campaigns.
type campaignHandler struct {
	campaignService portssvc.CampaignSvcFacade
}

// newCampaignHandler creates a new campaignHandler.
func newCampaignHandler(cs portssvc.CampaignSvcFacade) *campaignHandler {
	return &campaignHandler{campaignService: cs}
}

// registerCampaignRoutes registers routes related to campaigns.
func registerCampaignRoutes(rg *gin.RouterGroup, campaignService portssvc.CampaignSvcFacade) {
	h := newCampaignHandler(campaignService)

	campaigns := rg.Group("/campaigns")
	{
		campaigns.POST("", h.createCampaign)
		campaigns.GET("", h.listCampaigns)
		campaigns.GET("/:id", h.getCampaign)
		campaigns.POST("/:id/publish", h.publishCampaign)
		campaigns.POST("/:id/assign", h.assignCreator)
		campaigns.POST("/:id/start", h.startCampaign)
		campaigns.POST("/:id/complete", h.completeCampaign)
		campaigns.POST("/:id/fail", h.failCampaign)
		campaigns.POST("/:id/retry-payout", h.retryPayout)
	}
}

func (h *campaignHandler) createCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCampaign", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create campaign")
		return
	}

	logger.Info("Campaign created", slog.String("campaign_id", campaign.CampaignID))
	c.JSON(http.StatusCreated, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) listCampaigns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCampaignsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListCampaigns", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.campaignService.ListCampaigns(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list campaigns")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *campaignHandler) getCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve campaign")
		return
	}
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) publishCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	campaignID := c.Param("id")

	campaign, err := h.campaignService.Publish(c.Request.Context(), campaignID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to publish campaign")
		return
	}

	logger.Info("Campaign published", slog.String("campaign_id", campaignID))
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) assignCreator(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	campaignID := c.Param("id")

	var req dto.AssignCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AssignCreator", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	campaign, err := h.campaignService.AssignCreator(c.Request.Context(), campaignID, req.CreatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to assign creator")
		return
	}

	logger.Info("Creator assigned", slog.String("campaign_id", campaignID), slog.String("creator_id", req.CreatorID))
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) startCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	campaign, err := h.campaignService.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to start campaign")
		return
	}
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) completeCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	campaignID := c.Param("id")

	campaign, err := h.campaignService.Complete(c.Request.Context(), campaignID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to complete campaign")
		return
	}

	logger.Info("Campaign completed", slog.String("campaign_id", campaignID))
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) failCampaign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	campaignID := c.Param("id")

	var req dto.FailCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for FailCampaign", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	campaign, err := h.campaignService.Fail(c.Request.Context(), campaignID, req.Reason)
	if err != nil {
		respondWithError(c, logger, err, "Failed to fail campaign")
		return
	}

	logger.Info("Campaign failed, refund dispatched", slog.String("campaign_id", campaignID))
	c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *campaignHandler) retryPayout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	campaignID := c.Param("id")

	if err := h.campaignService.RetryPayout(c.Request.Context(), campaignID); err != nil {
		respondWithError(c, logger, err, "Failed to retry payout")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Payout re-dispatch accepted"})
}
