package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/utils"
)

// CreateCampaignRequest defines the data needed to create a DRAFT campaign.
type CreateCampaignRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	AdvertiserID string    `json:"advertiserID" binding:"required,uuid"`
	Budget       int64     `json:"budget" binding:"required,gt=0"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	Requirements []string  `json:"requirements"`
	Deliverables []string  `json:"deliverables"`
}

// AssignCreatorRequest names the content creator taking the campaign.
type AssignCreatorRequest struct {
	CreatorID string `json:"creatorID" binding:"required,uuid"`
}

// FailCampaignRequest carries the abandonment reason.
type FailCampaignRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CampaignResponse defines the data returned for a campaign.
type CampaignResponse struct {
	CampaignID    string                `json:"campaignID"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	AdvertiserID  string                `json:"advertiserID"`
	CreatorID     *string               `json:"creatorID,omitempty"`
	Budget        int64                 `json:"budget"`
	BudgetBRL     decimal.Decimal       `json:"budgetBRL"`
	Status        domain.CampaignStatus `json:"status"`
	PaymentStatus domain.PaymentStatus  `json:"paymentStatus"`
	StartDate     time.Time             `json:"startDate"`
	EndDate       time.Time             `json:"endDate"`
	Requirements  []string              `json:"requirements"`
	Deliverables  []string              `json:"deliverables"`

	EscrowTransactionID     *string `json:"escrowTransactionID,omitempty"`
	PayoutTransactionID     *string `json:"payoutTransactionID,omitempty"`
	RefundTransactionID     *string `json:"refundTransactionID,omitempty"`
	CommissionTransactionID *string `json:"commissionTransactionID,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToCampaignResponse converts a domain.Campaign to its response DTO.
func ToCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		CampaignID:              c.CampaignID,
		Title:                   c.Title,
		Description:             c.Description,
		AdvertiserID:            c.AdvertiserID,
		CreatorID:               c.CreatorID,
		Budget:                  c.Budget,
		BudgetBRL:               utils.CentsToBRL(c.Budget),
		Status:                  c.Status,
		PaymentStatus:           c.PaymentStatus,
		StartDate:               c.StartDate,
		EndDate:                 c.EndDate,
		Requirements:            c.Requirements,
		Deliverables:            c.Deliverables,
		EscrowTransactionID:     c.EscrowTransactionID,
		PayoutTransactionID:     c.PayoutTransactionID,
		RefundTransactionID:     c.RefundTransactionID,
		CommissionTransactionID: c.CommissionTransactionID,
		CreatedAt:               c.CreatedAt,
		LastUpdatedAt:           c.LastUpdatedAt,
	}
}

// ToCampaignResponses converts a slice of campaigns.
func ToCampaignResponses(campaigns []domain.Campaign) []CampaignResponse {
	res := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		res[i] = ToCampaignResponse(&campaigns[i])
	}
	return res
}

// ListCampaignsParams defines query parameters for listing campaigns.
type ListCampaignsParams struct {
	Status       *domain.CampaignStatus `form:"status"`
	AdvertiserID *string                `form:"advertiserID"`
	CreatorID    *string                `form:"creatorID"`
	Limit        int                    `form:"limit,default=20"`
	Offset       int                    `form:"offset,default=0"`
}

// ListCampaignsResponse wraps a page of campaigns.
type ListCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}
