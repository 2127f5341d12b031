package services

import (
	"context"

	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/dto"
)

// CampaignSvcFacade drives the campaign escrow state machine.
type CampaignSvcFacade interface {
	CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest) (*domain.Campaign, error)

	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	ListCampaigns(ctx context.Context, params dto.ListCampaignsParams) (*dto.ListCampaignsResponse, error)

	// Publish escrows the full budget from the advertiser wallet into the
	// platform wallet and activates the campaign. On
	// apperrors.ErrInsufficientFunds the campaign stays DRAFT untouched.
	Publish(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// AssignCreator attaches a content creator to an ACTIVE campaign.
	AssignCreator(ctx context.Context, campaignID, creatorID string) (*domain.Campaign, error)

	// Start moves an ASSIGNED campaign to IN_PROGRESS.
	Start(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// Complete splits the escrowed budget (commission retained, creator share
	// paid out through the gateway) and completes the campaign once the
	// dispatch is accepted. Exactly one of Complete/Fail can ever win.
	Complete(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// Fail refunds the full escrowed budget to the advertiser through the
	// gateway and cancels the campaign once the refund is confirmed.
	Fail(ctx context.Context, campaignID, reason string) (*domain.Campaign, error)

	// RetryPayout re-dispatches a linked PENDING release or refund whose
	// earlier gateway dispatch failed.
	RetryPayout(ctx context.Context, campaignID string) error
}
