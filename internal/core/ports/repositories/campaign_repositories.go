package repositories

import (
	"context"
	"time"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

// ListCampaignsFilter narrows a campaign listing.
type ListCampaignsFilter struct {
	Status       *domain.CampaignStatus
	AdvertiserID *string
	CreatorID    *string
	Limit        int
	Offset       int
}

// CampaignRepositoryFacade defines persistence for campaigns. The methods
// that couple a lifecycle transition to a ledger write (PublishWithEscrow,
// BeginPayout, BeginRefund) execute both inside one store transaction with
// the campaign row locked, so concurrent transitions see exactly one winner.
type CampaignRepositoryFacade interface {
	SaveCampaign(ctx context.Context, campaign domain.Campaign) error

	FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error)

	ListCampaigns(ctx context.Context, filter ListCampaignsFilter) ([]domain.Campaign, error)

	// PublishWithEscrow guards Status=DRAFT, performs the escrow transfer
	// (advertiser wallet -> platform wallet) and flips the campaign to
	// ACTIVE/ESCROWED with the escrow transaction linked, atomically.
	// ErrInsufficientFunds leaves the campaign DRAFT with no transaction row.
	PublishWithEscrow(ctx context.Context, campaignID string, escrowTxn domain.Transaction) (*domain.Campaign, error)

	// AssignCreator guards Status=ACTIVE and sets the creator.
	AssignCreator(ctx context.Context, campaignID, creatorID string, now time.Time) (*domain.Campaign, error)

	// MarkInProgress guards Status=ASSIGNED.
	MarkInProgress(ctx context.Context, campaignID string, now time.Time) (*domain.Campaign, error)

	// BeginPayout guards PaymentStatus=ESCROWED, a creator being assigned and
	// no prior settlement intent. It inserts the COMPLETED commission record
	// and the PENDING release transaction and links both on the campaign, all
	// in one store transaction. The loser of a complete/fail race gets
	// apperrors.ErrInvalidState.
	BeginPayout(ctx context.Context, campaignID string, commissionTxn, releaseTxn domain.Transaction) (*domain.Campaign, error)

	// BeginRefund is the refund counterpart of BeginPayout: PENDING refund
	// transaction for the full budget, linked on the campaign.
	BeginRefund(ctx context.Context, campaignID string, refundTxn domain.Transaction) (*domain.Campaign, error)

	// MarkPayoutDispatched records gateway acceptance of the release leg:
	// stores the gateway payment id on the transaction and moves the campaign
	// to COMPLETED. Payment status stays ESCROWED until the webhook confirms.
	MarkPayoutDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error

	// MarkRefundDispatched records gateway acceptance of the refund leg. The
	// campaign only becomes CANCELLED/REFUNDED on webhook confirmation.
	MarkRefundDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error
}
