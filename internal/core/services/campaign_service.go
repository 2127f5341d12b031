package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/core/ports/gateway"
	portsqueue "github.com/promopay/promopay_backend/internal/core/ports/queue"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
	"github.com/promopay/promopay_backend/internal/utils/payments"
)

// campaignService owns the campaign escrow state machine and drives ledger
// operations at each transition. The platform wallet is resolved once at
// startup and injected, never looked up implicitly.
type campaignService struct {
	campaignRepo     portsrepo.CampaignRepositoryFacade
	walletRepo       portsrepo.WalletRepositoryFacade
	ledgerRepo       portsrepo.LedgerRepositoryFacade
	directory        portsrepo.PartyDirectoryFacade
	gateway          gateway.PaymentGateway
	retryQueue       portsqueue.PayoutRetryQueue // nil degrades to log-only alerting
	platformWalletID string
}

// NewCampaignService creates a new campaign escrow service.
func NewCampaignService(
	campaignRepo portsrepo.CampaignRepositoryFacade,
	walletRepo portsrepo.WalletRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	directory portsrepo.PartyDirectoryFacade,
	gw gateway.PaymentGateway,
	retryQueue portsqueue.PayoutRetryQueue,
	platformWalletID string,
) portssvc.CampaignSvcFacade {
	return &campaignService{
		campaignRepo:     campaignRepo,
		walletRepo:       walletRepo,
		ledgerRepo:       ledgerRepo,
		directory:        directory,
		gateway:          gw,
		retryQueue:       retryQueue,
		platformWalletID: platformWalletID,
	}
}

var _ portssvc.CampaignSvcFacade = (*campaignService)(nil)

// CreateCampaign creates a DRAFT campaign for an active advertiser.
func (s *campaignService) CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest) (*domain.Campaign, error) {
	logger := loggerFrom(ctx)

	advertiser, err := s.directory.FindPartyByID(ctx, req.AdvertiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve advertiser %s: %w", req.AdvertiserID, err)
	}
	if advertiser.Kind != domain.OwnerAdvertiser {
		return nil, fmt.Errorf("%w: party %s is not an advertiser", apperrors.ErrValidation, req.AdvertiserID)
	}
	if !advertiser.IsActive {
		return nil, fmt.Errorf("%w: advertiser %s is inactive", apperrors.ErrValidation, req.AdvertiserID)
	}

	now := time.Now().UTC()
	campaign := domain.Campaign{
		CampaignID:    uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		AdvertiserID:  req.AdvertiserID,
		Budget:        req.Budget,
		Status:        domain.CampaignDraft,
		PaymentStatus: domain.PaymentPending,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Requirements:  req.Requirements,
		Deliverables:  req.Deliverables,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.campaignRepo.SaveCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	logger.Info("Campaign created", slog.String("campaign_id", campaign.CampaignID), slog.Int64("budget", campaign.Budget))
	return &campaign, nil
}

// GetCampaign retrieves a campaign by ID.
func (s *campaignService) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}
	return campaign, nil
}

// ListCampaigns returns a filtered page of campaigns.
func (s *campaignService) ListCampaigns(ctx context.Context, params dto.ListCampaignsParams) (*dto.ListCampaignsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	campaigns, err := s.campaignRepo.ListCampaigns(ctx, portsrepo.ListCampaignsFilter{
		Status:       params.Status,
		AdvertiserID: params.AdvertiserID,
		CreatorID:    params.CreatorID,
		Limit:        limit,
		Offset:       params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return &dto.ListCampaignsResponse{
		Campaigns: dto.ToCampaignResponses(campaigns),
		Limit:     limit,
		Offset:    params.Offset,
	}, nil
}

// Publish escrows the full budget into the platform wallet and activates the
// campaign. The escrow transfer and the status flip share one store
// transaction; insufficient funds leave the campaign DRAFT with no
// transaction row.
func (s *campaignService) Publish(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	logger := loggerFrom(ctx)

	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}
	if campaign.Status != domain.CampaignDraft {
		return nil, fmt.Errorf("%w: campaign %s is %s, expected DRAFT", apperrors.ErrInvalidState, campaignID, campaign.Status)
	}

	advertiserWallet, err := s.walletRepo.FindWalletByOwner(ctx, domain.OwnerRef{Kind: domain.OwnerAdvertiser, OwnerID: campaign.AdvertiserID})
	if err != nil {
		return nil, fmt.Errorf("failed to find advertiser wallet: %w", err)
	}

	now := time.Now().UTC()
	escrowTxn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &advertiserWallet.WalletID,
		DestWalletID:   &s.platformWalletID,
		Amount:         campaign.Budget,
		Kind:           domain.KindEscrow,
		Status:         domain.StatusCompleted,
		CampaignID:     &campaign.CampaignID,
		Description:    fmt.Sprintf("Campaign escrow for: %s", campaign.Title),
		CompletedAt:    &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	var published *domain.Campaign
	err = withContentionRetry(ctx, logger, "publish", func() error {
		var innerErr error
		published, innerErr = s.campaignRepo.PublishWithEscrow(ctx, campaignID, escrowTxn)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Campaign published",
		slog.String("campaign_id", campaignID),
		slog.String("escrow_transaction_id", escrowTxn.TransactionID),
		slog.Int64("budget", campaign.Budget),
	)
	return published, nil
}

// AssignCreator attaches a creator to an ACTIVE campaign. No ledger effect.
func (s *campaignService) AssignCreator(ctx context.Context, campaignID, creatorID string) (*domain.Campaign, error) {
	logger := loggerFrom(ctx)

	creator, err := s.directory.FindPartyByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator %s: %w", creatorID, err)
	}
	if creator.Kind != domain.OwnerCreator {
		return nil, fmt.Errorf("%w: party %s is not a creator", apperrors.ErrValidation, creatorID)
	}
	if !creator.IsActive {
		return nil, fmt.Errorf("%w: creator %s is inactive", apperrors.ErrValidation, creatorID)
	}
	// The payout leg needs a creator wallet; require it up front rather than
	// failing at completion time.
	if _, err := s.walletRepo.FindWalletByOwner(ctx, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: creatorID}); err != nil {
		return nil, fmt.Errorf("creator %s has no wallet: %w", creatorID, err)
	}

	campaign, err := s.campaignRepo.AssignCreator(ctx, campaignID, creatorID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info("Creator assigned", slog.String("campaign_id", campaignID), slog.String("creator_id", creatorID))
	return campaign, nil
}

// Start moves an ASSIGNED campaign to IN_PROGRESS.
func (s *campaignService) Start(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.MarkInProgress(ctx, campaignID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	loggerFrom(ctx).Info("Campaign started", slog.String("campaign_id", campaignID))
	return campaign, nil
}

// Complete splits the escrowed budget, records the commission and the
// pending creator payout atomically, then dispatches the payout. The
// campaign only reaches RELEASED when the gateway confirms via webhook.
func (s *campaignService) Complete(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	logger := loggerFrom(ctx)

	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}
	if campaign.PaymentStatus != domain.PaymentEscrowed {
		return nil, fmt.Errorf("%w: campaign %s funds not in escrow", apperrors.ErrInvalidState, campaignID)
	}
	if campaign.CreatorID == nil {
		return nil, fmt.Errorf("%w: no creator assigned to campaign %s", apperrors.ErrInvalidState, campaignID)
	}

	creator, err := s.directory.FindPartyByID(ctx, *campaign.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}
	creatorWallet, err := s.walletRepo.FindWalletByOwner(ctx, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: *campaign.CreatorID})
	if err != nil {
		return nil, fmt.Errorf("failed to find creator wallet: %w", err)
	}

	creatorShare, commission := payments.SplitBudget(campaign.Budget)
	if creatorShare <= 0 {
		// Budgets under 5 centavos floor the creator share to zero.
		return nil, fmt.Errorf("%w: campaign budget %d too small to split", apperrors.ErrValidation, campaign.Budget)
	}
	now := time.Now().UTC()
	externalRef := uuid.NewString()

	commissionTxn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &s.platformWalletID,
		DestWalletID:   &s.platformWalletID,
		Amount:         commission,
		Kind:           domain.KindCommission,
		Status:         domain.StatusCompleted,
		CampaignID:     &campaign.CampaignID,
		Description:    fmt.Sprintf("Commission for campaign: %s", campaign.Title),
		CompletedAt:    &now,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	releaseTxn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &s.platformWalletID,
		DestWalletID:   &creatorWallet.WalletID,
		Amount:         creatorShare,
		Kind:           domain.KindRelease,
		Status:         domain.StatusPending,
		CampaignID:     &campaign.CampaignID,
		ExternalRef:    &externalRef,
		Description:    fmt.Sprintf("Payment for campaign: %s", campaign.Title),
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	err = withContentionRetry(ctx, logger, "complete", func() error {
		_, innerErr := s.campaignRepo.BeginPayout(ctx, campaignID, commissionTxn, releaseTxn)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payout intent recorded",
		slog.String("campaign_id", campaignID),
		slog.Int64("creator_share", creatorShare),
		slog.Int64("commission", commission),
	)

	if err := s.dispatchPayout(ctx, campaign.CampaignID, &releaseTxn, creator.PixKey, true); err != nil {
		return nil, err
	}

	completed, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload campaign %s: %w", campaignID, err)
	}
	return completed, nil
}

// Fail refunds the full escrowed budget to the advertiser. The campaign
// only reaches CANCELLED/REFUNDED when the gateway confirms.
func (s *campaignService) Fail(ctx context.Context, campaignID, reason string) (*domain.Campaign, error) {
	logger := loggerFrom(ctx)

	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}
	if campaign.PaymentStatus != domain.PaymentEscrowed {
		return nil, fmt.Errorf("%w: campaign %s funds not in escrow", apperrors.ErrInvalidState, campaignID)
	}

	advertiser, err := s.directory.FindPartyByID(ctx, campaign.AdvertiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve advertiser: %w", err)
	}
	advertiserWallet, err := s.walletRepo.FindWalletByOwner(ctx, domain.OwnerRef{Kind: domain.OwnerAdvertiser, OwnerID: campaign.AdvertiserID})
	if err != nil {
		return nil, fmt.Errorf("failed to find advertiser wallet: %w", err)
	}

	now := time.Now().UTC()
	externalRef := uuid.NewString()
	refundTxn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &s.platformWalletID,
		DestWalletID:   &advertiserWallet.WalletID,
		Amount:         campaign.Budget,
		Kind:           domain.KindRefund,
		Status:         domain.StatusPending,
		CampaignID:     &campaign.CampaignID,
		ExternalRef:    &externalRef,
		Description:    fmt.Sprintf("Refund for campaign: %s (%s)", campaign.Title, reason),
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	err = withContentionRetry(ctx, logger, "fail", func() error {
		_, innerErr := s.campaignRepo.BeginRefund(ctx, campaignID, refundTxn)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Refund intent recorded",
		slog.String("campaign_id", campaignID),
		slog.String("reason", reason),
		slog.Int64("amount", campaign.Budget),
	)

	if err := s.dispatchPayout(ctx, campaign.CampaignID, &refundTxn, advertiser.PixKey, false); err != nil {
		return nil, err
	}

	failed, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload campaign %s: %w", campaignID, err)
	}
	return failed, nil
}

// RetryPayout re-dispatches a linked PENDING release or refund whose earlier
// gateway dispatch failed. Already-dispatched or settled legs are no-ops.
func (s *campaignService) RetryPayout(ctx context.Context, campaignID string) error {
	logger := loggerFrom(ctx)

	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}

	var (
		txnID    string
		isPayout bool
	)
	switch {
	case campaign.PayoutTransactionID != nil:
		txnID, isPayout = *campaign.PayoutTransactionID, true
	case campaign.RefundTransactionID != nil:
		txnID, isPayout = *campaign.RefundTransactionID, false
	default:
		logger.Info("No payout or refund intent to retry", slog.String("campaign_id", campaignID))
		return nil
	}

	txn, err := s.ledgerRepo.FindTransactionByID(ctx, txnID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txnID, err)
	}
	if txn.Status != domain.StatusPending || txn.GatewayPaymentID != nil {
		logger.Info("Transaction already dispatched or settled, skipping retry",
			slog.String("transaction_id", txnID),
			slog.String("status", string(txn.Status)),
		)
		return nil
	}

	var partyID string
	if isPayout {
		if campaign.CreatorID == nil {
			return fmt.Errorf("%w: payout retry without assigned creator", apperrors.ErrInvalidState)
		}
		partyID = *campaign.CreatorID
	} else {
		partyID = campaign.AdvertiserID
	}
	party, err := s.directory.FindPartyByID(ctx, partyID)
	if err != nil {
		return fmt.Errorf("failed to resolve payee: %w", err)
	}

	return s.dispatchPayout(ctx, campaignID, txn, party.PixKey, isPayout)
}

// dispatchPayout sends a pending external leg to the gateway and records the
// acceptance. On gateway failure the transaction stays PENDING, the failure
// is logged for alerting and a re-dispatch is scheduled when a queue is
// configured.
func (s *campaignService) dispatchPayout(ctx context.Context, campaignID string, txn *domain.Transaction, pixKey string, isPayout bool) error {
	logger := loggerFrom(ctx)

	payout, err := s.gateway.CreatePayout(ctx, gateway.PayoutRequest{
		PixKey:      pixKey,
		Amount:      txn.Amount,
		ExternalID:  *txn.ExternalRef,
		Description: txn.Description,
	})
	if err != nil {
		logger.Error("Payout dispatch failed, transaction left pending for re-dispatch",
			slog.String("campaign_id", campaignID),
			slog.String("transaction_id", txn.TransactionID),
			slog.String("kind", string(txn.Kind)),
			slog.String("error", err.Error()),
		)
		if s.retryQueue != nil {
			if qErr := s.retryQueue.PublishRetry(ctx, campaignID); qErr != nil {
				logger.Error("Failed to schedule payout re-dispatch", slog.String("campaign_id", campaignID), slog.String("error", qErr.Error()))
			}
		}
		return err
	}

	now := time.Now().UTC()
	if isPayout {
		err = s.campaignRepo.MarkPayoutDispatched(ctx, campaignID, txn.TransactionID, payout.GatewayPaymentID, now)
	} else {
		err = s.campaignRepo.MarkRefundDispatched(ctx, campaignID, txn.TransactionID, payout.GatewayPaymentID, now)
	}
	if err != nil {
		return fmt.Errorf("failed to record dispatch acceptance: %w", err)
	}

	logger.Info("Payout dispatched",
		slog.String("campaign_id", campaignID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("gateway_payment_id", payout.GatewayPaymentID),
	)
	return nil
}
