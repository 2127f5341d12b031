package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	"github.com/promopay/promopay_backend/internal/models"
	"github.com/promopay/promopay_backend/internal/utils/mapping"
)

const campaignColumns = `campaign_id, title, description, advertiser_id, creator_id, budget, status, payment_status, start_date, end_date, requirements, deliverables, escrow_transaction_id, payout_transaction_id, refund_transaction_id, commission_transaction_id, created_at, last_updated_at`

type PgxCampaignRepository struct {
	BaseRepository
	walletRepo *PgxWalletRepository
}

// newPgxCampaignRepository creates a new repository for campaign data. The
// wallet repository is injected because publishing couples the escrow
// transfer to the lifecycle flip in one database transaction.
func newPgxCampaignRepository(pool *pgxpool.Pool, walletRepo *PgxWalletRepository) *PgxCampaignRepository {
	return &PgxCampaignRepository{
		BaseRepository: BaseRepository{Pool: pool},
		walletRepo:     walletRepo,
	}
}

// Ensure PgxCampaignRepository implements portsrepo.CampaignRepositoryFacade
var _ portsrepo.CampaignRepositoryFacade = (*PgxCampaignRepository)(nil)

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var m models.Campaign
	err := row.Scan(
		&m.CampaignID,
		&m.Title,
		&m.Description,
		&m.AdvertiserID,
		&m.CreatorID,
		&m.Budget,
		&m.Status,
		&m.PaymentStatus,
		&m.StartDate,
		&m.EndDate,
		&m.Requirements,
		&m.Deliverables,
		&m.EscrowTransactionID,
		&m.PayoutTransactionID,
		&m.RefundTransactionID,
		&m.CommissionTransactionID,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveCampaign inserts a new campaign.
func (r *PgxCampaignRepository) SaveCampaign(ctx context.Context, campaign domain.Campaign) error {
	m := mapping.ToModelCampaign(campaign)

	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CampaignID,
		m.Title,
		m.Description,
		m.AdvertiserID,
		m.CreatorID,
		m.Budget,
		m.Status,
		m.PaymentStatus,
		m.StartDate,
		m.EndDate,
		m.Requirements,
		m.Deliverables,
		m.EscrowTransactionID,
		m.PayoutTransactionID,
		m.RefundTransactionID,
		m.CommissionTransactionID,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return translateDBError(err, fmt.Sprintf("failed to save campaign %s", m.CampaignID))
	}
	return nil
}

// FindCampaignByID retrieves a campaign by its ID.
func (r *PgxCampaignRepository) FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE campaign_id = $1;`

	m, err := scanCampaign(r.Pool.QueryRow(ctx, query, campaignID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find campaign %s: %w", campaignID, err)
	}

	campaign := mapping.ToDomainCampaign(*m)
	return &campaign, nil
}

// ListCampaigns returns a filtered page of campaigns, newest first.
func (r *PgxCampaignRepository) ListCampaigns(ctx context.Context, filter portsrepo.ListCampaignsFilter) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := make([]any, 0, 5)

	where := ""
	addClause := func(clause string, value any) {
		args = append(args, value)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += clause + "$" + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		addClause("status = ", string(*filter.Status))
	}
	if filter.AdvertiserID != nil {
		addClause("advertiser_id = ", *filter.AdvertiserID)
	}
	if filter.CreatorID != nil {
		addClause("creator_id = ", *filter.CreatorID)
	}

	args = append(args, filter.Limit, filter.Offset)
	query += where + fmt.Sprintf(" ORDER BY created_at DESC, campaign_id DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		m, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, mapping.ToDomainCampaign(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// lockCampaignInTx loads the campaign row under FOR UPDATE.
func lockCampaignInTx(ctx context.Context, tx pgx.Tx, campaignID string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE campaign_id = $1 FOR UPDATE;`

	m, err := scanCampaign(tx.QueryRow(ctx, query, campaignID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, translateDBError(err, fmt.Sprintf("failed to lock campaign %s", campaignID))
	}

	campaign := mapping.ToDomainCampaign(*m)
	return &campaign, nil
}

// PublishWithEscrow guards Status=DRAFT, performs the escrow transfer and
// flips the campaign to ACTIVE/ESCROWED, all in one database transaction.
// Insufficient advertiser funds abort before any write.
func (r *PgxCampaignRepository) PublishWithEscrow(ctx context.Context, campaignID string, escrowTxn domain.Transaction) (*domain.Campaign, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	campaign, err := lockCampaignInTx(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignDraft {
		return nil, fmt.Errorf("%w: campaign %s is %s, expected DRAFT", apperrors.ErrInvalidState, campaignID, campaign.Status)
	}

	deltas := transferDeltas(escrowTxn)
	wallets, err := r.walletRepo.findWalletsByIDsForUpdate(ctx, tx, sortedKeys(deltas))
	if err != nil {
		return nil, err
	}
	source := wallets[*escrowTxn.SourceWalletID]
	if !source.IsActive {
		return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrWalletInactive, source.WalletID)
	}
	if source.Balance < escrowTxn.Amount {
		return nil, fmt.Errorf("%w: wallet %s holds %d, needs %d", apperrors.ErrInsufficientFunds, source.WalletID, source.Balance, escrowTxn.Amount)
	}

	now := escrowTxn.LastUpdatedAt
	if err := r.walletRepo.applyBalanceChangesInTx(ctx, tx, deltas, now); err != nil {
		return nil, err
	}
	if err := insertTransactionInTx(ctx, tx, escrowTxn); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE campaigns
		SET status = 'ACTIVE', payment_status = 'ESCROWED', escrow_transaction_id = $2, last_updated_at = $3
		WHERE campaign_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, campaignID, escrowTxn.TransactionID, now); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("failed to activate campaign %s", campaignID))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	campaign.Status = domain.CampaignActive
	campaign.PaymentStatus = domain.PaymentEscrowed
	campaign.EscrowTransactionID = &escrowTxn.TransactionID
	campaign.LastUpdatedAt = now
	return campaign, nil
}

// AssignCreator guards Status=ACTIVE and sets the creator.
func (r *PgxCampaignRepository) AssignCreator(ctx context.Context, campaignID, creatorID string, now time.Time) (*domain.Campaign, error) {
	query := `
		UPDATE campaigns
		SET creator_id = $2, status = 'ASSIGNED', last_updated_at = $3
		WHERE campaign_id = $1 AND status = 'ACTIVE'
		RETURNING ` + campaignColumns + `;
	`
	m, err := scanCampaign(r.Pool.QueryRow(ctx, query, campaignID, creatorID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionConflict(ctx, campaignID, "ACTIVE")
		}
		return nil, translateDBError(err, fmt.Sprintf("failed to assign creator to campaign %s", campaignID))
	}

	campaign := mapping.ToDomainCampaign(*m)
	return &campaign, nil
}

// MarkInProgress guards Status=ASSIGNED.
func (r *PgxCampaignRepository) MarkInProgress(ctx context.Context, campaignID string, now time.Time) (*domain.Campaign, error) {
	query := `
		UPDATE campaigns
		SET status = 'IN_PROGRESS', last_updated_at = $2
		WHERE campaign_id = $1 AND status = 'ASSIGNED'
		RETURNING ` + campaignColumns + `;
	`
	m, err := scanCampaign(r.Pool.QueryRow(ctx, query, campaignID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionConflict(ctx, campaignID, "ASSIGNED")
		}
		return nil, translateDBError(err, fmt.Sprintf("failed to start campaign %s", campaignID))
	}

	campaign := mapping.ToDomainCampaign(*m)
	return &campaign, nil
}

// transitionConflict disambiguates a guarded zero-row update: the campaign is
// either missing or in the wrong state.
func (r *PgxCampaignRepository) transitionConflict(ctx context.Context, campaignID, expected string) error {
	campaign, err := r.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: campaign %s is %s, expected %s", apperrors.ErrInvalidState, campaignID, campaign.Status, expected)
}

// BeginPayout records the payout intent: the COMPLETED commission entry and
// the PENDING release entry, linked on the campaign row, in one database
// transaction. The row lock plus the no-prior-intent guard give a
// complete/fail race exactly one winner.
func (r *PgxCampaignRepository) BeginPayout(ctx context.Context, campaignID string, commissionTxn, releaseTxn domain.Transaction) (*domain.Campaign, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	campaign, err := r.guardSettlementIntent(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID == nil {
		return nil, fmt.Errorf("%w: no creator assigned to campaign %s", apperrors.ErrInvalidState, campaignID)
	}

	if err := insertTransactionInTx(ctx, tx, commissionTxn); err != nil {
		return nil, err
	}
	if err := insertTransactionInTx(ctx, tx, releaseTxn); err != nil {
		return nil, err
	}

	now := releaseTxn.LastUpdatedAt
	updateQuery := `
		UPDATE campaigns
		SET payout_transaction_id = $2, commission_transaction_id = $3, last_updated_at = $4
		WHERE campaign_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, campaignID, releaseTxn.TransactionID, commissionTxn.TransactionID, now); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("failed to link payout on campaign %s", campaignID))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	campaign.PayoutTransactionID = &releaseTxn.TransactionID
	campaign.CommissionTransactionID = &commissionTxn.TransactionID
	campaign.LastUpdatedAt = now
	return campaign, nil
}

// BeginRefund is the refund counterpart of BeginPayout.
func (r *PgxCampaignRepository) BeginRefund(ctx context.Context, campaignID string, refundTxn domain.Transaction) (*domain.Campaign, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	campaign, err := r.guardSettlementIntent(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := insertTransactionInTx(ctx, tx, refundTxn); err != nil {
		return nil, err
	}

	now := refundTxn.LastUpdatedAt
	updateQuery := `UPDATE campaigns SET refund_transaction_id = $2, last_updated_at = $3 WHERE campaign_id = $1;`
	if _, err := tx.Exec(ctx, updateQuery, campaignID, refundTxn.TransactionID, now); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("failed to link refund on campaign %s", campaignID))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	campaign.RefundTransactionID = &refundTxn.TransactionID
	campaign.LastUpdatedAt = now
	return campaign, nil
}

// guardSettlementIntent locks the campaign and verifies the budget is still
// escrowed with no payout or refund already recorded against it.
func (r *PgxCampaignRepository) guardSettlementIntent(ctx context.Context, tx pgx.Tx, campaignID string) (*domain.Campaign, error) {
	campaign, err := lockCampaignInTx(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.PaymentStatus != domain.PaymentEscrowed {
		return nil, fmt.Errorf("%w: campaign %s funds are %s, expected ESCROWED", apperrors.ErrInvalidState, campaignID, campaign.PaymentStatus)
	}
	if campaign.HasSettlementIntent() {
		return nil, fmt.Errorf("%w: campaign %s already has a settlement intent", apperrors.ErrInvalidState, campaignID)
	}
	return campaign, nil
}

// MarkPayoutDispatched records gateway acceptance of the release leg and
// moves the campaign to COMPLETED. Payment status stays ESCROWED until the
// webhook confirms.
func (r *PgxCampaignRepository) MarkPayoutDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error {
	return r.markDispatched(ctx, campaignID, transactionID, gatewayPaymentID, "COMPLETED", now)
}

// MarkRefundDispatched records gateway acceptance of the refund leg and moves
// the campaign to FAILED. It becomes CANCELLED/REFUNDED on webhook
// confirmation.
func (r *PgxCampaignRepository) MarkRefundDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error {
	return r.markDispatched(ctx, campaignID, transactionID, gatewayPaymentID, "FAILED", now)
}

func (r *PgxCampaignRepository) markDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID, campaignStatus string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	txnQuery := `UPDATE transactions SET gateway_payment_id = $2, last_updated_at = $3 WHERE transaction_id = $1;`
	tag, err := tx.Exec(ctx, txnQuery, transactionID, gatewayPaymentID, now)
	if err != nil {
		return translateDBError(err, fmt.Sprintf("failed to record gateway ref on transaction %s", transactionID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}

	// The payment-status guard keeps a webhook that already settled the leg
	// from being overwritten with a pre-settlement status.
	campaignQuery := `UPDATE campaigns SET status = $2, last_updated_at = $3 WHERE campaign_id = $1 AND payment_status = 'ESCROWED';`
	if _, err := tx.Exec(ctx, campaignQuery, campaignID, campaignStatus, now); err != nil {
		return translateDBError(err, fmt.Sprintf("failed to mark campaign %s dispatched", campaignID))
	}

	return r.Commit(ctx, tx)
}
