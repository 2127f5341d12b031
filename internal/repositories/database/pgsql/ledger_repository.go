package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	"github.com/promopay/promopay_backend/internal/models"
	"github.com/promopay/promopay_backend/internal/utils/mapping"
	"github.com/promopay/promopay_backend/internal/utils/payments"
)

const transactionColumns = `transaction_id, source_wallet_id, dest_wallet_id, amount, kind, status, campaign_id, external_ref, gateway_charge_id, gateway_payment_id, description, completed_at, created_at, last_updated_at`

type PgxLedgerRepository struct {
	BaseRepository
	walletRepo *PgxWalletRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries. The
// wallet repository is injected so balance mutation and transaction inserts
// share one database transaction.
func newPgxLedgerRepository(pool *pgxpool.Pool, walletRepo *PgxWalletRepository) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		walletRepo:     walletRepo,
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.SourceWalletID,
		&m.DestWalletID,
		&m.Amount,
		&m.Kind,
		&m.Status,
		&m.CampaignID,
		&m.ExternalRef,
		&m.GatewayChargeID,
		&m.GatewayPaymentID,
		&m.Description,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// insertTransactionInTx writes one immutable ledger entry inside tx.
func insertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.SourceWalletID,
		m.DestWalletID,
		m.Amount,
		m.Kind,
		m.Status,
		m.CampaignID,
		m.ExternalRef,
		m.GatewayChargeID,
		m.GatewayPaymentID,
		m.Description,
		m.CompletedAt,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return translateDBError(err, fmt.Sprintf("failed to insert transaction %s", m.TransactionID))
	}
	return nil
}

// transferDeltas is the balance effect of an internal transfer. Same-wallet
// entries (a platform commission) net to nothing.
func transferDeltas(txn domain.Transaction) map[string]int64 {
	deltas := make(map[string]int64, 2)
	deltas[*txn.SourceWalletID] -= txn.Amount
	deltas[*txn.DestWalletID] += txn.Amount
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

func sortedKeys(deltas map[string]int64) []string {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// applySettlementInTx locks the affected wallets and applies the deltas.
// Wallet locks are taken in sorted ID order so concurrent settlements cannot
// deadlock each other.
func (r *PgxLedgerRepository) applySettlementInTx(ctx context.Context, tx pgx.Tx, deltas map[string]int64, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	if _, err := r.walletRepo.findWalletsByIDsForUpdate(ctx, tx, sortedKeys(deltas)); err != nil {
		return err
	}
	return r.walletRepo.applyBalanceChangesInTx(ctx, tx, deltas, now)
}

// SaveTransfer performs an internal transfer as one database transaction:
// both wallet rows are locked, the source balance re-checked, the debit and
// credit applied and the COMPLETED entry inserted.
func (r *PgxLedgerRepository) SaveTransfer(ctx context.Context, txn domain.Transaction) error {
	if !txn.Internal() {
		return fmt.Errorf("%w: transfer must reference two internal wallets", apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	deltas := transferDeltas(txn)
	lockIDs := sortedKeys(deltas)
	if len(lockIDs) == 0 {
		// Same-wallet entry; lock the single row to verify it exists and is live.
		lockIDs = []string{*txn.SourceWalletID}
	}

	wallets, err := r.walletRepo.findWalletsByIDsForUpdate(ctx, tx, lockIDs)
	if err != nil {
		return err
	}
	for _, w := range wallets {
		if !w.IsActive {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrWalletInactive, w.WalletID)
		}
	}
	if source, ok := wallets[*txn.SourceWalletID]; ok && deltas[source.WalletID] < 0 {
		if source.Balance < txn.Amount {
			return fmt.Errorf("%w: wallet %s holds %d, needs %d", apperrors.ErrInsufficientFunds, source.WalletID, source.Balance, txn.Amount)
		}
	}

	now := txn.LastUpdatedAt
	if err := r.walletRepo.applyBalanceChangesInTx(ctx, tx, deltas, now); err != nil {
		return err
	}
	if err := insertTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SavePendingExternal records money expected to cross the gateway boundary.
// No wallet row is touched; the partial unique index on external_ref keeps
// pending references unambiguous.
func (r *PgxLedgerRepository) SavePendingExternal(ctx context.Context, txn domain.Transaction) error {
	if txn.Status != domain.StatusPending || txn.ExternalRef == nil {
		return fmt.Errorf("%w: external transaction must be PENDING with an external reference", apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// kindStrings converts a kind set to the text array pgx binds for ANY().
func kindStrings(kinds []domain.TransactionKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// SettlePendingExternal resolves the unique PENDING transaction carrying
// externalRef, restricted to the given kinds when non-empty. The row lock
// plus the PENDING guard make duplicate webhook deliveries no-ops: the second
// delivery finds no PENDING row and returns (nil, false, nil). A kind
// mismatch reports the same way, so an event family can never settle another
// family's leg.
func (r *PgxLedgerRepository) SettlePendingExternal(ctx context.Context, externalRef string, success bool, kinds []domain.TransactionKind) (*domain.Transaction, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE external_ref = $1 AND status = 'PENDING'
	`
	args := []any{externalRef}
	if len(kinds) > 0 {
		query += ` AND kind = ANY($2)`
		args = append(args, kindStrings(kinds))
	}
	query += ` FOR UPDATE;`
	m, err := scanTransaction(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, translateDBError(err, fmt.Sprintf("failed to lock pending transaction %s", externalRef))
	}
	txn := mapping.ToDomainTransaction(*m)

	now := time.Now().UTC()
	if success {
		deltas, err := payments.SettlementDeltas(&txn)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		if err := r.applySettlementInTx(ctx, tx, deltas, now); err != nil {
			return nil, false, err
		}

		updateQuery := `UPDATE transactions SET status = 'COMPLETED', completed_at = $2, last_updated_at = $2 WHERE transaction_id = $1;`
		if _, err := tx.Exec(ctx, updateQuery, txn.TransactionID, now); err != nil {
			return nil, false, translateDBError(err, fmt.Sprintf("failed to complete transaction %s", txn.TransactionID))
		}
		txn.Status = domain.StatusCompleted
		txn.CompletedAt = &now

		if txn.CampaignID != nil {
			if err := advanceCampaignInTx(ctx, tx, *txn.CampaignID, txn.Kind, now); err != nil {
				return nil, false, err
			}
		}
	} else {
		updateQuery := `UPDATE transactions SET status = 'FAILED', last_updated_at = $2 WHERE transaction_id = $1;`
		if _, err := tx.Exec(ctx, updateQuery, txn.TransactionID, now); err != nil {
			return nil, false, translateDBError(err, fmt.Sprintf("failed to mark transaction %s failed", txn.TransactionID))
		}
		txn.Status = domain.StatusFailed
	}
	txn.LastUpdatedAt = now

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	return &txn, true, nil
}

// advanceCampaignInTx moves a campaign to its settled terminal state inside
// the settlement's database transaction. The ESCROWED guard keeps the
// payment status monotonic even under redelivery races.
func advanceCampaignInTx(ctx context.Context, tx pgx.Tx, campaignID string, kind domain.TransactionKind, now time.Time) error {
	var query string
	switch kind {
	case domain.KindRelease:
		query = `UPDATE campaigns SET payment_status = 'RELEASED', status = 'COMPLETED', last_updated_at = $2 WHERE campaign_id = $1 AND payment_status = 'ESCROWED';`
	case domain.KindRefund:
		query = `UPDATE campaigns SET payment_status = 'REFUNDED', status = 'CANCELLED', last_updated_at = $2 WHERE campaign_id = $1 AND payment_status = 'ESCROWED';`
	default:
		// Deposits and withdrawals may reference a campaign for reporting;
		// they never drive its lifecycle.
		return nil
	}

	if _, err := tx.Exec(ctx, query, campaignID, now); err != nil {
		return translateDBError(err, fmt.Sprintf("failed to advance campaign %s", campaignID))
	}
	return nil
}

// CancelPendingExternal marks the matching PENDING transaction CANCELLED
// without balance mutation, restricted to the given kinds when non-empty.
// Missing rows and kind mismatches report (false, nil).
func (r *PgxLedgerRepository) CancelPendingExternal(ctx context.Context, externalRef string, kinds []domain.TransactionKind) (bool, error) {
	query := `UPDATE transactions SET status = 'CANCELLED', last_updated_at = $2 WHERE external_ref = $1 AND status = 'PENDING'`
	args := []any{externalRef, time.Now().UTC()}
	if len(kinds) > 0 {
		query += ` AND kind = ANY($3)`
		args = append(args, kindStrings(kinds))
	}
	query += `;`

	tag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return false, translateDBError(err, fmt.Sprintf("failed to cancel pending transaction %s", externalRef))
	}
	return tag.RowsAffected() > 0, nil
}

// SetGatewayPaymentID stores the gateway's reference on a dispatched
// transaction.
func (r *PgxLedgerRepository) SetGatewayPaymentID(ctx context.Context, transactionID, gatewayPaymentID string) error {
	query := `UPDATE transactions SET gateway_payment_id = $2, last_updated_at = $3 WHERE transaction_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, transactionID, gatewayPaymentID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set gateway payment id on transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// FindTransactionByExternalRef retrieves a transaction by the reference the
// gateway echoes back, regardless of settlement state.
func (r *PgxLedgerRepository) FindTransactionByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_ref = $1 ORDER BY created_at DESC LIMIT 1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, externalRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by external ref %s: %w", externalRef, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// ListTransactionsByWallet returns history entries where the wallet is either
// leg, newest first.
func (r *PgxLedgerRepository) ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_wallet_id = $1 OR dest_wallet_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}
	return txns, nil
}
