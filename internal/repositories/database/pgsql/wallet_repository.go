package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	"github.com/promopay/promopay_backend/internal/models"
	"github.com/promopay/promopay_backend/internal/utils/mapping"
)

const walletColumns = `wallet_id, owner_kind, owner_id, balance, pix_key, is_active, created_at, last_updated_at`

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet data.
func newPgxWalletRepository(pool *pgxpool.Pool) *PgxWalletRepository {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryFacade
var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.OwnerKind,
		&m.OwnerID,
		&m.Balance,
		&m.PixKey,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveWallet inserts a new wallet. The unique index on (owner_kind, owner_id)
// turns a second wallet for the same owner into ErrDuplicate.
func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	m := mapping.ToModelWallet(wallet)

	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.WalletID,
		m.OwnerKind,
		m.OwnerID,
		m.Balance,
		m.PixKey,
		m.IsActive,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return translateDBError(err, fmt.Sprintf("failed to save wallet %s", m.WalletID))
	}
	return nil
}

// FindWalletByID retrieves a wallet by its ID.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`

	m, err := scanWallet(r.Pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}

	wallet := mapping.ToDomainWallet(*m)
	return &wallet, nil
}

// FindWalletByOwner retrieves the wallet held by a directory party.
func (r *PgxWalletRepository) FindWalletByOwner(ctx context.Context, owner domain.OwnerRef) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_kind = $1 AND owner_id = $2;`

	m, err := scanWallet(r.Pool.QueryRow(ctx, query, string(owner.Kind), owner.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet for %s %s: %w", owner.Kind, owner.OwnerID, err)
	}

	wallet := mapping.ToDomainWallet(*m)
	return &wallet, nil
}

// FindPlatformWallet resolves the singleton custodial wallet.
func (r *PgxWalletRepository) FindPlatformWallet(ctx context.Context) (*domain.Wallet, error) {
	return r.FindWalletByOwner(ctx, domain.OwnerRef{Kind: domain.OwnerPlatform})
}

// DeactivateWallet flips the active flag; wallets are never deleted.
func (r *PgxWalletRepository) DeactivateWallet(ctx context.Context, walletID string, now time.Time) error {
	query := `UPDATE wallets SET is_active = FALSE, last_updated_at = $2 WHERE wallet_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, walletID, now)
	if err != nil {
		return fmt.Errorf("failed to deactivate wallet %s: %w", walletID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// findWalletsByIDsForUpdate locks the given wallet rows within tx and returns
// them keyed by ID. Rows are locked in sorted ID order by the caller passing
// a sorted slice, which keeps lock acquisition deterministic.
func (r *PgxWalletRepository) findWalletsByIDsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = ANY($1) ORDER BY wallet_id FOR UPDATE;`

	rows, err := tx.Query(ctx, query, walletIDs)
	if err != nil {
		return nil, translateDBError(err, "failed to lock wallets")
	}
	defer rows.Close()

	wallets := make(map[string]domain.Wallet, len(walletIDs))
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked wallet: %w", err)
		}
		wallets[m.WalletID] = mapping.ToDomainWallet(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, "failed to lock wallets")
	}

	for _, id := range walletIDs {
		if _, ok := wallets[id]; !ok {
			return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, id)
		}
	}
	return wallets, nil
}

// applyBalanceChangesInTx applies signed centavo deltas to already-locked
// wallet rows. The non-negative check constraint is the final guard against a
// debit below zero.
func (r *PgxWalletRepository) applyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]int64, now time.Time) error {
	query := `UPDATE wallets SET balance = balance + $2, last_updated_at = $3 WHERE wallet_id = $1;`

	for walletID, delta := range deltas {
		tag, err := tx.Exec(ctx, query, walletID, delta, now)
		if err != nil {
			return translateDBError(err, fmt.Sprintf("failed to apply balance change to wallet %s", walletID))
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, walletID)
		}
	}
	return nil
}
