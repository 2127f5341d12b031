package repositories

import (
	"context"
	"time"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

// WalletRepositoryFacade defines persistence operations for wallets.
// Balance mutation never happens through this facade; it is owned by the
// ledger repository so the debit, credit and transaction record always share
// one store transaction.
type WalletRepositoryFacade interface {
	// SaveWallet inserts a new wallet. Returns apperrors.ErrDuplicate when the
	// owner already holds a wallet of that kind.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	FindWalletByOwner(ctx context.Context, owner domain.OwnerRef) (*domain.Wallet, error)

	// FindPlatformWallet resolves the singleton custodial wallet.
	FindPlatformWallet(ctx context.Context) (*domain.Wallet, error)

	// DeactivateWallet flips the active flag; wallets are never deleted.
	DeactivateWallet(ctx context.Context, walletID string, now time.Time) error
}
