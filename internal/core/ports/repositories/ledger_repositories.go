package repositories

import (
	"context"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

// LedgerRepositoryFacade defines the atomic ledger operations. Each method is
// one all-or-nothing store transaction; a failed precondition leaves state
// byte-for-byte unchanged.
type LedgerRepositoryFacade interface {
	// SaveTransfer performs an internal transfer: it locks both wallets,
	// re-reads the source balance, applies the debit and credit, and inserts
	// the COMPLETED transaction record. Returns apperrors.ErrInsufficientFunds,
	// ErrNotFound, ErrWalletInactive or ErrContention without mutating state.
	SaveTransfer(ctx context.Context, txn domain.Transaction) error

	// SavePendingExternal records money expected to cross the gateway
	// boundary. Balances are untouched until settlement.
	SavePendingExternal(ctx context.Context, txn domain.Transaction) error

	// SettlePendingExternal resolves the unique PENDING transaction carrying
	// externalRef. On success it applies the balance mutation for the
	// transaction kind, marks it COMPLETED, and advances any linked campaign
	// in the same store transaction. On failure it marks the transaction
	// FAILED without touching balances. A non-empty kinds slice restricts
	// which transaction kinds may match; a kind mismatch behaves like a
	// missing row. When no matching PENDING transaction exists it returns
	// (nil, false, nil); duplicate deliveries are no-ops.
	SettlePendingExternal(ctx context.Context, externalRef string, success bool, kinds []domain.TransactionKind) (*domain.Transaction, bool, error)

	// CancelPendingExternal marks the matching PENDING transaction CANCELLED
	// without balance mutation (expired charges). kinds restricts matches as
	// in SettlePendingExternal. Missing rows are no-ops.
	CancelPendingExternal(ctx context.Context, externalRef string, kinds []domain.TransactionKind) (bool, error)

	// SetGatewayPaymentID stores the gateway's reference on a dispatched
	// transaction.
	SetGatewayPaymentID(ctx context.Context, transactionID, gatewayPaymentID string) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	FindTransactionByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error)

	// ListTransactionsByWallet returns history entries where the wallet is
	// either leg, newest first.
	ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.Transaction, error)
}
