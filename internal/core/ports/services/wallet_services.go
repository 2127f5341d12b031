package services

import (
	"context"

	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/dto"
)

// WalletSvcFacade is the wallet ledger engine: it owns every balance
// mutation and every transaction record.
type WalletSvcFacade interface {
	// OpenWallet creates a balance-0 wallet for an active directory party.
	// Returns apperrors.ErrDuplicate if the owner already has one.
	OpenWallet(ctx context.Context, req dto.OpenWalletRequest) (*domain.Wallet, error)

	GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error)

	GetBalance(ctx context.Context, walletID string) (int64, error)

	// Transfer atomically moves amount between two internal wallets and
	// records a COMPLETED transaction. Contention is retried a bounded number
	// of times before surfacing apperrors.ErrContention.
	Transfer(ctx context.Context, sourceWalletID, destWalletID string, amount int64, kind domain.TransactionKind, campaignID *string) (*domain.Transaction, error)

	// RecordPendingExternal creates a PENDING transaction for money expected
	// to cross the gateway boundary; balances are untouched.
	RecordPendingExternal(ctx context.Context, walletID string, amount int64, kind domain.TransactionKind, externalRef string) (*domain.Transaction, error)

	// SettlePendingExternal applies a gateway outcome to the matching PENDING
	// transaction. A missing match is a no-op, not an error.
	SettlePendingExternal(ctx context.Context, externalRef string, success bool) (*domain.Transaction, bool, error)

	// InitiateDeposit records a PENDING deposit and creates the PIX charge
	// the payer settles.
	InitiateDeposit(ctx context.Context, walletID string, req dto.DepositRequest) (*dto.DepositResponse, error)

	// InitiateWithdrawal records a balance-checked PENDING withdrawal and
	// dispatches the payout to the owner's PIX key.
	InitiateWithdrawal(ctx context.Context, walletID string, req dto.WithdrawRequest) (*domain.Transaction, error)

	ListTransactions(ctx context.Context, walletID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
