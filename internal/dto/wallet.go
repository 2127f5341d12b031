package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/utils"
)

// OpenWalletRequest defines the data needed to open a wallet for a party.
type OpenWalletRequest struct {
	OwnerKind domain.OwnerKind `json:"ownerKind" binding:"required,oneof=ADVERTISER CREATOR"`
	OwnerID   string           `json:"ownerID" binding:"required,uuid"`
	PixKey    string           `json:"pixKey" binding:"required,pixkey"`
}

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID   string           `json:"walletID"`
	OwnerKind  domain.OwnerKind `json:"ownerKind"`
	OwnerID    string           `json:"ownerID"`
	Balance    int64            `json:"balance"`
	BalanceBRL decimal.Decimal  `json:"balanceBRL"`
	PixKey     string           `json:"pixKey"`
	IsActive   bool             `json:"isActive"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// ToWalletResponse converts a domain.Wallet to its response DTO.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:   w.WalletID,
		OwnerKind:  w.Owner.Kind,
		OwnerID:    w.Owner.OwnerID,
		Balance:    w.Balance,
		BalanceBRL: utils.CentsToBRL(w.Balance),
		PixKey:     w.PixKey,
		IsActive:   w.IsActive,
		CreatedAt:  w.CreatedAt,
	}
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	WalletID   string          `json:"walletID"`
	Balance    int64           `json:"balance"`
	BalanceBRL decimal.Decimal `json:"balanceBRL"`
}

// DepositRequest asks for a PIX charge that funds the wallet once paid.
type DepositRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

// DepositResponse returns the pending transaction plus the charge details
// the payer needs.
type DepositResponse struct {
	Transaction  TransactionResponse `json:"transaction"`
	ChargeID     string              `json:"chargeID"`
	QRCode       string              `json:"qrCode"`
	PixCopyPaste string              `json:"pixCopyPaste"`
}

// WithdrawRequest asks for a payout of wallet funds to the owner's PIX key.
type WithdrawRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID  string                   `json:"transactionID"`
	SourceWalletID *string                  `json:"sourceWalletID,omitempty"`
	DestWalletID   *string                  `json:"destWalletID,omitempty"`
	Amount         int64                    `json:"amount"`
	AmountBRL      decimal.Decimal          `json:"amountBRL"`
	Kind           domain.TransactionKind   `json:"kind"`
	Status         domain.TransactionStatus `json:"status"`
	CampaignID     *string                  `json:"campaignID,omitempty"`
	ExternalRef    *string                  `json:"externalRef,omitempty"`
	Description    string                   `json:"description"`
	CreatedAt      time.Time                `json:"createdAt"`
	CompletedAt    *time.Time               `json:"completedAt,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  t.TransactionID,
		SourceWalletID: t.SourceWalletID,
		DestWalletID:   t.DestWalletID,
		Amount:         t.Amount,
		AmountBRL:      utils.CentsToBRL(t.Amount),
		Kind:           t.Kind,
		Status:         t.Status,
		CampaignID:     t.CampaignID,
		ExternalRef:    t.ExternalRef,
		Description:    t.Description,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for wallet history.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListTransactionsResponse wraps a page of wallet history.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
