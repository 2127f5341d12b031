package domain

import "time"

// TransactionKind classifies a value movement on the ledger.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"    // external money in
	KindWithdrawal TransactionKind = "WITHDRAWAL" // external money out
	KindEscrow     TransactionKind = "ESCROW"     // advertiser -> platform custody
	KindRelease    TransactionKind = "RELEASE"    // platform -> creator payout
	KindRefund     TransactionKind = "REFUND"     // platform -> advertiser payout
	KindCommission TransactionKind = "COMMISSION" // platform commission record
)

// TransactionStatus is the settlement state of a ledger entry.
// Every status other than PENDING is terminal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Terminal reports whether the status can no longer change.
func (s TransactionStatus) Terminal() bool {
	return s != StatusPending
}

// Transaction is an immutable record of one value movement.
// SourceWalletID is nil for external deposits, DestWalletID is nil for
// external withdrawals. ExternalRef is the identifier handed to the payment
// gateway and is unique across pending external legs; settlement looks the
// transaction up by it.
type Transaction struct {
	TransactionID    string            `json:"transactionID"` // Primary Key (UUID)
	SourceWalletID   *string           `json:"sourceWalletID"`
	DestWalletID     *string           `json:"destWalletID"`
	Amount           int64             `json:"amount"` // Positive, minor currency units
	Kind             TransactionKind   `json:"kind"`
	Status           TransactionStatus `json:"status"`
	CampaignID       *string           `json:"campaignID"`
	ExternalRef      *string           `json:"externalRef"`
	GatewayChargeID  *string           `json:"gatewayChargeID"`
	GatewayPaymentID *string           `json:"gatewayPaymentID"`
	Description      string            `json:"description"`
	CompletedAt      *time.Time        `json:"completedAt"`
	AuditFields
}

// Internal reports whether both legs of the movement live on the ledger.
// Internal transactions settle synchronously; external ones settle through
// the gateway's webhook.
func (t *Transaction) Internal() bool {
	return t.SourceWalletID != nil && t.DestWalletID != nil && t.ExternalRef == nil
}
