package models

import "time"

// Transaction is the database representation of one ledger entry.
// Nullable columns map to pointers; external_ref carries a partial unique
// index over PENDING rows so settlement can never double-apply.
type Transaction struct {
	TransactionID    string     `db:"transaction_id"`
	SourceWalletID   *string    `db:"source_wallet_id"`
	DestWalletID     *string    `db:"dest_wallet_id"`
	Amount           int64      `db:"amount"`
	Kind             string     `db:"kind"`
	Status           string     `db:"status"`
	CampaignID       *string    `db:"campaign_id"`
	ExternalRef      *string    `db:"external_ref"`
	GatewayChargeID  *string    `db:"gateway_charge_id"`
	GatewayPaymentID *string    `db:"gateway_payment_id"`
	Description      string     `db:"description"`
	CompletedAt      *time.Time `db:"completed_at"`
	AuditFields
}
