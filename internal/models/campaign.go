package models

import "time"

// Campaign is the database representation of a campaign. Requirements and
// deliverables are TEXT[] columns.
type Campaign struct {
	CampaignID    string    `db:"campaign_id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	AdvertiserID  string    `db:"advertiser_id"`
	CreatorID     *string   `db:"creator_id"`
	Budget        int64     `db:"budget"`
	Status        string    `db:"status"`
	PaymentStatus string    `db:"payment_status"`
	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	Requirements  []string  `db:"requirements"`
	Deliverables  []string  `db:"deliverables"`

	EscrowTransactionID     *string `db:"escrow_transaction_id"`
	PayoutTransactionID     *string `db:"payout_transaction_id"`
	RefundTransactionID     *string `db:"refund_transaction_id"`
	CommissionTransactionID *string `db:"commission_transaction_id"`

	AuditFields
}
