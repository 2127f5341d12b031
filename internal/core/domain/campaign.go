package domain

import "time"

// CampaignStatus is the commercial lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft      CampaignStatus = "DRAFT"
	CampaignActive     CampaignStatus = "ACTIVE"
	CampaignAssigned   CampaignStatus = "ASSIGNED"
	CampaignInProgress CampaignStatus = "IN_PROGRESS"
	CampaignCompleted  CampaignStatus = "COMPLETED"
	CampaignCancelled  CampaignStatus = "CANCELLED"
	CampaignFailed     CampaignStatus = "FAILED"
)

// PaymentStatus tracks where the campaign budget sits. Transitions are
// monotonic along PENDING -> ESCROWED -> {RELEASED | REFUNDED}.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentEscrowed PaymentStatus = "ESCROWED"
	PaymentReleased PaymentStatus = "RELEASED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// CanAdvanceTo reports whether moving from p to next respects monotonicity.
func (p PaymentStatus) CanAdvanceTo(next PaymentStatus) bool {
	switch p {
	case PaymentPending:
		return next == PaymentEscrowed
	case PaymentEscrowed:
		return next == PaymentReleased || next == PaymentRefunded
	}
	return false
}

// Campaign is the commercial contract whose lifecycle drives escrow, release
// and refund. Budget is fixed at creation in minor currency units.
type Campaign struct {
	CampaignID    string         `json:"campaignID"` // Primary Key (UUID)
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	AdvertiserID  string         `json:"advertiserID"`
	CreatorID     *string        `json:"creatorID"` // Nil until assigned
	Budget        int64          `json:"budget"`    // Positive, minor currency units
	Status        CampaignStatus `json:"status"`
	PaymentStatus PaymentStatus  `json:"paymentStatus"`
	StartDate     time.Time      `json:"startDate"`
	EndDate       time.Time      `json:"endDate"`
	Requirements  []string       `json:"requirements"`
	Deliverables  []string       `json:"deliverables"`

	// Ledger links; set inside the same store transaction as the entries
	// they point at so the campaign and the ledger can never disagree.
	EscrowTransactionID     *string `json:"escrowTransactionID"`
	PayoutTransactionID     *string `json:"payoutTransactionID"`
	RefundTransactionID     *string `json:"refundTransactionID"`
	CommissionTransactionID *string `json:"commissionTransactionID"`

	AuditFields
}

// HasSettlementIntent reports whether a payout or refund has already been
// recorded against the escrowed budget. Exactly one of complete/fail may ever
// create such an intent.
func (c *Campaign) HasSettlementIntent() bool {
	return c.PayoutTransactionID != nil || c.RefundTransactionID != nil
}
