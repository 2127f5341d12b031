package models

// Wallet is the database representation of a balance-holding account.
// Balance is stored as BIGINT centavos with a non-negative check constraint.
type Wallet struct {
	WalletID  string `db:"wallet_id"`
	OwnerKind string `db:"owner_kind"`
	OwnerID   string `db:"owner_id"` // Empty string for the platform wallet
	Balance   int64  `db:"balance"`
	PixKey    string `db:"pix_key"`
	IsActive  bool   `db:"is_active"`
	AuditFields
}
