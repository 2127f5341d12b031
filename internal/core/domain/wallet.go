package domain

// OwnerKind identifies which kind of party holds a wallet.
type OwnerKind string

const (
	OwnerAdvertiser OwnerKind = "ADVERTISER"
	OwnerCreator    OwnerKind = "CREATOR"
	OwnerPlatform   OwnerKind = "PLATFORM"
)

// Valid reports whether k is one of the known owner kinds.
func (k OwnerKind) Valid() bool {
	switch k {
	case OwnerAdvertiser, OwnerCreator, OwnerPlatform:
		return true
	}
	return false
}

// OwnerRef is the tagged owner of a wallet. Every consumer switches on Kind;
// the platform wallet has an empty OwnerID.
type OwnerRef struct {
	Kind    OwnerKind `json:"kind"`
	OwnerID string    `json:"ownerID"`
}

// Wallet represents one party's balance-holding account.
// Balances are integer centavos and are mutated only by the ledger engine;
// wallets are never deleted, only deactivated.
type Wallet struct {
	WalletID string   `json:"walletID"` // Primary Key (UUID)
	Owner    OwnerRef `json:"owner"`
	Balance  int64    `json:"balance"` // Minor currency units, never negative
	PixKey   string   `json:"pixKey"`  // Payout destination on the PIX rail
	IsActive bool     `json:"isActive"`
	AuditFields
}
