package domain

// Party is a directory entry for an advertiser or content creator.
// Registration and profile management live outside this service; the ledger
// trusts the directory for payout destinations and active flags.
type Party struct {
	PartyID  string    `json:"partyID"` // Primary Key (UUID)
	Kind     OwnerKind `json:"kind"`
	Name     string    `json:"name"`
	Document string    `json:"document"` // CPF/CNPJ
	Email    string    `json:"email"`
	PixKey   string    `json:"pixKey"`
	IsActive bool      `json:"isActive"`
	AuditFields
}
