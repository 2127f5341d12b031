package models

// Party is the database representation of a directory entry.
type Party struct {
	PartyID  string `db:"party_id"`
	Kind     string `db:"kind"`
	Name     string `db:"name"`
	Document string `db:"document"`
	Email    string `db:"email"`
	PixKey   string `db:"pix_key"`
	IsActive bool   `db:"is_active"`
	AuditFields
}
