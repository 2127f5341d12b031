package mapping

import (
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/models"
)

// ToModelWallet converts a domain wallet to its database model.
func ToModelWallet(d domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID:    d.WalletID,
		OwnerKind:   string(d.Owner.Kind),
		OwnerID:     d.Owner.OwnerID,
		Balance:     d.Balance,
		PixKey:      d.PixKey,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWallet converts a database wallet model to its domain form.
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID: m.WalletID,
		Owner: domain.OwnerRef{
			Kind:    domain.OwnerKind(m.OwnerKind),
			OwnerID: m.OwnerID,
		},
		Balance:     m.Balance,
		PixKey:      m.PixKey,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
