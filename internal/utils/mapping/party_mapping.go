package mapping

import (
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/models"
)

// ToDomainParty converts a database party model to its domain form.
func ToDomainParty(m models.Party) domain.Party {
	return domain.Party{
		PartyID:     m.PartyID,
		Kind:        domain.OwnerKind(m.Kind),
		Name:        m.Name,
		Document:    m.Document,
		Email:       m.Email,
		PixKey:      m.PixKey,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
