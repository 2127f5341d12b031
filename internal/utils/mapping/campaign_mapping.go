package mapping

import (
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/models"
)

// ToModelCampaign converts a domain campaign to its database model.
func ToModelCampaign(d domain.Campaign) models.Campaign {
	return models.Campaign{
		CampaignID:              d.CampaignID,
		Title:                   d.Title,
		Description:             d.Description,
		AdvertiserID:            d.AdvertiserID,
		CreatorID:               d.CreatorID,
		Budget:                  d.Budget,
		Status:                  string(d.Status),
		PaymentStatus:           string(d.PaymentStatus),
		StartDate:               d.StartDate,
		EndDate:                 d.EndDate,
		Requirements:            d.Requirements,
		Deliverables:            d.Deliverables,
		EscrowTransactionID:     d.EscrowTransactionID,
		PayoutTransactionID:     d.PayoutTransactionID,
		RefundTransactionID:     d.RefundTransactionID,
		CommissionTransactionID: d.CommissionTransactionID,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCampaign converts a database campaign model to its domain form.
func ToDomainCampaign(m models.Campaign) domain.Campaign {
	return domain.Campaign{
		CampaignID:              m.CampaignID,
		Title:                   m.Title,
		Description:             m.Description,
		AdvertiserID:            m.AdvertiserID,
		CreatorID:               m.CreatorID,
		Budget:                  m.Budget,
		Status:                  domain.CampaignStatus(m.Status),
		PaymentStatus:           domain.PaymentStatus(m.PaymentStatus),
		StartDate:               m.StartDate,
		EndDate:                 m.EndDate,
		Requirements:            m.Requirements,
		Deliverables:            m.Deliverables,
		EscrowTransactionID:     m.EscrowTransactionID,
		PayoutTransactionID:     m.PayoutTransactionID,
		RefundTransactionID:     m.RefundTransactionID,
		CommissionTransactionID: m.CommissionTransactionID,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}
