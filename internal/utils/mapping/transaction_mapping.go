package mapping

import (
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/models"
)

// ToModelTransaction converts a domain transaction to its database model.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:    d.TransactionID,
		SourceWalletID:   d.SourceWalletID,
		DestWalletID:     d.DestWalletID,
		Amount:           d.Amount,
		Kind:             string(d.Kind),
		Status:           string(d.Status),
		CampaignID:       d.CampaignID,
		ExternalRef:      d.ExternalRef,
		GatewayChargeID:  d.GatewayChargeID,
		GatewayPaymentID: d.GatewayPaymentID,
		Description:      d.Description,
		CompletedAt:      d.CompletedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a database transaction model to its domain form.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		SourceWalletID:   m.SourceWalletID,
		DestWalletID:     m.DestWalletID,
		Amount:           m.Amount,
		Kind:             domain.TransactionKind(m.Kind),
		Status:           domain.TransactionStatus(m.Status),
		CampaignID:       m.CampaignID,
		ExternalRef:      m.ExternalRef,
		GatewayChargeID:  m.GatewayChargeID,
		GatewayPaymentID: m.GatewayPaymentID,
		Description:      m.Description,
		CompletedAt:      m.CompletedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
