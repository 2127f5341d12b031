package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/core/ports/gateway"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
)

// reconcilerService turns at-least-once gateway deliveries into exactly-once
// ledger effects. All idempotency lives in the ledger repository; this layer
// authenticates, parses and routes.
type reconcilerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	gateway    gateway.PaymentGateway
}

// NewReconcilerService creates a new webhook reconciler service.
func NewReconcilerService(ledgerRepo portsrepo.LedgerRepositoryFacade, gw gateway.PaymentGateway) portssvc.ReconcilerSvcFacade {
	return &reconcilerService{ledgerRepo: ledgerRepo, gateway: gw}
}

var _ portssvc.ReconcilerSvcFacade = (*reconcilerService)(nil)

// Event families map to disjoint transaction kinds: charge.* events settle
// inbound deposits, payment.* events settle outbound payout legs. The kind
// restriction keeps a charge event for a reused or forged reference from ever
// touching a payout leg.
var (
	chargeKinds  = []domain.TransactionKind{domain.KindDeposit}
	paymentKinds = []domain.TransactionKind{domain.KindRelease, domain.KindRefund, domain.KindWithdrawal}
)

// HandleWebhook authenticates the raw delivery before anything else touches
// it. A bad signature never reaches the ledger.
func (s *reconcilerService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	logger := loggerFrom(ctx)

	if !s.gateway.VerifyWebhookSignature(body, signature) {
		logger.Warn("Webhook signature verification failed")
		return fmt.Errorf("%w: webhook signature mismatch", apperrors.ErrAuthenticationFailed)
	}

	var event dto.GatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload: %v", apperrors.ErrValidation, err)
	}

	return s.ProcessEvent(ctx, event)
}

// ProcessEvent routes one authenticated event. Duplicate and out-of-order
// deliveries settle to no-ops in the repository; only transient store or
// decode failures return an error (the gateway redelivers on non-2xx).
func (s *reconcilerService) ProcessEvent(ctx context.Context, event dto.GatewayEvent) error {
	logger := loggerFrom(ctx).With(
		slog.String("event_type", event.Type),
		slog.String("gateway_ref", event.Data.ID),
		slog.String("external_ref", event.Data.ExternalID),
	)

	if event.Data.ExternalID == "" {
		logger.Warn("Webhook event carries no external reference, acknowledging")
		return nil
	}

	switch event.Type {
	case dto.EventChargePaid:
		return s.settle(ctx, logger, event.Data.ExternalID, chargeKinds)

	case dto.EventChargeExpired:
		cancelled, err := s.ledgerRepo.CancelPendingExternal(ctx, event.Data.ExternalID, chargeKinds)
		if err != nil {
			return fmt.Errorf("failed to cancel expired charge: %w", err)
		}
		if !cancelled {
			logger.Info("Expired charge matched no pending deposit, acknowledging")
			return nil
		}
		logger.Info("Deposit charge expired, transaction cancelled")
		return nil

	case dto.EventPaymentCompleted:
		return s.settle(ctx, logger, event.Data.ExternalID, paymentKinds)

	case dto.EventPaymentFailed:
		txn, applied, err := s.ledgerRepo.SettlePendingExternal(ctx, event.Data.ExternalID, false, paymentKinds)
		if err != nil {
			return fmt.Errorf("failed to record payment failure: %w", err)
		}
		if !applied {
			logger.Info("Payment failure matched no pending transaction, acknowledging")
			return nil
		}
		// Funds stay in the platform wallet; nothing automatic can decide
		// between re-dispatch and refund here.
		logger.Error("Outbound payment failed, manual intervention required",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("kind", string(txn.Kind)),
			slog.Int64("amount", txn.Amount),
			slog.String("failure_code", event.Data.FailureCode),
		)
		return nil

	default:
		logger.Info("Ignoring unrecognized gateway event type")
		return nil
	}
}

func (s *reconcilerService) settle(ctx context.Context, logger *slog.Logger, externalRef string, kinds []domain.TransactionKind) error {
	txn, applied, err := s.ledgerRepo.SettlePendingExternal(ctx, externalRef, true, kinds)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return s.flagShortfall(ctx, logger, externalRef, kinds)
		}
		return fmt.Errorf("failed to settle external transaction: %w", err)
	}
	if !applied {
		logger.Info("Settlement matched no pending transaction, acknowledging")
		return nil
	}
	logger.Info("External transaction settled",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.Int64("amount", txn.Amount),
	)
	return nil
}

// flagShortfall handles a confirmed outbound payment whose wallet no longer
// covers the debit. The money already left the rail, so redelivering the
// webhook cannot help; the transaction is marked FAILED without balance
// mutation and the delivery acknowledged so operators resolve it manually.
func (s *reconcilerService) flagShortfall(ctx context.Context, logger *slog.Logger, externalRef string, kinds []domain.TransactionKind) error {
	txn, applied, err := s.ledgerRepo.SettlePendingExternal(ctx, externalRef, false, kinds)
	if err != nil {
		return fmt.Errorf("failed to flag settlement shortfall: %w", err)
	}
	if !applied {
		logger.Info("Settlement matched no pending transaction, acknowledging")
		return nil
	}
	logger.Error("Settlement shortfall: balance no longer covers confirmed payment, manual intervention required",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.Int64("amount", txn.Amount),
	)
	return nil
}
