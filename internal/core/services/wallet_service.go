package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/core/ports/gateway"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
)

// walletService is the wallet ledger engine. Every balance mutation in the
// system flows through it, either synchronously (internal transfers) or via
// pending-external settlement.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryFacade
	directory  portsrepo.PartyDirectoryFacade
	gateway    gateway.PaymentGateway
}

// NewWalletService creates a new wallet ledger engine.
func NewWalletService(walletRepo portsrepo.WalletRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, directory portsrepo.PartyDirectoryFacade, gw gateway.PaymentGateway) portssvc.WalletSvcFacade {
	return &walletService{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		directory:  directory,
		gateway:    gw,
	}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// OpenWallet creates a balance-0 wallet after checking the party directory.
func (s *walletService) OpenWallet(ctx context.Context, req dto.OpenWalletRequest) (*domain.Wallet, error) {
	logger := loggerFrom(ctx)

	if !req.OwnerKind.Valid() || req.OwnerKind == domain.OwnerPlatform {
		return nil, fmt.Errorf("%w: owner kind %q", apperrors.ErrValidation, req.OwnerKind)
	}

	party, err := s.directory.FindPartyByID(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve party %s: %w", req.OwnerID, err)
	}
	if party.Kind != req.OwnerKind {
		return nil, fmt.Errorf("%w: party %s is not a %s", apperrors.ErrValidation, req.OwnerID, req.OwnerKind)
	}
	if !party.IsActive {
		return nil, fmt.Errorf("%w: party %s is inactive", apperrors.ErrValidation, req.OwnerID)
	}

	now := time.Now().UTC()
	wallet := domain.Wallet{
		WalletID: uuid.NewString(),
		Owner:    domain.OwnerRef{Kind: req.OwnerKind, OwnerID: req.OwnerID},
		Balance:  0,
		PixKey:   req.PixKey,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.walletRepo.SaveWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to save wallet for %s %s: %w", req.OwnerKind, req.OwnerID, err)
	}

	logger.Info("Wallet opened", slog.String("wallet_id", wallet.WalletID), slog.String("owner_kind", string(req.OwnerKind)))
	return &wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (s *walletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}
	return wallet, nil
}

// GetBalance returns the current balance in minor currency units.
func (s *walletService) GetBalance(ctx context.Context, walletID string) (int64, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Transfer atomically moves funds between two internal wallets.
func (s *walletService) Transfer(ctx context.Context, sourceWalletID, destWalletID string, amount int64, kind domain.TransactionKind, campaignID *string) (*domain.Transaction, error) {
	logger := loggerFrom(ctx)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidAmount, amount)
	}
	if sourceWalletID == destWalletID && kind != domain.KindCommission {
		return nil, fmt.Errorf("%w: source and destination wallets are the same", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &sourceWalletID,
		DestWalletID:   &destWalletID,
		Amount:         amount,
		Kind:           kind,
		Status:         domain.StatusCompleted,
		CampaignID:     campaignID,
		Description:    fmt.Sprintf("%s transfer", kind),
		CompletedAt:    &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	err := withContentionRetry(ctx, logger, "transfer", func() error {
		return s.ledgerRepo.SaveTransfer(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Transfer completed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(kind)),
		slog.Int64("amount", amount),
	)
	return &txn, nil
}

// RecordPendingExternal creates the ledger intent for a gateway-bound
// movement. The wallet leg depends on the kind: deposits credit the wallet on
// settlement, withdrawals debit it.
func (s *walletService) RecordPendingExternal(ctx context.Context, walletID string, amount int64, kind domain.TransactionKind, externalRef string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidAmount, amount)
	}

	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}
	if !wallet.IsActive {
		return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrWalletInactive, walletID)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Amount:        amount,
		Kind:          kind,
		Status:        domain.StatusPending,
		ExternalRef:   &externalRef,
		Description:   fmt.Sprintf("%s via payment gateway", kind),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	switch kind {
	case domain.KindDeposit:
		txn.DestWalletID = &wallet.WalletID
	case domain.KindWithdrawal:
		txn.SourceWalletID = &wallet.WalletID
	default:
		return nil, fmt.Errorf("%w: kind %s is not a single-leg external movement", apperrors.ErrValidation, kind)
	}

	if err := s.ledgerRepo.SavePendingExternal(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record pending %s: %w", kind, err)
	}
	return &txn, nil
}

// SettlePendingExternal applies a gateway outcome. The repository guarantees
// the lookup, balance mutation and status flip share one store transaction;
// a missing PENDING match means the outcome was already applied (or never
// recorded) and settles to a no-op.
func (s *walletService) SettlePendingExternal(ctx context.Context, externalRef string, success bool) (*domain.Transaction, bool, error) {
	logger := loggerFrom(ctx)

	var (
		txn     *domain.Transaction
		settled bool
	)
	err := withContentionRetry(ctx, logger, "settle", func() error {
		var innerErr error
		txn, settled, innerErr = s.ledgerRepo.SettlePendingExternal(ctx, externalRef, success, nil)
		return innerErr
	})
	if err != nil {
		return nil, false, err
	}

	if !settled {
		logger.Info("No pending transaction for settlement, skipping", slog.String("external_ref", externalRef))
		return nil, false, nil
	}

	logger.Info("Pending transaction settled",
		slog.String("external_ref", externalRef),
		slog.String("transaction_id", txn.TransactionID),
		slog.Bool("success", success),
	)
	return txn, true, nil
}

// InitiateDeposit creates a PIX charge and records the matching PENDING
// deposit. The balance only moves when the gateway confirms the charge.
func (s *walletService) InitiateDeposit(ctx context.Context, walletID string, req dto.DepositRequest) (*dto.DepositResponse, error) {
	logger := loggerFrom(ctx)

	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}
	if !wallet.IsActive {
		return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrWalletInactive, walletID)
	}

	party, err := s.directory.FindPartyByID(ctx, wallet.Owner.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve wallet owner: %w", err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Deposit to %s wallet", wallet.Owner.Kind)
	}

	externalRef := uuid.NewString()
	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:      req.Amount,
		ExternalID:  externalRef,
		Description: description,
		Payer: gateway.ChargePayer{
			Name:     party.Name,
			Document: party.Document,
			Email:    party.Email,
		},
	})
	if err != nil {
		logger.Error("Failed to create deposit charge", slog.String("wallet_id", walletID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		DestWalletID:    &wallet.WalletID,
		Amount:          req.Amount,
		Kind:            domain.KindDeposit,
		Status:          domain.StatusPending,
		ExternalRef:     &externalRef,
		GatewayChargeID: &charge.GatewayChargeID,
		Description:     description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if err := s.ledgerRepo.SavePendingExternal(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record pending deposit: %w", err)
	}

	logger.Info("Deposit charge created",
		slog.String("wallet_id", walletID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("charge_id", charge.GatewayChargeID),
	)
	return &dto.DepositResponse{
		Transaction:  dto.ToTransactionResponse(&txn),
		ChargeID:     charge.GatewayChargeID,
		QRCode:       charge.QRCode,
		PixCopyPaste: charge.PixCopyPaste,
	}, nil
}

// InitiateWithdrawal records a PENDING withdrawal and dispatches the payout.
// The debit is re-validated at settlement; a gateway outage leaves the
// transaction PENDING and retryable.
func (s *walletService) InitiateWithdrawal(ctx context.Context, walletID string, req dto.WithdrawRequest) (*domain.Transaction, error) {
	logger := loggerFrom(ctx)

	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}
	if !wallet.IsActive {
		return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrWalletInactive, walletID)
	}
	if wallet.Balance < req.Amount {
		return nil, fmt.Errorf("%w: balance %d, requested %d", apperrors.ErrInsufficientFunds, wallet.Balance, req.Amount)
	}

	externalRef := uuid.NewString()
	txn, err := s.RecordPendingExternal(ctx, walletID, req.Amount, domain.KindWithdrawal, externalRef)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Withdrawal from %s wallet", wallet.Owner.Kind)
	}
	payout, err := s.gateway.CreatePayout(ctx, gateway.PayoutRequest{
		PixKey:      wallet.PixKey,
		Amount:      req.Amount,
		ExternalID:  externalRef,
		Description: description,
	})
	if err != nil {
		// The PENDING record stays: a late confirmation can still settle it,
		// and operators see the stuck withdrawal through this log line.
		logger.Error("Withdrawal dispatch failed, transaction left pending",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := s.ledgerRepo.SetGatewayPaymentID(ctx, txn.TransactionID, payout.GatewayPaymentID); err != nil {
		logger.Error("Failed to store gateway payment id", slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
		return nil, err
	}
	txn.GatewayPaymentID = &payout.GatewayPaymentID

	logger.Info("Withdrawal dispatched",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("gateway_payment_id", payout.GatewayPaymentID),
	)
	return txn, nil
}

// ListTransactions returns wallet history, newest first.
func (s *walletService) ListTransactions(ctx context.Context, walletID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.walletRepo.FindWalletByID(ctx, walletID); err != nil {
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	txns, err := s.ledgerRepo.ListTransactionsByWallet(ctx, walletID, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		Limit:        limit,
		Offset:       params.Offset,
	}, nil
}
