package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/promopay/promopay_backend/internal/core/domain"
	"github.com/promopay/promopay_backend/internal/core/ports/gateway"
	portsqueue "github.com/promopay/promopay_backend/internal/core/ports/queue"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
)

// --- Mock WalletRepository ---
type MockWalletRepository struct {
	mock.Mock
}

var _ portsrepo.WalletRepositoryFacade = (*MockWalletRepository)(nil)

func (m *MockWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWalletByOwner(ctx context.Context, owner domain.OwnerRef) (*domain.Wallet, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindPlatformWallet(ctx context.Context) (*domain.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) DeactivateWallet(ctx context.Context, walletID string, now time.Time) error {
	args := m.Called(ctx, walletID, now)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveTransfer(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) SavePendingExternal(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) SettlePendingExternal(ctx context.Context, externalRef string, success bool, kinds []domain.TransactionKind) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, externalRef, success, kinds)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) CancelPendingExternal(ctx context.Context, externalRef string, kinds []domain.TransactionKind) (bool, error) {
	args := m.Called(ctx, externalRef, kinds)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) SetGatewayPaymentID(ctx context.Context, transactionID, gatewayPaymentID string) error {
	args := m.Called(ctx, transactionID, gatewayPaymentID)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock CampaignRepository ---
type MockCampaignRepository struct {
	mock.Mock
}

var _ portsrepo.CampaignRepositoryFacade = (*MockCampaignRepository)(nil)

func (m *MockCampaignRepository) SaveCampaign(ctx context.Context, campaign domain.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListCampaigns(ctx context.Context, filter portsrepo.ListCampaignsFilter) ([]domain.Campaign, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) PublishWithEscrow(ctx context.Context, campaignID string, escrowTxn domain.Transaction) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, escrowTxn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) AssignCreator(ctx context.Context, campaignID, creatorID string, now time.Time) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, creatorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) MarkInProgress(ctx context.Context, campaignID string, now time.Time) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) BeginPayout(ctx context.Context, campaignID string, commissionTxn, releaseTxn domain.Transaction) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, commissionTxn, releaseTxn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) BeginRefund(ctx context.Context, campaignID string, refundTxn domain.Transaction) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, refundTxn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) MarkPayoutDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error {
	args := m.Called(ctx, campaignID, transactionID, gatewayPaymentID, now)
	return args.Error(0)
}

func (m *MockCampaignRepository) MarkRefundDispatched(ctx context.Context, campaignID, transactionID, gatewayPaymentID string, now time.Time) error {
	args := m.Called(ctx, campaignID, transactionID, gatewayPaymentID, now)
	return args.Error(0)
}

// --- Mock PartyDirectory ---
type MockPartyDirectory struct {
	mock.Mock
}

var _ portsrepo.PartyDirectoryFacade = (*MockPartyDirectory)(nil)

func (m *MockPartyDirectory) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

// --- Mock PaymentGateway ---
type MockPaymentGateway struct {
	mock.Mock
}

var _ gateway.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) CreatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PayoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PayoutResult), args.Error(1)
}

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ChargeResult), args.Error(1)
}

func (m *MockPaymentGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

// --- Mock PayoutRetryQueue ---
type MockRetryQueue struct {
	mock.Mock
}

var _ portsqueue.PayoutRetryQueue = (*MockRetryQueue)(nil)

func (m *MockRetryQueue) PublishRetry(ctx context.Context, campaignID string) error {
	args := m.Called(ctx, campaignID)
	return args.Error(0)
}
