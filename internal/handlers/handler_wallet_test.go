package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
	"github.com/promopay/promopay_backend/internal/handlers"
	"github.com/promopay/promopay_backend/internal/middleware"
)

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

func (m *MockWalletService) OpenWallet(ctx context.Context, req dto.OpenWalletRequest) (*domain.Wallet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, walletID string) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) Transfer(ctx context.Context, sourceWalletID, destWalletID string, amount int64, kind domain.TransactionKind, campaignID *string) (*domain.Transaction, error) {
	args := m.Called(ctx, sourceWalletID, destWalletID, amount, kind, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWalletService) RecordPendingExternal(ctx context.Context, walletID string, amount int64, kind domain.TransactionKind, externalRef string) (*domain.Transaction, error) {
	args := m.Called(ctx, walletID, amount, kind, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWalletService) SettlePendingExternal(ctx context.Context, externalRef string, success bool) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, externalRef, success)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockWalletService) InitiateDeposit(ctx context.Context, walletID string, req dto.DepositRequest) (*dto.DepositResponse, error) {
	args := m.Called(ctx, walletID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DepositResponse), args.Error(1)
}

func (m *MockWalletService) InitiateWithdrawal(ctx context.Context, walletID string, req dto.WithdrawRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, walletID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, walletID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, walletID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// --- Test Suite ---
type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *MockWalletService
	jwtSecret         string
}

func (suite *WalletHandlerTestSuite) generateTestToken(partyID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "promopay-test",
		Subject:   partyID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockWalletService = new(MockWalletService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterWalletRoutes(v1, suite.mockWalletService)
}

func (suite *WalletHandlerTestSuite) authedRequest(method, url string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString()))
	return req
}

func (suite *WalletHandlerTestSuite) TestGetBalance_Success() {
	walletID := uuid.NewString()
	suite.mockWalletService.On("GetBalance", mock.Anything, walletID).Return(int64(123450), nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/wallets/"+walletID+"/balance", nil))

	suite.Equal(http.StatusOK, w.Code)

	var body dto.BalanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(walletID, body.WalletID)
	suite.Equal(int64(123450), body.Balance)
	suite.Equal("1234.5", body.BalanceBRL.String())
	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestGetBalance_MissingTokenRejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallets/"+uuid.NewString()+"/balance", nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "GetBalance", mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestGetWallet_NotFound() {
	walletID := uuid.NewString()
	suite.mockWalletService.On("GetWallet", mock.Anything, walletID).Return(nil, apperrors.ErrNotFound).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/wallets/"+walletID, nil))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *WalletHandlerTestSuite) TestDeposit_Accepted() {
	walletID := uuid.NewString()
	reqBody := []byte(`{"amount": 50000, "description": "top up"}`)

	suite.mockWalletService.On("InitiateDeposit", mock.Anything, walletID,
		mock.MatchedBy(func(r dto.DepositRequest) bool { return r.Amount == 50000 }),
	).Return(&dto.DepositResponse{
		Transaction:  dto.TransactionResponse{TransactionID: uuid.NewString(), Amount: 50000},
		ChargeID:     "ch_123",
		QRCode:       "data:image/png;base64,...",
		PixCopyPaste: "00020126...",
	}, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/wallets/"+walletID+"/deposit", reqBody))

	suite.Equal(http.StatusAccepted, w.Code)

	var body dto.DepositResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("ch_123", body.ChargeID)
	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestDeposit_NonPositiveAmountRejected() {
	walletID := uuid.NewString()
	reqBody := []byte(`{"amount": 0}`)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/wallets/"+walletID+"/deposit", reqBody))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "InitiateDeposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestWithdraw_InsufficientFunds() {
	walletID := uuid.NewString()
	reqBody := []byte(`{"amount": 999999}`)

	suite.mockWalletService.On("InitiateWithdrawal", mock.Anything, walletID, mock.Anything).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/wallets/"+walletID+"/withdraw", reqBody))

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestWalletHandler(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}
