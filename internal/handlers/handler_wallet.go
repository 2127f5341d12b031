package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/promopay/promopay_backend/internal/core/ports/services"
	"github.com/promopay/promopay_backend/internal/dto"
	"github.com/promopay/promopay_backend/internal/middleware"
	"github.com/promopay/promopay_backend/internal/utils"
)

// walletHandler handles HTTP requests related to wallets and the ledger.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// newWalletHandler creates a new walletHandler.
func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{walletService: ws}
}

// RegisterWalletRoutes registers routes related to wallets.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := rg.Group("/wallets")
	{
		wallets.POST("", h.openWallet)
		wallets.GET("/:id", h.getWallet)
		wallets.GET("/:id/balance", h.getBalance)
		wallets.GET("/:id/transactions", h.listTransactions)
		wallets.POST("/:id/deposit", h.deposit)
		wallets.POST("/:id/withdraw", h.withdraw)
	}
}

func (h *walletHandler) openWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.OpenWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenWallet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	wallet, err := h.walletService.OpenWallet(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to open wallet")
		return
	}

	logger.Info("Wallet opened", slog.String("wallet_id", wallet.WalletID))
	c.JSON(http.StatusCreated, dto.ToWalletResponse(wallet))
}

func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("id")

	wallet, err := h.walletService.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

func (h *walletHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("id")

	balance, err := h.walletService.GetBalance(c.Request.Context(), walletID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{
		WalletID:   walletID,
		Balance:    balance,
		BalanceBRL: utils.CentsToBRL(balance),
	})
}

func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("id")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.walletService.ListTransactions(c.Request.Context(), walletID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *walletHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("id")

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.walletService.InitiateDeposit(c.Request.Context(), walletID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to initiate deposit")
		return
	}

	logger.Info("Deposit initiated", slog.String("wallet_id", walletID), slog.Int64("amount", req.Amount))
	c.JSON(http.StatusAccepted, resp)
}

func (h *walletHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("id")

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.walletService.InitiateWithdrawal(c.Request.Context(), walletID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to initiate withdrawal")
		return
	}

	logger.Info("Withdrawal initiated", slog.String("wallet_id", walletID), slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusAccepted, dto.ToTransactionResponse(txn))
}
