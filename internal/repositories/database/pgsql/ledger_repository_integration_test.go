//go:build integration

package pgsql

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
)

// ledgerFixture runs the repositories against a real Postgres so the balance
// check constraint, the partial unique index and the row locks are all in
// play, exactly as in production.
type ledgerFixture struct {
	pool  *pgxpool.Pool
	repos portsrepo.RepositoryProvider
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("promopay_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	driver, err := migratepg.WithInstance(migrationDB, &migratepg.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://../../../../migrations", "postgres", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	sourceErr, dbErr := m.Close()
	require.NoError(t, sourceErr)
	require.NoError(t, dbErr)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &ledgerFixture{pool: pool, repos: NewRepositoryProvider(pool)}
}

func (f *ledgerFixture) seedParty(t *testing.T, kind domain.OwnerKind) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := f.pool.Exec(context.Background(), `
		INSERT INTO parties (party_id, kind, name, document, email, pix_key, is_active, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7);
	`, id, string(kind), "Test party", "12345678900", "party@example.com", "party@example.com", now)
	require.NoError(t, err)
	return id
}

func (f *ledgerFixture) seedWallet(t *testing.T, owner domain.OwnerRef, balance int64) string {
	t.Helper()
	now := time.Now().UTC()
	wallet := domain.Wallet{
		WalletID:    uuid.NewString(),
		Owner:       owner,
		Balance:     balance,
		PixKey:      "wallet@example.com",
		IsActive:    true,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	require.NoError(t, f.repos.WalletRepo.SaveWallet(context.Background(), wallet))
	return wallet.WalletID
}

func (f *ledgerFixture) seedDraftCampaign(t *testing.T, advertiserID string, budget int64) string {
	t.Helper()
	now := time.Now().UTC()
	campaign := domain.Campaign{
		CampaignID:    uuid.NewString(),
		Title:         "Launch video",
		AdvertiserID:  advertiserID,
		Budget:        budget,
		Status:        domain.CampaignDraft,
		PaymentStatus: domain.PaymentPending,
		StartDate:     now,
		EndDate:       now.Add(30 * 24 * time.Hour),
		Requirements:  []string{},
		Deliverables:  []string{},
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	require.NoError(t, f.repos.CampaignRepo.SaveCampaign(context.Background(), campaign))
	return campaign.CampaignID
}

func (f *ledgerFixture) balance(t *testing.T, walletID string) int64 {
	t.Helper()
	wallet, err := f.repos.WalletRepo.FindWalletByID(context.Background(), walletID)
	require.NoError(t, err)
	return wallet.Balance
}

func (f *ledgerFixture) pendingDeposit(t *testing.T, destWalletID string, amount int64) string {
	t.Helper()
	ref := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, f.repos.LedgerRepo.SavePendingExternal(context.Background(), domain.Transaction{
		TransactionID: uuid.NewString(),
		DestWalletID:  &destWalletID,
		Amount:        amount,
		Kind:          domain.KindDeposit,
		Status:        domain.StatusPending,
		ExternalRef:   &ref,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}))
	return ref
}

var (
	settleDepositKinds = []domain.TransactionKind{domain.KindDeposit}
	settlePayoutKinds  = []domain.TransactionKind{domain.KindRelease, domain.KindRefund, domain.KindWithdrawal}
)

// Deposit settlement credits the advertiser, escrow moves the full budget
// into platform custody, and the campaign flips to ACTIVE/ESCROWED.
func TestDepositThenEscrowMovesBudgetToCustody(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	advertiserID := f.seedParty(t, domain.OwnerAdvertiser)
	advertiserWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerAdvertiser, OwnerID: advertiserID}, 0)
	platformWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerPlatform}, 0)

	depositRef := f.pendingDeposit(t, advertiserWallet, 10000)
	txn, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, depositRef, true, settleDepositKinds)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, domain.StatusCompleted, txn.Status)
	require.Equal(t, int64(10000), f.balance(t, advertiserWallet))

	campaignID := f.seedDraftCampaign(t, advertiserID, 10000)
	now := time.Now().UTC()
	campaign, err := f.repos.CampaignRepo.PublishWithEscrow(ctx, campaignID, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &advertiserWallet,
		DestWalletID:   &platformWallet,
		Amount:         10000,
		Kind:           domain.KindEscrow,
		Status:         domain.StatusCompleted,
		CampaignID:     &campaignID,
		CompletedAt:    &now,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	require.NoError(t, err)
	require.Equal(t, domain.CampaignActive, campaign.Status)
	require.Equal(t, domain.PaymentEscrowed, campaign.PaymentStatus)
	require.Equal(t, int64(0), f.balance(t, advertiserWallet))
	require.Equal(t, int64(10000), f.balance(t, platformWallet))
}

// Refund settlement returns the full escrowed budget to the advertiser and
// moves the campaign to CANCELLED/REFUNDED in the same store transaction.
func TestRefundSettlementRestoresAdvertiserBalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	advertiserID := f.seedParty(t, domain.OwnerAdvertiser)
	advertiserWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerAdvertiser, OwnerID: advertiserID}, 10000)
	platformWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerPlatform}, 0)

	campaignID := f.seedDraftCampaign(t, advertiserID, 10000)
	now := time.Now().UTC()
	_, err := f.repos.CampaignRepo.PublishWithEscrow(ctx, campaignID, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &advertiserWallet,
		DestWalletID:   &platformWallet,
		Amount:         10000,
		Kind:           domain.KindEscrow,
		Status:         domain.StatusCompleted,
		CampaignID:     &campaignID,
		CompletedAt:    &now,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	require.NoError(t, err)

	refundRef := uuid.NewString()
	_, err = f.repos.CampaignRepo.BeginRefund(ctx, campaignID, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &platformWallet,
		DestWalletID:   &advertiserWallet,
		Amount:         10000,
		Kind:           domain.KindRefund,
		Status:         domain.StatusPending,
		CampaignID:     &campaignID,
		ExternalRef:    &refundRef,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	require.NoError(t, err)

	txn, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, refundRef, true, settlePayoutKinds)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, domain.StatusCompleted, txn.Status)
	require.Equal(t, int64(10000), f.balance(t, advertiserWallet))
	require.Equal(t, int64(0), f.balance(t, platformWallet))

	campaign, err := f.repos.CampaignRepo.FindCampaignByID(ctx, campaignID)
	require.NoError(t, err)
	require.Equal(t, domain.CampaignCancelled, campaign.Status)
	require.Equal(t, domain.PaymentRefunded, campaign.PaymentStatus)
}

// A transfer the source balance cannot cover aborts before any write: both
// balances hold and no ledger entry appears.
func TestInsufficientFundsTransferLeavesStateUntouched(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	partyA := f.seedParty(t, domain.OwnerCreator)
	partyB := f.seedParty(t, domain.OwnerCreator)
	walletA := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: partyA}, 500)
	walletB := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: partyB}, 0)

	now := time.Now().UTC()
	err := f.repos.LedgerRepo.SaveTransfer(ctx, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &walletA,
		DestWalletID:   &walletB,
		Amount:         800,
		Kind:           domain.KindEscrow,
		Status:         domain.StatusCompleted,
		CompletedAt:    &now,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})

	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	require.Equal(t, int64(500), f.balance(t, walletA))
	require.Equal(t, int64(0), f.balance(t, walletB))
	entries, err := f.repos.LedgerRepo.ListTransactionsByWallet(ctx, walletA, 10, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// The second delivery of the same settlement finds no PENDING row and
// reports applied=false without moving money again.
func TestDuplicateSettlementIsNoOp(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	advertiserID := f.seedParty(t, domain.OwnerAdvertiser)
	wallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerAdvertiser, OwnerID: advertiserID}, 0)

	ref := f.pendingDeposit(t, wallet, 10000)
	_, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, ref, true, settleDepositKinds)
	require.NoError(t, err)
	require.True(t, applied)

	txn, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, ref, true, settleDepositKinds)
	require.NoError(t, err)
	require.False(t, applied)
	require.Nil(t, txn)
	require.Equal(t, int64(10000), f.balance(t, wallet))
}

// A deposit-restricted cancel or settle must not touch a pending payout leg
// carrying the same reference shape; the leg stays PENDING until a payment
// event resolves it.
func TestKindRestrictionShieldsPayoutLegs(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	creatorID := f.seedParty(t, domain.OwnerCreator)
	creatorWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: creatorID}, 0)
	platformWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerPlatform}, 8000)

	releaseRef := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, f.repos.LedgerRepo.SavePendingExternal(ctx, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &platformWallet,
		DestWalletID:   &creatorWallet,
		Amount:         8000,
		Kind:           domain.KindRelease,
		Status:         domain.StatusPending,
		ExternalRef:    &releaseRef,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}))

	cancelled, err := f.repos.LedgerRepo.CancelPendingExternal(ctx, releaseRef, settleDepositKinds)
	require.NoError(t, err)
	require.False(t, cancelled)

	txn, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, releaseRef, true, settleDepositKinds)
	require.NoError(t, err)
	require.False(t, applied)
	require.Nil(t, txn)

	leg, err := f.repos.LedgerRepo.FindTransactionByExternalRef(ctx, releaseRef)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, leg.Status)

	txn, applied, err = f.repos.LedgerRepo.SettlePendingExternal(ctx, releaseRef, true, settlePayoutKinds)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, domain.StatusCompleted, txn.Status)
	require.Equal(t, int64(8000), f.balance(t, creatorWallet))
	require.Equal(t, int64(0), f.balance(t, platformWallet))
}

// A confirmed payout the source wallet no longer covers hits the balance
// check constraint: the leg stays PENDING and no balance moves. Marking it
// failed afterwards records the shortfall without balance mutation.
func TestSettlementShortfallLeavesLegPending(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	creatorID := f.seedParty(t, domain.OwnerCreator)
	creatorWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: creatorID}, 0)
	platformWallet := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerPlatform}, 100)

	releaseRef := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, f.repos.LedgerRepo.SavePendingExternal(ctx, domain.Transaction{
		TransactionID:  uuid.NewString(),
		SourceWalletID: &platformWallet,
		DestWalletID:   &creatorWallet,
		Amount:         500,
		Kind:           domain.KindRelease,
		Status:         domain.StatusPending,
		ExternalRef:    &releaseRef,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}))

	_, _, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, releaseRef, true, settlePayoutKinds)
	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	require.Equal(t, int64(100), f.balance(t, platformWallet))
	require.Equal(t, int64(0), f.balance(t, creatorWallet))

	leg, err := f.repos.LedgerRepo.FindTransactionByExternalRef(ctx, releaseRef)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, leg.Status)

	txn, applied, err := f.repos.LedgerRepo.SettlePendingExternal(ctx, releaseRef, false, settlePayoutKinds)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, domain.StatusFailed, txn.Status)
	require.Equal(t, int64(100), f.balance(t, platformWallet))
}

// Random internal transfers against real wallets: no balance ever goes
// negative, every accepted transfer matches the model, and the total across
// wallets is conserved because only deposits and withdrawals change it.
func TestRandomTransfersConserveTotal(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	balances := make(map[string]int64)
	var ids []string
	var total int64
	for i := 0; i < 4; i++ {
		partyID := f.seedParty(t, domain.OwnerCreator)
		opening := int64(rng.Intn(5000))
		id := f.seedWallet(t, domain.OwnerRef{Kind: domain.OwnerCreator, OwnerID: partyID}, opening)
		balances[id] = opening
		ids = append(ids, id)
		total += opening
	}

	for i := 0; i < 200; i++ {
		src := ids[rng.Intn(len(ids))]
		dst := ids[rng.Intn(len(ids))]
		if src == dst {
			continue
		}
		amount := int64(rng.Intn(3000)) + 1
		now := time.Now().UTC()
		err := f.repos.LedgerRepo.SaveTransfer(ctx, domain.Transaction{
			TransactionID:  uuid.NewString(),
			SourceWalletID: &src,
			DestWalletID:   &dst,
			Amount:         amount,
			Kind:           domain.KindEscrow,
			Status:         domain.StatusCompleted,
			CompletedAt:    &now,
			AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		})
		if balances[src] < amount {
			require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
			continue
		}
		require.NoError(t, err)
		balances[src] -= amount
		balances[dst] += amount
	}

	var dbTotal int64
	for _, id := range ids {
		got := f.balance(t, id)
		require.GreaterOrEqual(t, got, int64(0))
		require.Equal(t, balances[id], got)
		dbTotal += got
	}
	require.Equal(t, total, dbTotal)
}
