package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	walletRepo := newPgxWalletRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, walletRepo)
	campaignRepo := newPgxCampaignRepository(dbPool, walletRepo)
	partyRepo := newPgxPartyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		WalletRepo:   walletRepo,
		LedgerRepo:   ledgerRepo,
		CampaignRepo: campaignRepo,
		PartyRepo:    partyRepo,
	}
}

// EnsurePlatformWallet resolves the singleton custodial wallet, creating it
// on first startup. Concurrent bootstraps lose the insert race harmlessly and
// re-read the winner's row.
func EnsurePlatformWallet(ctx context.Context, walletRepo portsrepo.WalletRepositoryFacade, pixKey string) (*domain.Wallet, error) {
	wallet, err := walletRepo.FindPlatformWallet(ctx)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve platform wallet: %w", err)
	}

	now := time.Now().UTC()
	fresh := domain.Wallet{
		WalletID: uuid.NewString(),
		Owner:    domain.OwnerRef{Kind: domain.OwnerPlatform},
		Balance:  0,
		PixKey:   pixKey,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if err := walletRepo.SaveWallet(ctx, fresh); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return walletRepo.FindPlatformWallet(ctx)
		}
		return nil, fmt.Errorf("failed to create platform wallet: %w", err)
	}
	return &fresh, nil
}
