package repositories

import (
	"context"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

// PartyDirectoryFacade is the boundary to the party directory: the source of
// truth for payout destinations and active flags. Registration and profile
// management live outside this service.
type PartyDirectoryFacade interface {
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)
}
