package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/domain"
	portsrepo "github.com/promopay/promopay_backend/internal/core/ports/repositories"
	"github.com/promopay/promopay_backend/internal/models"
	"github.com/promopay/promopay_backend/internal/utils/mapping"
)

type PgxPartyRepository struct {
	BaseRepository
}

// newPgxPartyRepository creates a read-only repository over the party
// directory tables.
func newPgxPartyRepository(pool *pgxpool.Pool) *PgxPartyRepository {
	return &PgxPartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPartyRepository implements portsrepo.PartyDirectoryFacade
var _ portsrepo.PartyDirectoryFacade = (*PgxPartyRepository)(nil)

// FindPartyByID retrieves a directory entry by its ID.
func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	query := `
		SELECT party_id, kind, name, document, email, pix_key, is_active, created_at, last_updated_at
		FROM parties
		WHERE party_id = $1;
	`
	var m models.Party
	err := r.Pool.QueryRow(ctx, query, partyID).Scan(
		&m.PartyID,
		&m.Kind,
		&m.Name,
		&m.Document,
		&m.Email,
		&m.PixKey,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find party %s: %w", partyID, err)
	}

	party := mapping.ToDomainParty(m)
	return &party, nil
}
