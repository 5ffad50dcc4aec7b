package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

// PostgresVenueRepository implements VenueRepository for PostgreSQL
type PostgresVenueRepository struct {
	db *database.DB
}

// NewPostgresVenueRepository creates a new venue repository
func NewPostgresVenueRepository(db *database.DB) VenueRepository {
	return &PostgresVenueRepository{db: db}
}

// Resolve returns the surrogate id for the venue's external id, inserting the
// row when absent. The no-op DO UPDATE makes RETURNING yield the existing id
// without touching any other column, so the whole operation is one statement
// and there is no separate existence check to race against.
func (r *PostgresVenueRepository) Resolve(ctx context.Context, venue *models.Venue) (int64, error) {
	query := `
		INSERT INTO venues (external_id, name, city, country)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id
	`

	var id int64
	err := r.db.GetPool().QueryRow(ctx, query,
		venue.ExternalID, venue.Name, venue.City, venue.Country,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve venue %s: %w", venue.ExternalID, err)
	}

	return id, nil
}
