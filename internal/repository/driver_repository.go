package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

// PostgresDriverRepository implements DriverRepository for PostgreSQL
type PostgresDriverRepository struct {
	db *database.DB
}

// NewPostgresDriverRepository creates a new driver repository
func NewPostgresDriverRepository(db *database.DB) DriverRepository {
	return &PostgresDriverRepository{db: db}
}

// Resolve returns the surrogate id for the driver's external id, inserting the
// row when absent. Attribute drift on an existing driver is ignored; upstream
// corrections to driver metadata are not propagated.
func (r *PostgresDriverRepository) Resolve(ctx context.Context, driver *models.Driver) (int64, error) {
	query := `
		INSERT INTO drivers (external_id, short_code, number, given_name, family_name,
		                     nationality, date_of_birth, reference_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id
	`

	var id int64
	err := r.db.GetPool().QueryRow(ctx, query,
		driver.ExternalID, driver.ShortCode, driver.Number, driver.GivenName,
		driver.FamilyName, driver.Nationality, driver.DateOfBirth, driver.ReferenceURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve driver %s: %w", driver.ExternalID, err)
	}

	return id, nil
}
