package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// ResolveConstructor returns the surrogate id for the constructor's external
// id, inserting the row when absent. Existing rows keep their attributes.
func (r *PostgresTeamRepository) ResolveConstructor(ctx context.Context, constructor *models.Constructor) (int64, error) {
	query := `
		INSERT INTO constructors (external_id, name, nationality, reference_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id
	`

	var id int64
	err := r.db.GetPool().QueryRow(ctx, query,
		constructor.ExternalID, constructor.Name, constructor.Nationality, constructor.ReferenceURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve constructor %s: %w", constructor.ExternalID, err)
	}

	return id, nil
}

// ResolveTeam returns the surrogate id for the team's external id. Unlike the
// other entities the conflict branch does real work: the constructor linkage
// is refreshed so a rebrand relinks the existing team row instead of creating
// a duplicate.
func (r *PostgresTeamRepository) ResolveTeam(ctx context.Context, team *models.Team) (int64, error) {
	query := `
		INSERT INTO teams (external_id, name, nationality, reference_url, constructor_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE SET constructor_id = EXCLUDED.constructor_id
		RETURNING id
	`

	var id int64
	err := r.db.GetPool().QueryRow(ctx, query,
		team.ExternalID, team.Name, team.Nationality, team.ReferenceURL, team.ConstructorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve team %s: %w", team.ExternalID, err)
	}

	return id, nil
}
