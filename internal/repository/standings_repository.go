package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

const errScanStandingEntry = "failed to scan standing entry: %w"

// PostgresStandingsRepository implements StandingsRepository for PostgreSQL
type PostgresStandingsRepository struct {
	db *database.DB
}

// NewPostgresStandingsRepository creates a new standings repository
func NewPostgresStandingsRepository(db *database.DB) StandingsRepository {
	return &PostgresStandingsRepository{db: db}
}

// UpsertDriverStanding writes a driver standings row keyed by (driver, season).
// Every field is overwritten on re-import, including the round marker.
func (r *PostgresStandingsRepository) UpsertDriverStanding(ctx context.Context, standing *models.Standing) error {
	query := `
		INSERT INTO driver_standings (driver_id, team_id, season, round, position, points, wins)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (driver_id, season) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			round = EXCLUDED.round,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			wins = EXCLUDED.wins
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		standing.EntityID, standing.TeamID, standing.Season, standing.Round,
		standing.Position, standing.Points, standing.Wins,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert driver standing: %w", err)
	}

	return nil
}

// UpsertConstructorStandings writes the constructor row and its parallel team
// row in a single transaction. The two tables track the same aggregate from
// different angles and must never diverge mid-write.
func (r *PostgresStandingsRepository) UpsertConstructorStandings(ctx context.Context, constructor, team *models.Standing) error {
	constructorQuery := `
		INSERT INTO constructor_standings (constructor_id, season, round, position, points, wins)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (constructor_id, season) DO UPDATE SET
			round = EXCLUDED.round,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			wins = EXCLUDED.wins
	`
	teamQuery := `
		INSERT INTO team_standings (team_id, season, round, position, points, wins)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, season) DO UPDATE SET
			round = EXCLUDED.round,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			wins = EXCLUDED.wins
	`

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, constructorQuery,
			constructor.EntityID, constructor.Season, constructor.Round,
			constructor.Position, constructor.Points, constructor.Wins,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert constructor standing: %w", err)
		}

		_, err = tx.Exec(ctx, teamQuery,
			team.EntityID, team.Season, team.Round,
			team.Position, team.Points, team.Wins,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert team standing: %w", err)
		}

		return nil
	})
}

// DriverMarker returns the stored round and row count for a season
func (r *PostgresStandingsRepository) DriverMarker(ctx context.Context, season int) (StandingsMarker, error) {
	return r.marker(ctx, "driver_standings", season)
}

// ConstructorMarker returns the stored round and row count for a season
func (r *PostgresStandingsRepository) ConstructorMarker(ctx context.Context, season int) (StandingsMarker, error) {
	return r.marker(ctx, "constructor_standings", season)
}

// marker reads the freshness marker from one of the standings tables. An
// absent season reports round -1 so it always compares stale.
func (r *PostgresStandingsRepository) marker(ctx context.Context, table string, season int) (StandingsMarker, error) {
	query := fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(MAX(round), -1) FROM %s WHERE season = $1`, table)

	var m StandingsMarker
	err := r.db.GetPool().QueryRow(ctx, query, season).Scan(&m.Count, &m.Round)
	if err != nil {
		return StandingsMarker{}, fmt.Errorf("failed to query %s marker: %w", table, err)
	}

	return m, nil
}

// ListDriverStandings returns joined driver standings ordered by position
func (r *PostgresStandingsRepository) ListDriverStandings(ctx context.Context, season int) ([]models.StandingEntry, error) {
	query := `
		SELECT ds.position, ds.points, ds.wins,
		       d.external_id, d.given_name || ' ' || d.family_name, t.name
		FROM driver_standings ds
		JOIN drivers d ON ds.driver_id = d.id
		JOIN teams t ON ds.team_id = t.id
		WHERE ds.season = $1
		ORDER BY ds.position ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query driver standings: %w", err)
	}
	defer rows.Close()

	var entries []models.StandingEntry
	for rows.Next() {
		entry := models.StandingEntry{}
		err := rows.Scan(
			&entry.Position, &entry.Points, &entry.Wins,
			&entry.EntityRef, &entry.EntityName, &entry.TeamName,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanStandingEntry, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListConstructorStandings returns joined constructor standings ordered by position
func (r *PostgresStandingsRepository) ListConstructorStandings(ctx context.Context, season int) ([]models.StandingEntry, error) {
	query := `
		SELECT cs.position, cs.points, cs.wins, c.external_id, c.name
		FROM constructor_standings cs
		JOIN constructors c ON cs.constructor_id = c.id
		WHERE cs.season = $1
		ORDER BY cs.position ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query constructor standings: %w", err)
	}
	defer rows.Close()

	var entries []models.StandingEntry
	for rows.Next() {
		entry := models.StandingEntry{}
		err := rows.Scan(
			&entry.Position, &entry.Points, &entry.Wins,
			&entry.EntityRef, &entry.EntityName,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanStandingEntry, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
