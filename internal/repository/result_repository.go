package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

const errScanResultEntry = "failed to scan result entry: %w"

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// Upsert writes the result keyed by (event, driver). The conflict branch
// overwrites finish position, points and the detail blob only; all other
// columns keep their originally written values.
func (r *PostgresResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (event_id, driver_id, team_id, constructor_id,
		                     starting_position, finish_position, finish_position_text,
		                     points, laps, status, time_millis, time_text,
		                     fastest_lap_number, fastest_lap_rank, fastest_lap_time, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (event_id, driver_id) DO UPDATE SET
			finish_position = EXCLUDED.finish_position,
			points = EXCLUDED.points,
			detail = EXCLUDED.detail
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		result.EventID, result.DriverID, result.TeamID, result.ConstructorID,
		result.StartingPosition, result.FinishPosition, result.FinishPositionText,
		result.Points, result.Laps, result.Status, result.TimeMillis, result.TimeText,
		result.FastestLapNumber, result.FastestLapRank, result.FastestLapTime, result.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}

	return nil
}

// ListByRace returns the joined result rows for a (season, round) race
func (r *PostgresResultRepository) ListByRace(ctx context.Context, season, round int) ([]models.ResultEntry, error) {
	query := `
		SELECT r.finish_position, r.finish_position_text, r.points, r.time_text, r.status,
		       d.given_name || ' ' || d.family_name, d.number,
		       t.name, c.name, r.detail
		FROM results r
		JOIN drivers d ON r.driver_id = d.id
		JOIN teams t ON r.team_id = t.id
		JOIN constructors c ON r.constructor_id = c.id
		JOIN events e ON r.event_id = e.id
		WHERE e.season = $1 AND e.round = $2
		  AND e.sport_category = $3 AND e.sub_event_type = $4
		ORDER BY r.finish_position ASC NULLS LAST
	`

	rows, err := r.db.GetPool().Query(ctx, query,
		season, round, models.SportCategoryF1, models.SessionRace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query race results: %w", err)
	}
	defer rows.Close()

	var entries []models.ResultEntry
	for rows.Next() {
		entry := models.ResultEntry{}
		err := rows.Scan(
			&entry.Position, &entry.PositionText, &entry.Points, &entry.TimeText,
			&entry.Status, &entry.DriverName, &entry.DriverNumber,
			&entry.TeamName, &entry.Constructor, &entry.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanResultEntry, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
