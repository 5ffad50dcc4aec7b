package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

const errScanScheduleEntry = "failed to scan schedule entry: %w"

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *database.DB
}

// NewPostgresEventRepository creates a new event repository
func NewPostgresEventRepository(db *database.DB) EventRepository {
	return &PostgresEventRepository{db: db}
}

// InsertIgnore inserts the event, suppressing duplicates on external_id.
// Re-ingesting a partially populated season must never error.
func (r *PostgresEventRepository) InsertIgnore(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (external_id, sport_category, season, round, name,
		                    sub_event_type, scheduled_at, venue_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO NOTHING
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		event.ExternalID, event.Category, event.Season, event.Round,
		event.Name, event.SubEventType, event.ScheduledAt, event.VenueID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", event.ExternalID, err)
	}

	return nil
}

// RaceEventID returns the id of the Race-type event for (season, round)
func (r *PostgresEventRepository) RaceEventID(ctx context.Context, season, round int) (int64, error) {
	query := `
		SELECT id FROM events
		WHERE sport_category = $1 AND season = $2 AND round = $3 AND sub_event_type = $4
	`

	var id int64
	err := r.db.GetPool().QueryRow(ctx, query,
		models.SportCategoryF1, season, round, models.SessionRace,
	).Scan(&id)
	if err == pgx.ErrNoRows {
		return 0, models.ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up race event: %w", err)
	}

	return id, nil
}

// LatestCompletedRound returns the highest round whose race was scheduled at
// or before asOf, or 0 when no race has run yet
func (r *PostgresEventRepository) LatestCompletedRound(ctx context.Context, season int, asOf time.Time) (int, error) {
	query := `
		SELECT COALESCE(MAX(round), 0) FROM events
		WHERE sport_category = $1 AND season = $2 AND sub_event_type = $3 AND scheduled_at <= $4
	`

	var round int
	err := r.db.GetPool().QueryRow(ctx, query,
		models.SportCategoryF1, season, models.SessionRace, asOf,
	).Scan(&round)
	if err != nil {
		return 0, fmt.Errorf("failed to query latest completed round: %w", err)
	}

	return round, nil
}

// ListSchedule returns the season's events joined with venue attributes
func (r *PostgresEventRepository) ListSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error) {
	query := `
		SELECT e.id, e.external_id, e.sport_category, e.season, e.round, e.name,
		       e.sub_event_type, e.scheduled_at, e.venue_id,
		       v.name, v.city, v.country
		FROM events e
		LEFT JOIN venues v ON e.venue_id = v.id
		WHERE e.sport_category = $1 AND e.season = $2
		ORDER BY e.scheduled_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, models.SportCategoryF1, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		entry := models.ScheduleEntry{}
		err := rows.Scan(
			&entry.ID, &entry.ExternalID, &entry.Category, &entry.Season, &entry.Round,
			&entry.Name, &entry.SubEventType, &entry.ScheduledAt, &entry.VenueID,
			&entry.VenueName, &entry.VenueCity, &entry.VenueCountry,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanScheduleEntry, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
