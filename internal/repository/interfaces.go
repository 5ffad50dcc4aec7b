// Package repository provides PostgreSQL persistence for motorsport entities.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/pitwall/internal/models"
)

// VenueRepository persists circuits
type VenueRepository interface {
	// Resolve returns the surrogate id for the venue's external id, inserting
	// the row when absent. Existing rows are never mutated.
	Resolve(ctx context.Context, venue *models.Venue) (int64, error)
}

// DriverRepository persists drivers
type DriverRepository interface {
	// Resolve returns the surrogate id for the driver's external id, inserting
	// the row when absent. Existing rows are never mutated.
	Resolve(ctx context.Context, driver *models.Driver) (int64, error)
}

// TeamRepository persists constructors and the team rows layered on them
type TeamRepository interface {
	// ResolveConstructor returns the surrogate id for the constructor's
	// external id, inserting the row when absent.
	ResolveConstructor(ctx context.Context, constructor *models.Constructor) (int64, error)

	// ResolveTeam returns the surrogate id for the team's external id. The
	// constructor linkage is refreshed on every call, whether or not the team
	// row already existed.
	ResolveTeam(ctx context.Context, team *models.Team) (int64, error)
}

// EventRepository persists scheduled sessions
type EventRepository interface {
	// InsertIgnore inserts the event, suppressing duplicates on external_id
	InsertIgnore(ctx context.Context, event *models.Event) error

	// RaceEventID returns the id of the Race-type event for (season, round),
	// or models.ErrEventNotFound
	RaceEventID(ctx context.Context, season, round int) (int64, error)

	// LatestCompletedRound returns the highest round whose race was scheduled
	// at or before asOf, or 0 when no race has run
	LatestCompletedRound(ctx context.Context, season int, asOf time.Time) (int, error)

	// ListSchedule returns the season's events joined with venue attributes,
	// ordered by scheduled time
	ListSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error)
}

// ResultRepository persists classified race results
type ResultRepository interface {
	// Upsert writes the result keyed by (event, driver); on conflict it
	// overwrites finish position, points and the detail blob only
	Upsert(ctx context.Context, result *models.Result) error

	// ListByRace returns the joined result rows for a (season, round) race,
	// ordered by finish position
	ListByRace(ctx context.Context, season, round int) ([]models.ResultEntry, error)
}

// StandingsMarker summarizes a season's cached standings state
type StandingsMarker struct {
	Round int // -1 when no rows are stored
	Count int
}

// StandingsRepository persists championship standings
type StandingsRepository interface {
	// UpsertDriverStanding writes a driver standings row keyed by (driver, season)
	UpsertDriverStanding(ctx context.Context, standing *models.Standing) error

	// UpsertConstructorStandings writes the constructor row and its parallel
	// team row in a single transaction
	UpsertConstructorStandings(ctx context.Context, constructor, team *models.Standing) error

	// DriverMarker returns the stored round and row count for a season
	DriverMarker(ctx context.Context, season int) (StandingsMarker, error)

	// ConstructorMarker returns the stored round and row count for a season
	ConstructorMarker(ctx context.Context, season int) (StandingsMarker, error)

	// ListDriverStandings returns joined driver standings ordered by position
	ListDriverStandings(ctx context.Context, season int) ([]models.StandingEntry, error)

	// ListConstructorStandings returns joined constructor standings ordered by position
	ListConstructorStandings(ctx context.Context, season int) ([]models.StandingEntry, error)
}
