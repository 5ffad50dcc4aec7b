// Package models defines the persisted motorsport entities.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SportCategory labels every event row; only Formula 1 is ingested today.
const SportCategoryF1 = "F1"

// Session subtypes as stored on events.sub_event_type.
const (
	SessionRace             = "Race"
	SessionFirstPractice    = "FP1"
	SessionSecondPractice   = "FP2"
	SessionThirdPractice    = "FP3"
	SessionQualifying       = "Qualifying"
	SessionSprint           = "Sprint"
	SessionSprintQualifying = "Sprint Qualifying"
)

// Venue is a circuit. Rows are created on first encounter and never mutated;
// the upstream source does not revise venue metadata.
type Venue struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Driver is created on first encounter during result or standings import and
// never updated afterwards. Schedule import never creates drivers.
type Driver struct {
	ID           int64   `json:"id"`
	ExternalID   string  `json:"external_id"`
	ShortCode    *string `json:"short_code,omitempty"`
	Number       *int    `json:"number,omitempty"`
	GivenName    string  `json:"given_name"`
	FamilyName   string  `json:"family_name"`
	Nationality  *string `json:"nationality,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"`
	ReferenceURL *string `json:"reference_url,omitempty"`
}

// Constructor is the logical chassis builder. One constructor may back several
// team rows over time (rebrands keep the constructor linkage).
type Constructor struct {
	ID           int64   `json:"id"`
	ExternalID   string  `json:"external_id"`
	Name         string  `json:"name"`
	Nationality  *string `json:"nationality,omitempty"`
	ReferenceURL *string `json:"reference_url,omitempty"`
}

// Team is the entry as it races in a given era. ConstructorID is deliberately
// mutable: re-resolution relinks the team to the constructor reported by the
// latest upstream record instead of creating a duplicate team row.
type Team struct {
	ID            int64   `json:"id"`
	ExternalID    string  `json:"external_id"`
	Name          string  `json:"name"`
	Nationality   *string `json:"nationality,omitempty"`
	ReferenceURL  *string `json:"reference_url,omitempty"`
	ConstructorID int64   `json:"constructor_id"`
}

// Event is a single scheduled session. ExternalID is derived, not upstream
// assigned: "{season}-{round}-{suffix}" where suffix is the lowercased,
// space-stripped session subtype. Insertion is duplicate-suppressing.
type Event struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id"`
	Category     string    `json:"sport_category"`
	Season       int       `json:"season"`
	Round        int       `json:"round"`
	Name         string    `json:"name"`
	SubEventType string    `json:"sub_event_type"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	VenueID      int64     `json:"venue_id"`
}

// EventExternalID derives the natural key for a session row.
func EventExternalID(season, round int, subEventType string) string {
	suffix := strings.ToLower(strings.ReplaceAll(subEventType, " ", ""))
	return fmt.Sprintf("%d-%d-%s", season, round, suffix)
}

// Result is one classified entry per (event, driver). Re-import overwrites
// finish position, points and the detail blob only.
type Result struct {
	ID                 int64           `json:"id"`
	EventID            int64           `json:"event_id"`
	DriverID           int64           `json:"driver_id"`
	TeamID             int64           `json:"team_id"`
	ConstructorID      int64           `json:"constructor_id"`
	StartingPosition   *int            `json:"starting_position,omitempty"`
	FinishPosition     *int            `json:"finish_position,omitempty"`
	FinishPositionText string          `json:"finish_position_text"`
	Points             decimal.Decimal `json:"points"`
	Laps               *int            `json:"laps,omitempty"`
	Status             *string         `json:"status,omitempty"`
	TimeMillis         *int64          `json:"time_millis,omitempty"`
	TimeText           *string         `json:"time_text,omitempty"`
	FastestLapNumber   *int            `json:"fastest_lap_number,omitempty"`
	FastestLapRank     *int            `json:"fastest_lap_rank,omitempty"`
	FastestLapTime     *string         `json:"fastest_lap_time,omitempty"`
	Detail             json.RawMessage `json:"detail,omitempty"`
}

// Standing is one championship row. Depending on the table it is keyed by
// (driver, season), (constructor, season) or (team, season). Round is the
// synchronization marker the freshness check reads.
type Standing struct {
	ID       int64           `json:"id"`
	EntityID int64           `json:"entity_id"`
	TeamID   int64           `json:"team_id,omitempty"`
	Season   int             `json:"season"`
	Round    int             `json:"round"`
	Position int             `json:"position"`
	Points   decimal.Decimal `json:"points"`
	Wins     int             `json:"wins"`
}

// ScheduleEntry is an event joined with its venue for read responses.
type ScheduleEntry struct {
	Event
	VenueName    string `json:"venue_name"`
	VenueCity    string `json:"venue_city"`
	VenueCountry string `json:"venue_country"`
}

// ResultEntry is a result joined with driver, team and constructor names.
type ResultEntry struct {
	Position     *int            `json:"position"`
	PositionText string          `json:"position_text"`
	Points       decimal.Decimal `json:"points"`
	TimeText     *string         `json:"time_text,omitempty"`
	Status       *string         `json:"status,omitempty"`
	DriverName   string          `json:"driver_name"`
	DriverNumber *int            `json:"driver_number,omitempty"`
	TeamName     string          `json:"team_name"`
	Constructor  string          `json:"constructor_name"`
	Detail       json.RawMessage `json:"detail,omitempty"`
}

// StandingEntry is a standings row joined with display names.
type StandingEntry struct {
	Position   int             `json:"position"`
	Points     decimal.Decimal `json:"points"`
	Wins       int             `json:"wins"`
	EntityRef  string          `json:"entity_ref"`
	EntityName string          `json:"name"`
	TeamName   string          `json:"team_name,omitempty"`
}
