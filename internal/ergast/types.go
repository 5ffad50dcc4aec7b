package ergast

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// The upstream API wraps everything in an MRData envelope. Numeric values
// arrive as JSON strings; parse helpers below convert them on demand.

// Envelope is the top-level response wrapper
type Envelope struct {
	MRData MRData `json:"MRData"`
}

// MRData carries one of the two tables depending on the endpoint
type MRData struct {
	RaceTable      *RaceTable      `json:"RaceTable,omitempty"`
	StandingsTable *StandingsTable `json:"StandingsTable,omitempty"`
}

// RaceTable holds the race list for schedule and result endpoints
type RaceTable struct {
	Season string `json:"season"`
	Races  []Race `json:"Races"`
}

// StandingsTable holds the standings lists
type StandingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

// Race is a calendar entry; the result endpoint fills Results as well
type Race struct {
	Season   string  `json:"season" validate:"required"`
	Round    string  `json:"round" validate:"required"`
	RaceName string  `json:"raceName" validate:"required"`
	Circuit  Circuit `json:"Circuit" validate:"required"`
	Date     string  `json:"date" validate:"required"`
	Time     string  `json:"time"`

	FirstPractice    *Session `json:"FirstPractice,omitempty"`
	SecondPractice   *Session `json:"SecondPractice,omitempty"`
	ThirdPractice    *Session `json:"ThirdPractice,omitempty"`
	Qualifying       *Session `json:"Qualifying,omitempty"`
	Sprint           *Session `json:"Sprint,omitempty"`
	SprintQualifying *Session `json:"SprintQualifying,omitempty"`

	Results []RaceResult `json:"Results,omitempty"`
}

// Session is a practice/qualifying/sprint slot on the calendar
type Session struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Circuit describes the venue
type Circuit struct {
	CircuitID   string   `json:"circuitId" validate:"required"`
	CircuitName string   `json:"circuitName" validate:"required"`
	URL         string   `json:"url"`
	Location    Location `json:"Location"`
}

// Location is the circuit's place
type Location struct {
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// RaceResult is a single classified entry
type RaceResult struct {
	Number       string       `json:"number"`
	Position     string       `json:"position" validate:"required"`
	PositionText string       `json:"positionText"`
	Points       string       `json:"points"`
	Grid         string       `json:"grid"`
	Laps         string       `json:"laps"`
	Status       string       `json:"status"`
	Driver       DriverRef    `json:"Driver" validate:"required"`
	Constructor  TeamRef      `json:"Constructor" validate:"required"`
	Time         *ElapsedTime `json:"Time,omitempty"`
	FastestLap   *FastestLap  `json:"FastestLap,omitempty"`
}

// DriverRef is the upstream driver record
type DriverRef struct {
	DriverID        string `json:"driverId" validate:"required"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

// TeamRef is the upstream constructor record
type TeamRef struct {
	ConstructorID string `json:"constructorId" validate:"required"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

// ElapsedTime is the race time of a finisher
type ElapsedTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

// FastestLap is the fastest-lap block of a result entry
type FastestLap struct {
	Rank string       `json:"rank"`
	Lap  string       `json:"lap"`
	Time *ElapsedTime `json:"Time,omitempty"`
}

// StandingsList is one standings snapshot; exactly one of the two slices is
// populated depending on the endpoint
type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round" validate:"required"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

// DriverStanding is one championship row for a driver
type DriverStanding struct {
	Position     string    `json:"position" validate:"required"`
	PositionText string    `json:"positionText"`
	Points       string    `json:"points"`
	Wins         string    `json:"wins"`
	Driver       DriverRef `json:"Driver" validate:"required"`
	Constructors []TeamRef `json:"Constructors" validate:"required,min=1"`
}

// ConstructorStanding is one championship row for a constructor
type ConstructorStanding struct {
	Position     string  `json:"position" validate:"required"`
	PositionText string  `json:"positionText"`
	Points       string  `json:"points"`
	Wins         string  `json:"wins"`
	Constructor  TeamRef `json:"Constructor" validate:"required"`
}

// ParseInt converts an upstream numeric string, empty meaning absent
func ParseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return n, nil
}

// ParseIntPtr converts an upstream numeric string to *int, nil when absent or
// non-numeric ("R" in positionText style fields)
func ParseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseInt64Ptr converts an upstream numeric string to *int64
func ParseInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParsePoints converts the points string, defaulting to zero when absent
func ParsePoints(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SessionTime combines the date and time fields, applying the fallback clock
// time used when upstream omits the time component
func SessionTime(date, clock, fallback string) (time.Time, error) {
	if clock == "" {
		clock = fallback
	}
	t, err := time.Parse(time.RFC3339, date+"T"+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session timestamp %q %q: %w", date, clock, err)
	}
	return t, nil
}
