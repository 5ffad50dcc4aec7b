package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/ergast"
	"github.com/yourusername/pitwall/internal/metrics"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/repository"
)

// Fallback clock times applied when upstream omits the time component
const (
	raceTimeFallback    = "14:00:00Z"
	sessionTimeFallback = "12:00:00Z"
)

// sessionPlan drives the expansion of one upstream race entry into event
// rows. Order is fixed so re-ingestion walks sessions deterministically.
var sessionPlan = []struct {
	label string
	pick  func(*ergast.Race) *ergast.Session
}{
	{models.SessionFirstPractice, func(r *ergast.Race) *ergast.Session { return r.FirstPractice }},
	{models.SessionSecondPractice, func(r *ergast.Race) *ergast.Session { return r.SecondPractice }},
	{models.SessionThirdPractice, func(r *ergast.Race) *ergast.Session { return r.ThirdPractice }},
	{models.SessionQualifying, func(r *ergast.Race) *ergast.Session { return r.Qualifying }},
	{models.SessionSprint, func(r *ergast.Race) *ergast.Session { return r.Sprint }},
	{models.SessionSprintQualifying, func(r *ergast.Race) *ergast.Session { return r.SprintQualifying }},
}

// ResultImport reports the outcome of a result import
type ResultImport struct {
	Saved    int    `json:"saved"`
	RaceName string `json:"race_name"`
}

// IngestionService orchestrates fetch-reconcile-persist cycles: query
// upstream, resolve referenced entities, merge the facts into storage with
// upsert semantics keyed by natural identifiers. Every procedure is
// re-runnable; duplicate work is suppressed by the storage-level conflict
// handling, never reported as an error.
type IngestionService struct {
	upstream  ergast.API
	resolver  *EntityResolver
	events    repository.EventRepository
	results   repository.ResultRepository
	standings repository.StandingsRepository
	logger    *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	upstream ergast.API,
	resolver *EntityResolver,
	events repository.EventRepository,
	results repository.ResultRepository,
	standings repository.StandingsRepository,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		upstream:  upstream,
		resolver:  resolver,
		events:    events,
		results:   results,
		standings: standings,
		logger:    logger,
	}
}

// ImportSchedule fetches the full season calendar and inserts one event per
// scheduled session. Inserts are duplicate-suppressing, so running against an
// already-partially-populated season is safe. No freshness marker is written;
// the event rows themselves are the cache.
func (s *IngestionService) ImportSchedule(ctx context.Context, season int) (int, error) {
	runLog := s.logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"season": season,
	})
	started := time.Now()
	defer func() {
		metrics.IngestionDuration.WithLabelValues("schedule").Observe(time.Since(started).Seconds())
	}()

	metrics.UpstreamRequestsTotal.WithLabelValues("schedule").Inc()
	races, err := s.upstream.FetchSeasonSchedule(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch season schedule: %w", err)
	}

	runLog.WithField("races", len(races)).Info("Importing season schedule")

	written := 0
	for i := range races {
		n, err := s.importRaceWeekend(ctx, season, &races[i])
		if err != nil {
			return written, err
		}
		written += n
	}

	runLog.WithField("events", written).Info("Season schedule imported")
	return written, nil
}

// importRaceWeekend expands one calendar entry into its event rows
func (s *IngestionService) importRaceWeekend(ctx context.Context, season int, race *ergast.Race) (int, error) {
	round, err := ergast.ParseInt(race.Round)
	if err != nil {
		return 0, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData, "invalid round", err)
	}

	venueID, err := s.resolver.ResolveVenue(ctx, &models.Venue{
		ExternalID: race.Circuit.CircuitID,
		Name:       race.Circuit.CircuitName,
		City:       race.Circuit.Location.Locality,
		Country:    race.Circuit.Location.Country,
	})
	if err != nil {
		return 0, err
	}

	raceAt, err := ergast.SessionTime(race.Date, race.Time, raceTimeFallback)
	if err != nil {
		return 0, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData, "invalid race date", err)
	}

	written := 0
	raceEvent := &models.Event{
		ExternalID:   models.EventExternalID(season, round, models.SessionRace),
		Category:     models.SportCategoryF1,
		Season:       season,
		Round:        round,
		Name:         race.RaceName,
		SubEventType: models.SessionRace,
		ScheduledAt:  raceAt,
		VenueID:      venueID,
	}
	if err := s.events.InsertIgnore(ctx, raceEvent); err != nil {
		return written, err
	}
	metrics.RowsWrittenTotal.WithLabelValues("events").Inc()
	written++

	for _, plan := range sessionPlan {
		session := plan.pick(race)
		if session == nil {
			continue
		}

		sessionAt, err := ergast.SessionTime(session.Date, session.Time, sessionTimeFallback)
		if err != nil {
			return written, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData, "invalid session date", err)
		}

		event := &models.Event{
			ExternalID:   models.EventExternalID(season, round, plan.label),
			Category:     models.SportCategoryF1,
			Season:       season,
			Round:        round,
			Name:         race.RaceName,
			SubEventType: plan.label,
			ScheduledAt:  sessionAt,
			VenueID:      venueID,
		}
		if err := s.events.InsertIgnore(ctx, event); err != nil {
			return written, err
		}
		metrics.RowsWrittenTotal.WithLabelValues("events").Inc()
		written++
	}

	return written, nil
}

// ImportResults fetches one round's classified results and upserts a row per
// (event, driver). The round's Race event must already exist locally; results
// cannot be imported for a race whose schedule was never ingested.
func (s *IngestionService) ImportResults(ctx context.Context, season, round int) (*ResultImport, error) {
	runLog := s.logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"season": season,
		"round":  round,
	})
	started := time.Now()
	defer func() {
		metrics.IngestionDuration.WithLabelValues("results").Observe(time.Since(started).Seconds())
	}()

	metrics.UpstreamRequestsTotal.WithLabelValues("results").Inc()
	races, err := s.upstream.FetchRaceResults(ctx, season, round)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch race results: %w", err)
	}
	if len(races) == 0 {
		return nil, models.ErrNotFound
	}

	race := &races[0]
	eventID, err := s.events.RaceEventID(ctx, season, round)
	if err != nil {
		return nil, err
	}

	saved := 0
	for i := range race.Results {
		if err := s.importResultEntry(ctx, eventID, &race.Results[i]); err != nil {
			return nil, err
		}
		saved++
	}

	runLog.WithFields(logrus.Fields{"race": race.RaceName, "saved": saved}).Info("Race results imported")
	return &ResultImport{Saved: saved, RaceName: race.RaceName}, nil
}

// importResultEntry resolves the referenced entities and upserts one result
func (s *IngestionService) importResultEntry(ctx context.Context, eventID int64, res *ergast.RaceResult) error {
	driverID, err := s.resolver.ResolveDriver(ctx, driverFromRef(&res.Driver))
	if err != nil {
		return err
	}

	teamID, constructorID, err := s.resolver.ResolveConstructorTeam(ctx, constructorFromRef(&res.Constructor))
	if err != nil {
		return err
	}

	// Preserve the full upstream record pieces not otherwise modeled
	detail, err := json.Marshal(map[string]interface{}{
		"time_details":        res.Time,
		"fastest_lap_details": res.FastestLap,
		"grid_original":       res.Grid,
	})
	if err != nil {
		return fmt.Errorf("failed to encode result detail: %w", err)
	}

	result := &models.Result{
		EventID:            eventID,
		DriverID:           driverID,
		TeamID:             teamID,
		ConstructorID:      constructorID,
		StartingPosition:   ergast.ParseIntPtr(res.Grid),
		FinishPosition:     ergast.ParseIntPtr(res.Position),
		FinishPositionText: res.PositionText,
		Points:             ergast.ParsePoints(res.Points),
		Laps:               ergast.ParseIntPtr(res.Laps),
		Status:             stringPtr(res.Status),
		Detail:             detail,
	}
	if res.Time != nil {
		result.TimeMillis = ergast.ParseInt64Ptr(res.Time.Millis)
		result.TimeText = stringPtr(res.Time.Time)
	}
	if res.FastestLap != nil {
		result.FastestLapNumber = ergast.ParseIntPtr(res.FastestLap.Lap)
		result.FastestLapRank = ergast.ParseIntPtr(res.FastestLap.Rank)
		if res.FastestLap.Time != nil {
			result.FastestLapTime = stringPtr(res.FastestLap.Time.Time)
		}
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return err
	}
	metrics.RowsWrittenTotal.WithLabelValues("results").Inc()

	return nil
}

// ImportDriverStandings fetches the season's driver standings, persists them
// with the upstream-reported round as the freshness marker, and returns the
// mapped upstream list. Persistence completes before the caller responds.
func (s *IngestionService) ImportDriverStandings(ctx context.Context, season int) ([]models.StandingEntry, error) {
	started := time.Now()
	defer func() {
		metrics.IngestionDuration.WithLabelValues("driver_standings").Observe(time.Since(started).Seconds())
	}()

	metrics.UpstreamRequestsTotal.WithLabelValues("driver_standings").Inc()
	list, err := s.upstream.FetchDriverStandings(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver standings: %w", err)
	}
	if list == nil {
		// Season has no standings yet; nothing to cache
		return []models.StandingEntry{}, nil
	}

	round, err := ergast.ParseInt(list.Round)
	if err != nil {
		return nil, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData, "invalid standings round", err)
	}

	entries := make([]models.StandingEntry, 0, len(list.DriverStandings))
	for i := range list.DriverStandings {
		st := &list.DriverStandings[i]
		if len(st.Constructors) == 0 {
			return nil, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData,
				"driver standing entry missing constructor", nil)
		}

		driverID, err := s.resolver.ResolveDriver(ctx, driverFromRef(&st.Driver))
		if err != nil {
			return nil, err
		}

		teamID, _, err := s.resolver.ResolveConstructorTeam(ctx, constructorFromRef(&st.Constructors[0]))
		if err != nil {
			return nil, err
		}

		standing := &models.Standing{
			EntityID: driverID,
			TeamID:   teamID,
			Season:   season,
			Round:    round,
			Position: mustInt(st.Position),
			Points:   ergast.ParsePoints(st.Points),
			Wins:     mustInt(st.Wins),
		}
		if err := s.standings.UpsertDriverStanding(ctx, standing); err != nil {
			return nil, err
		}
		metrics.RowsWrittenTotal.WithLabelValues("driver_standings").Inc()

		entries = append(entries, models.StandingEntry{
			Position:   standing.Position,
			Points:     standing.Points,
			Wins:       standing.Wins,
			EntityRef:  st.Driver.DriverID,
			EntityName: st.Driver.GivenName + " " + st.Driver.FamilyName,
			TeamName:   st.Constructors[0].Name,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"season": season,
		"round":  round,
		"rows":   len(entries),
	}).Info("Driver standings synchronized")

	return entries, nil
}

// ImportConstructorStandings fetches the season's constructor standings and
// persists each entry as a constructor row plus a parallel team row; the two
// aggregates share position, points and wins but are tracked separately.
func (s *IngestionService) ImportConstructorStandings(ctx context.Context, season int) ([]models.StandingEntry, error) {
	started := time.Now()
	defer func() {
		metrics.IngestionDuration.WithLabelValues("constructor_standings").Observe(time.Since(started).Seconds())
	}()

	metrics.UpstreamRequestsTotal.WithLabelValues("constructor_standings").Inc()
	list, err := s.upstream.FetchConstructorStandings(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch constructor standings: %w", err)
	}
	if list == nil {
		return []models.StandingEntry{}, nil
	}

	round, err := ergast.ParseInt(list.Round)
	if err != nil {
		return nil, ergast.NewSourceError("ergast", ergast.ErrCodeInvalidData, "invalid standings round", err)
	}

	entries := make([]models.StandingEntry, 0, len(list.ConstructorStandings))
	for i := range list.ConstructorStandings {
		st := &list.ConstructorStandings[i]

		teamID, constructorID, err := s.resolver.ResolveConstructorTeam(ctx, constructorFromRef(&st.Constructor))
		if err != nil {
			return nil, err
		}

		position := mustInt(st.Position)
		points := ergast.ParsePoints(st.Points)
		wins := mustInt(st.Wins)

		constructorRow := &models.Standing{
			EntityID: constructorID,
			Season:   season,
			Round:    round,
			Position: position,
			Points:   points,
			Wins:     wins,
		}
		teamRow := &models.Standing{
			EntityID: teamID,
			Season:   season,
			Round:    round,
			Position: position,
			Points:   points,
			Wins:     wins,
		}
		if err := s.standings.UpsertConstructorStandings(ctx, constructorRow, teamRow); err != nil {
			return nil, err
		}
		metrics.RowsWrittenTotal.WithLabelValues("constructor_standings").Inc()

		entries = append(entries, models.StandingEntry{
			Position:   position,
			Points:     points,
			Wins:       wins,
			EntityRef:  st.Constructor.ConstructorID,
			EntityName: st.Constructor.Name,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"season": season,
		"round":  round,
		"rows":   len(entries),
	}).Info("Constructor standings synchronized")

	return entries, nil
}

// driverFromRef maps the upstream driver record to the persisted model
func driverFromRef(ref *ergast.DriverRef) *models.Driver {
	return &models.Driver{
		ExternalID:   ref.DriverID,
		ShortCode:    stringPtr(ref.Code),
		Number:       ergast.ParseIntPtr(ref.PermanentNumber),
		GivenName:    ref.GivenName,
		FamilyName:   ref.FamilyName,
		Nationality:  stringPtr(ref.Nationality),
		DateOfBirth:  stringPtr(ref.DateOfBirth),
		ReferenceURL: stringPtr(ref.URL),
	}
}

// constructorFromRef maps the upstream constructor record to the persisted model
func constructorFromRef(ref *ergast.TeamRef) *models.Constructor {
	return &models.Constructor{
		ExternalID:   ref.ConstructorID,
		Name:         ref.Name,
		Nationality:  stringPtr(ref.Nationality),
		ReferenceURL: stringPtr(ref.URL),
	}
}

// stringPtr returns nil for empty upstream strings
func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mustInt parses an already-validated numeric string, defaulting to zero
func mustInt(s string) int {
	n, _ := ergast.ParseInt(s)
	return n
}
