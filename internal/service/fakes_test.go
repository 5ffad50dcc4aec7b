package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/ergast"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// conflict-handling semantics of the real PostgreSQL implementations closely
// enough that the services cannot tell the difference.

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeVenueRepo struct {
	mu      sync.Mutex
	byExt   map[string]int64
	inserts int
	next    int64
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byExt: make(map[string]int64)}
}

func (f *fakeVenueRepo) Resolve(_ context.Context, venue *models.Venue) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byExt[venue.ExternalID]; ok {
		return id, nil
	}
	f.next++
	f.inserts++
	f.byExt[venue.ExternalID] = f.next
	return f.next, nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	byExt   map[string]int64
	rows    map[int64]models.Driver
	inserts int
	next    int64
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{byExt: make(map[string]int64), rows: make(map[int64]models.Driver)}
}

func (f *fakeDriverRepo) Resolve(_ context.Context, driver *models.Driver) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byExt[driver.ExternalID]; ok {
		return id, nil
	}
	f.next++
	f.inserts++
	f.byExt[driver.ExternalID] = f.next
	stored := *driver
	stored.ID = f.next
	f.rows[f.next] = stored
	return f.next, nil
}

type fakeTeamRepo struct {
	mu           sync.Mutex
	constructors map[string]int64
	teams        map[string]int64
	teamLinks    map[int64]int64 // team id -> constructor id
	teamResolves int
	nextTeam     int64
	nextConstr   int64
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		constructors: make(map[string]int64),
		teams:        make(map[string]int64),
		teamLinks:    make(map[int64]int64),
	}
}

func (f *fakeTeamRepo) ResolveConstructor(_ context.Context, constructor *models.Constructor) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.constructors[constructor.ExternalID]; ok {
		return id, nil
	}
	f.nextConstr++
	f.constructors[constructor.ExternalID] = f.nextConstr
	return f.nextConstr, nil
}

func (f *fakeTeamRepo) ResolveTeam(_ context.Context, team *models.Team) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teamResolves++
	id, ok := f.teams[team.ExternalID]
	if !ok {
		f.nextTeam++
		id = f.nextTeam
		f.teams[team.ExternalID] = id
	}
	// linkage refresh happens on every call, matching the upsert
	f.teamLinks[id] = team.ConstructorID
	return id, nil
}

type fakeEventRepo struct {
	mu         sync.Mutex
	byExt      map[string]*models.Event
	suppressed int
	next       int64
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byExt: make(map[string]*models.Event)}
}

func (f *fakeEventRepo) InsertIgnore(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byExt[event.ExternalID]; ok {
		f.suppressed++
		return nil
	}
	f.next++
	stored := *event
	stored.ID = f.next
	f.byExt[event.ExternalID] = &stored
	return nil
}

func (f *fakeEventRepo) RaceEventID(_ context.Context, season, round int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byExt {
		if e.Season == season && e.Round == round && e.SubEventType == models.SessionRace {
			return e.ID, nil
		}
	}
	return 0, models.ErrEventNotFound
}

func (f *fakeEventRepo) LatestCompletedRound(_ context.Context, season int, asOf time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := 0
	for _, e := range f.byExt {
		if e.Season == season && e.SubEventType == models.SessionRace && !e.ScheduledAt.After(asOf) && e.Round > latest {
			latest = e.Round
		}
	}
	return latest, nil
}

func (f *fakeEventRepo) ListSchedule(_ context.Context, season int) ([]models.ScheduleEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.ScheduleEntry
	for _, e := range f.byExt {
		if e.Season == season {
			entries = append(entries, models.ScheduleEntry{Event: *e})
		}
	}
	return entries, nil
}

type resultKey struct {
	eventID  int64
	driverID int64
}

type fakeResultRepo struct {
	mu      sync.Mutex
	rows    map[resultKey]*models.Result
	upserts int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{rows: make(map[resultKey]*models.Result)}
}

func (f *fakeResultRepo) Upsert(_ context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	key := resultKey{eventID: result.EventID, driverID: result.DriverID}
	if existing, ok := f.rows[key]; ok {
		existing.FinishPosition = result.FinishPosition
		existing.Points = result.Points
		existing.Detail = result.Detail
		return nil
	}
	stored := *result
	f.rows[key] = &stored
	return nil
}

func (f *fakeResultRepo) ListByRace(_ context.Context, _, _ int) ([]models.ResultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.ResultEntry
	for _, r := range f.rows {
		entries = append(entries, models.ResultEntry{
			Position: r.FinishPosition,
			Points:   r.Points,
		})
	}
	return entries, nil
}

type standingKey struct {
	entityID int64
	season   int
}

type fakeStandingsRepo struct {
	mu         sync.Mutex
	driverRows map[standingKey]*models.Standing
	constrRows map[standingKey]*models.Standing
	teamRows   map[standingKey]*models.Standing
}

func newFakeStandingsRepo() *fakeStandingsRepo {
	return &fakeStandingsRepo{
		driverRows: make(map[standingKey]*models.Standing),
		constrRows: make(map[standingKey]*models.Standing),
		teamRows:   make(map[standingKey]*models.Standing),
	}
}

func (f *fakeStandingsRepo) UpsertDriverStanding(_ context.Context, standing *models.Standing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *standing
	f.driverRows[standingKey{entityID: standing.EntityID, season: standing.Season}] = &stored
	return nil
}

func (f *fakeStandingsRepo) UpsertConstructorStandings(_ context.Context, constructor, team *models.Standing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs := *constructor
	ts := *team
	f.constrRows[standingKey{entityID: constructor.EntityID, season: constructor.Season}] = &cs
	f.teamRows[standingKey{entityID: team.EntityID, season: team.Season}] = &ts
	return nil
}

func (f *fakeStandingsRepo) marker(rows map[standingKey]*models.Standing, season int) repository.StandingsMarker {
	marker := repository.StandingsMarker{Round: -1}
	for key, row := range rows {
		if key.season != season {
			continue
		}
		marker.Count++
		if row.Round > marker.Round {
			marker.Round = row.Round
		}
	}
	return marker
}

func (f *fakeStandingsRepo) DriverMarker(_ context.Context, season int) (repository.StandingsMarker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marker(f.driverRows, season), nil
}

func (f *fakeStandingsRepo) ConstructorMarker(_ context.Context, season int) (repository.StandingsMarker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marker(f.constrRows, season), nil
}

func (f *fakeStandingsRepo) ListDriverStandings(_ context.Context, season int) ([]models.StandingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.StandingEntry
	for key, row := range f.driverRows {
		if key.season == season {
			entries = append(entries, models.StandingEntry{
				Position: row.Position,
				Points:   row.Points,
				Wins:     row.Wins,
			})
		}
	}
	return entries, nil
}

func (f *fakeStandingsRepo) ListConstructorStandings(_ context.Context, season int) ([]models.StandingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.StandingEntry
	for key, row := range f.constrRows {
		if key.season == season {
			entries = append(entries, models.StandingEntry{
				Position: row.Position,
				Points:   row.Points,
				Wins:     row.Wins,
			})
		}
	}
	return entries, nil
}

// fakeUpstream is a canned ergast.API
type fakeUpstream struct {
	schedule        []ergast.Race
	results         []ergast.Race
	driverList      *ergast.StandingsList
	constructorList *ergast.StandingsList

	scheduleCalls int
	resultCalls   int
	driverCalls   int
	constrCalls   int

	err error
}

func (f *fakeUpstream) FetchSeasonSchedule(_ context.Context, _ int) ([]ergast.Race, error) {
	f.scheduleCalls++
	return f.schedule, f.err
}

func (f *fakeUpstream) FetchRaceResults(_ context.Context, _, _ int) ([]ergast.Race, error) {
	f.resultCalls++
	return f.results, f.err
}

func (f *fakeUpstream) FetchDriverStandings(_ context.Context, _ int) (*ergast.StandingsList, error) {
	f.driverCalls++
	return f.driverList, f.err
}

func (f *fakeUpstream) FetchConstructorStandings(_ context.Context, _ int) (*ergast.StandingsList, error) {
	f.constrCalls++
	return f.constructorList, f.err
}
