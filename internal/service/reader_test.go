package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/ergast"
	"github.com/yourusername/pitwall/internal/models"
)

func newReadHarness(upstream *fakeUpstream, minGridSize int) (*ReadService, *ingestionHarness) {
	h := newIngestionHarness(upstream)
	oracle := NewFreshnessOracle(h.events, h.standings, minGridSize)
	reader := NewReadService(h.service, oracle, h.events, h.results, h.standings, testLogger())
	return reader, h
}

func TestGetScheduleFetchesOnEmptyCache(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeUpstream{
		schedule: []ergast.Race{scheduleRace("1", "Bahrain Grand Prix", nil)},
	}
	reader, h := newReadHarness(upstream, 15)

	entries, err := reader.GetSchedule(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, upstream.scheduleCalls)

	// Second read is served from the populated cache
	entries, err = reader.GetSchedule(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, upstream.scheduleCalls)
	assert.Len(t, h.events.byExt, 1)
}

func TestGetScheduleAbsentSeasonStaysEmpty(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeUpstream{}
	reader, _ := newReadHarness(upstream, 15)

	entries, err := reader.GetSchedule(ctx, 1800)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, upstream.scheduleCalls)
}

func TestGetResultsIsPureRead(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeUpstream{}
	reader, h := newReadHarness(upstream, 15)

	entries, err := reader.GetResults(ctx, 2024, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, upstream.resultCalls)

	pos := 1
	err = h.results.Upsert(ctx, &models.Result{EventID: 1, DriverID: 1, FinishPosition: &pos})
	require.NoError(t, err)

	entries, err = reader.GetResults(ctx, 2024, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 0, upstream.resultCalls)
}

func TestGetStandingsServesFreshCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	upstream := &fakeUpstream{}
	reader, h := newReadHarness(upstream, 15)

	err := h.events.InsertIgnore(ctx, &models.Event{
		ExternalID:   models.EventExternalID(2024, 3, models.SessionRace),
		Season:       2024,
		Round:        3,
		SubEventType: models.SessionRace,
		ScheduledAt:  now.AddDate(0, 0, -7),
	})
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		err := h.standings.UpsertDriverStanding(ctx, &models.Standing{
			EntityID: int64(i),
			Season:   2024,
			Round:    3,
			Position: i,
		})
		require.NoError(t, err)
	}

	entries, err := reader.GetStandings(ctx, 2024, KindDriver)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
	assert.Equal(t, 0, upstream.driverCalls)
}

func TestGetStandingsRefetchesWhenStale(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	upstream := &fakeUpstream{
		driverList: &ergast.StandingsList{
			Season: "2024",
			Round:  "4",
			DriverStandings: []ergast.DriverStanding{
				{
					Position:     "1",
					Points:       "110",
					Wins:         "3",
					Driver:       ergast.DriverRef{DriverID: "max_verstappen", GivenName: "Max", FamilyName: "Verstappen"},
					Constructors: []ergast.TeamRef{{ConstructorID: "red_bull", Name: "Red Bull"}},
				},
			},
		},
	}
	reader, h := newReadHarness(upstream, 15)

	// Round 4 completed, but the cache only knows round 3
	for round := 3; round <= 4; round++ {
		err := h.events.InsertIgnore(ctx, &models.Event{
			ExternalID:   models.EventExternalID(2024, round, models.SessionRace),
			Season:       2024,
			Round:        round,
			SubEventType: models.SessionRace,
			ScheduledAt:  now.AddDate(0, 0, 7*(round-4)-1),
		})
		require.NoError(t, err)
	}
	for i := 1; i <= 20; i++ {
		err := h.standings.UpsertDriverStanding(ctx, &models.Standing{
			EntityID: int64(i),
			Season:   2024,
			Round:    3,
			Position: i,
		})
		require.NoError(t, err)
	}

	entries, err := reader.GetStandings(ctx, 2024, KindDriver)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.driverCalls)

	// The refetch path answers with the upstream list, not the stored rows
	require.Len(t, entries, 1)
	assert.Equal(t, "Max Verstappen", entries[0].EntityName)

	marker, err := h.standings.DriverMarker(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, marker.Round)
}

func TestGetStandingsConstructorPath(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeUpstream{
		constructorList: &ergast.StandingsList{
			Season: "2024",
			Round:  "1",
			ConstructorStandings: []ergast.ConstructorStanding{
				{
					Position:    "1",
					Points:      "44",
					Wins:        "1",
					Constructor: ergast.TeamRef{ConstructorID: "red_bull", Name: "Red Bull"},
				},
			},
		},
	}
	reader, h := newReadHarness(upstream, 15)

	entries, err := reader.GetStandings(ctx, 2024, KindConstructor)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, upstream.constrCalls)
	assert.Len(t, h.standings.teamRows, 1)
}
