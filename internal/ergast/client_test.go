package ergast

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 100,
	}

	return NewClient(NewRateLimitedHTTPClient(cfg, logger), server.URL, logger)
}

const scheduleBody = `{
  "MRData": {
    "RaceTable": {
      "season": "2024",
      "Races": [
        {
          "season": "2024",
          "round": "1",
          "raceName": "Bahrain Grand Prix",
          "Circuit": {
            "circuitId": "bahrain",
            "circuitName": "Bahrain International Circuit",
            "Location": {"locality": "Sakhir", "country": "Bahrain"}
          },
          "date": "2024-03-02",
          "time": "15:00:00Z",
          "FirstPractice": {"date": "2024-02-29", "time": "11:30:00Z"}
        }
      ]
    }
  }
}`

func TestFetchSeasonSchedule(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024.json", r.URL.Path)
		w.Write([]byte(scheduleBody))
	})

	races, err := client.FetchSeasonSchedule(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, races, 1)
	assert.Equal(t, "Bahrain Grand Prix", races[0].RaceName)
	assert.Equal(t, "bahrain", races[0].Circuit.CircuitID)
	require.NotNil(t, races[0].FirstPractice)
	assert.Nil(t, races[0].Sprint)
}

func TestFetchSeasonScheduleRejectsMalformedEntry(t *testing.T) {
	// raceName missing
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MRData":{"RaceTable":{"season":"2024","Races":[{"season":"2024","round":"1","date":"2024-03-02","Circuit":{"circuitId":"x","circuitName":"X"}}]}}}`))
	})

	_, err := client.FetchSeasonSchedule(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestFetchRaceResultsEmptyTable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024/30/results.json", r.URL.Path)
		w.Write([]byte(`{"MRData":{"RaceTable":{"season":"2024","Races":[]}}}`))
	})

	races, err := client.FetchRaceResults(context.Background(), 2024, 30)
	require.NoError(t, err)
	assert.Empty(t, races)
}

func TestFetchDriverStandingsEmptySeason(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MRData":{"StandingsTable":{"season":"2030","StandingsLists":[]}}}`))
	})

	list, err := client.FetchDriverStandings(context.Background(), 2030)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestFetchDriverStandings(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024/driverstandings.json", r.URL.Path)
		w.Write([]byte(`{
  "MRData": {
    "StandingsTable": {
      "season": "2024",
      "StandingsLists": [
        {
          "season": "2024",
          "round": "10",
          "DriverStandings": [
            {
              "position": "1",
              "points": "255",
              "wins": "7",
              "Driver": {"driverId": "max_verstappen", "givenName": "Max", "familyName": "Verstappen"},
              "Constructors": [{"constructorId": "red_bull", "name": "Red Bull"}]
            }
          ]
        }
      ]
    }
  }
}`))
	})

	list, err := client.FetchDriverStandings(context.Background(), 2024)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Equal(t, "10", list.Round)
	require.Len(t, list.DriverStandings, 1)
	assert.Equal(t, "max_verstappen", list.DriverStandings[0].Driver.DriverID)
}

func TestFetchDriverStandingsRejectsEntryWithoutConstructors(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
  "MRData": {
    "StandingsTable": {
      "season": "2024",
      "StandingsLists": [
        {
          "season": "2024",
          "round": "10",
          "DriverStandings": [
            {
              "position": "1",
              "points": "255",
              "wins": "7",
              "Driver": {"driverId": "max_verstappen", "givenName": "Max", "familyName": "Verstappen"}
            }
          ]
        }
      ]
    }
  }
}`))
	})

	_, err := client.FetchDriverStandings(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestFetchConstructorStandingsRejectsEntryWithoutConstructor(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
  "MRData": {
    "StandingsTable": {
      "season": "2024",
      "StandingsLists": [
        {
          "season": "2024",
          "round": "10",
          "ConstructorStandings": [
            {"position": "1", "points": "355", "wins": "8"}
          ]
        }
      ]
    }
  }
}`))
	})

	_, err := client.FetchConstructorStandings(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestFetchStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{name: "not found", status: http.StatusNotFound, code: ErrCodeNotFound},
		{name: "server error", status: http.StatusInternalServerError, code: ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.FetchSeasonSchedule(context.Background(), 2024)
			require.Error(t, err)

			var srcErr SourceError
			require.True(t, errors.As(err, &srcErr))
			assert.Equal(t, tt.code, srcErr.Code)
		})
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.FetchSeasonSchedule(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestSessionTimeFallback(t *testing.T) {
	at, err := SessionTime("2024-03-02", "", "14:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC), at)

	at, err = SessionTime("2024-03-02", "15:00:00Z", "14:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC), at)

	_, err = SessionTime("not-a-date", "", "14:00:00Z")
	assert.Error(t, err)
}
