// Package ergast implements the read-only client for the upstream motorsport
// API (Ergast-compatible JSON, served by the jolpi.ca mirror).
package ergast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const sourceName = "ergast"

// API is the upstream surface consumed by the ingestion pipeline
type API interface {
	// FetchSeasonSchedule retrieves the full race calendar for a season
	FetchSeasonSchedule(ctx context.Context, season int) ([]Race, error)

	// FetchRaceResults retrieves the classified results of a single round.
	// An empty slice means upstream has no race for that round (not an error).
	FetchRaceResults(ctx context.Context, season, round int) ([]Race, error)

	// FetchDriverStandings retrieves the current driver standings snapshot.
	// A nil list means upstream has no standings yet (not an error).
	FetchDriverStandings(ctx context.Context, season int) (*StandingsList, error)

	// FetchConstructorStandings retrieves the current constructor standings snapshot.
	FetchConstructorStandings(ctx context.Context, season int) (*StandingsList, error)
}

// Client is the HTTP implementation of API
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	validate   *validator.Validate
	logger     *logrus.Logger
}

// NewClient creates a new upstream API client
func NewClient(httpClient *RateLimitedHTTPClient, baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		validate:   validator.New(),
		logger:     logger,
	}
}

// FetchSeasonSchedule retrieves the full race calendar for a season
func (c *Client) FetchSeasonSchedule(ctx context.Context, season int) ([]Race, error) {
	url := fmt.Sprintf("%s/%d.json", c.baseURL, season)

	env, err := c.fetchEnvelope(ctx, url)
	if err != nil {
		return nil, err
	}

	if env.MRData.RaceTable == nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "response missing race table", nil)
	}

	races := env.MRData.RaceTable.Races
	for i := range races {
		if err := c.validate.Struct(&races[i]); err != nil {
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed race entry", err)
		}
	}

	return races, nil
}

// FetchRaceResults retrieves the classified results of a single round
func (c *Client) FetchRaceResults(ctx context.Context, season, round int) ([]Race, error) {
	url := fmt.Sprintf("%s/%d/%d/results.json", c.baseURL, season, round)

	env, err := c.fetchEnvelope(ctx, url)
	if err != nil {
		return nil, err
	}

	if env.MRData.RaceTable == nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "response missing race table", nil)
	}

	races := env.MRData.RaceTable.Races
	for i := range races {
		if err := c.validate.Struct(&races[i]); err != nil {
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed result entry", err)
		}
		for j := range races[i].Results {
			if err := c.validate.Struct(&races[i].Results[j]); err != nil {
				return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed result entry", err)
			}
		}
	}

	return races, nil
}

// FetchDriverStandings retrieves the current driver standings snapshot
func (c *Client) FetchDriverStandings(ctx context.Context, season int) (*StandingsList, error) {
	url := fmt.Sprintf("%s/%d/driverstandings.json", c.baseURL, season)
	return c.fetchStandings(ctx, url)
}

// FetchConstructorStandings retrieves the current constructor standings snapshot
func (c *Client) FetchConstructorStandings(ctx context.Context, season int) (*StandingsList, error) {
	url := fmt.Sprintf("%s/%d/constructorstandings.json", c.baseURL, season)
	return c.fetchStandings(ctx, url)
}

// fetchStandings shares the standings envelope handling for both kinds
func (c *Client) fetchStandings(ctx context.Context, url string) (*StandingsList, error) {
	env, err := c.fetchEnvelope(ctx, url)
	if err != nil {
		return nil, err
	}

	if env.MRData.StandingsTable == nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "response missing standings table", nil)
	}

	lists := env.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		// A season with no completed rounds yet
		return nil, nil
	}

	list := &lists[0]
	if err := c.validate.Struct(list); err != nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed standings list", err)
	}

	// Struct validation does not descend into the entry slices, so each entry
	// is checked individually, like the result entries above
	for i := range list.DriverStandings {
		if err := c.validate.Struct(&list.DriverStandings[i]); err != nil {
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed standings entry", err)
		}
	}
	for i := range list.ConstructorStandings {
		if err := c.validate.Struct(&list.ConstructorStandings[i]); err != nil {
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed standings entry", err)
		}
	}

	return list, nil
}

// fetchEnvelope performs the GET and decodes the shared response wrapper
func (c *Client) fetchEnvelope(ctx context.Context, url string) (*Envelope, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewSourceError(sourceName, ErrCodeNetworkError, "failed to fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewSourceError(sourceName, ErrCodeNotFound, "resource not found", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(sourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewSourceError(sourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return &env, nil
}
