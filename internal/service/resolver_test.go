package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/models"
)

func newTestResolver(venues *fakeVenueRepo, drivers *fakeDriverRepo, teams *fakeTeamRepo) *EntityResolver {
	return NewEntityResolver(venues, drivers, teams, 5*time.Minute, testLogger())
}

func TestResolveVenueIsStable(t *testing.T) {
	ctx := context.Background()
	venues := newFakeVenueRepo()
	resolver := newTestResolver(venues, newFakeDriverRepo(), newFakeTeamRepo())

	venue := &models.Venue{ExternalID: "monza", Name: "Autodromo Nazionale di Monza"}

	first, err := resolver.ResolveVenue(ctx, venue)
	require.NoError(t, err)

	second, err := resolver.ResolveVenue(ctx, venue)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, venues.inserts)
}

func TestResolveDriverIgnoresAttributeDrift(t *testing.T) {
	ctx := context.Background()
	drivers := newFakeDriverRepo()
	resolver := newTestResolver(newFakeVenueRepo(), drivers, newFakeTeamRepo())

	first, err := resolver.ResolveDriver(ctx, &models.Driver{
		ExternalID: "alonso",
		GivenName:  "Fernando",
		FamilyName: "Alonso",
	})
	require.NoError(t, err)

	// Later record carries extra attributes; the stored row keeps its
	// first-encounter shape.
	code := "ALO"
	second, err := resolver.ResolveDriver(ctx, &models.Driver{
		ExternalID: "alonso",
		ShortCode:  &code,
		GivenName:  "Fernando",
		FamilyName: "Alonso",
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, drivers.inserts)
	assert.Nil(t, drivers.rows[first].ShortCode)
}

func TestResolveConstructorTeamRelinksEveryCall(t *testing.T) {
	ctx := context.Background()
	teams := newFakeTeamRepo()
	resolver := newTestResolver(newFakeVenueRepo(), newFakeDriverRepo(), teams)

	constructor := &models.Constructor{ExternalID: "red_bull", Name: "Red Bull"}

	teamID, constructorID, err := resolver.ResolveConstructorTeam(ctx, constructor)
	require.NoError(t, err)
	assert.NotZero(t, teamID)
	assert.NotZero(t, constructorID)

	teamID2, constructorID2, err := resolver.ResolveConstructorTeam(ctx, constructor)
	require.NoError(t, err)
	assert.Equal(t, teamID, teamID2)
	assert.Equal(t, constructorID, constructorID2)

	// The constructor id memoizes but the team linkage is written on every
	// resolution, never served from the memo.
	assert.Equal(t, 2, teams.teamResolves)
	assert.Equal(t, constructorID, teams.teamLinks[teamID])
}
