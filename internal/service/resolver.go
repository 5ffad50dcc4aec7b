// Package service implements the freshness-decision, entity-reconciliation
// and ingestion logic at the heart of the motorsport cache.
package service

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/repository"
)

// EntityResolver maps external natural identifiers to internally-owned
// surrogate keys, creating rows on first encounter. Venue, driver and
// constructor resolutions are stable (the same external id always yields the
// same surrogate id and existing rows are never mutated), which makes them
// safe to memoize. Team resolution is deliberately not memoized: every
// re-resolution refreshes the team's constructor linkage in storage.
type EntityResolver struct {
	venues  repository.VenueRepository
	drivers repository.DriverRepository
	teams   repository.TeamRepository
	memo    *cache.Cache
	logger  *logrus.Logger
}

// NewEntityResolver creates a new entity resolver
func NewEntityResolver(
	venues repository.VenueRepository,
	drivers repository.DriverRepository,
	teams repository.TeamRepository,
	memoTTL time.Duration,
	logger *logrus.Logger,
) *EntityResolver {
	return &EntityResolver{
		venues:  venues,
		drivers: drivers,
		teams:   teams,
		memo:    cache.New(memoTTL, 2*memoTTL),
		logger:  logger,
	}
}

// ResolveVenue returns the surrogate id for a venue, creating it when absent
func (r *EntityResolver) ResolveVenue(ctx context.Context, venue *models.Venue) (int64, error) {
	key := "venue:" + venue.ExternalID
	if id, found := r.memo.Get(key); found {
		return id.(int64), nil
	}

	id, err := r.venues.Resolve(ctx, venue)
	if err != nil {
		return 0, err
	}

	r.memo.SetDefault(key, id)
	return id, nil
}

// ResolveDriver returns the surrogate id for a driver, creating it when
// absent. Drivers are never updated after creation; attribute drift in later
// upstream records is ignored.
func (r *EntityResolver) ResolveDriver(ctx context.Context, driver *models.Driver) (int64, error) {
	key := "driver:" + driver.ExternalID
	if id, found := r.memo.Get(key); found {
		return id.(int64), nil
	}

	id, err := r.drivers.Resolve(ctx, driver)
	if err != nil {
		return 0, err
	}

	r.memo.SetDefault(key, id)
	return id, nil
}

// ResolveConstructorTeam resolves the constructor and the team row layered on
// it, both keyed by the same external identifier. The team's constructor
// linkage is refreshed on every call, so a rebrand relinks the existing team
// row instead of duplicating it.
func (r *EntityResolver) ResolveConstructorTeam(ctx context.Context, constructor *models.Constructor) (teamID, constructorID int64, err error) {
	key := "constructor:" + constructor.ExternalID
	if id, found := r.memo.Get(key); found {
		constructorID = id.(int64)
	} else {
		constructorID, err = r.teams.ResolveConstructor(ctx, constructor)
		if err != nil {
			return 0, 0, fmt.Errorf("constructor resolution failed: %w", err)
		}
		r.memo.SetDefault(key, constructorID)
	}

	team := &models.Team{
		ExternalID:    constructor.ExternalID,
		Name:          constructor.Name,
		Nationality:   constructor.Nationality,
		ReferenceURL:  constructor.ReferenceURL,
		ConstructorID: constructorID,
	}

	teamID, err = r.teams.ResolveTeam(ctx, team)
	if err != nil {
		return 0, 0, fmt.Errorf("team resolution failed: %w", err)
	}

	return teamID, constructorID, nil
}
