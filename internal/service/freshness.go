package service

import (
	"context"
	"time"

	"github.com/yourusername/pitwall/internal/repository"
)

// StandingsKind selects which standings aggregate an operation targets
type StandingsKind string

// Supported standings kinds
const (
	KindDriver      StandingsKind = "driver"
	KindConstructor StandingsKind = "constructor"
)

// FreshnessOracle decides whether a season's cached standings reflect every
// round completed to date. The check is lazy and point-in-time; there is no
// invalidation callback, staleness is discovered on the next read.
type FreshnessOracle struct {
	events      repository.EventRepository
	standings   repository.StandingsRepository
	minGridSize int
	now         func() time.Time
}

// NewFreshnessOracle creates a new freshness oracle. minGridSize guards
// driver standings against serving a partially-written cache.
func NewFreshnessOracle(
	events repository.EventRepository,
	standings repository.StandingsRepository,
	minGridSize int,
) *FreshnessOracle {
	return &FreshnessOracle{
		events:      events,
		standings:   standings,
		minGridSize: minGridSize,
		now:         time.Now,
	}
}

// IsFresh reports whether the cached standings for (season, kind) can be
// served without an upstream refetch
func (o *FreshnessOracle) IsFresh(ctx context.Context, season int, kind StandingsKind) (bool, error) {
	latest, err := o.events.LatestCompletedRound(ctx, season, o.now())
	if err != nil {
		return false, err
	}

	var marker repository.StandingsMarker
	minCount := 1
	switch kind {
	case KindDriver:
		marker, err = o.standings.DriverMarker(ctx, season)
		// A full grid has 20 drivers; fewer stored rows than a viable grid
		// means an interrupted ingestion left a partial cache behind.
		minCount = o.minGridSize + 1
	default:
		marker, err = o.standings.ConstructorMarker(ctx, season)
	}
	if err != nil {
		return false, err
	}

	return IsCurrent(marker, latest, minCount), nil
}

// IsCurrent applies the freshness rule to an already-loaded marker: the cache
// is served only when it is sufficiently populated and its stored round
// equals the latest completed round. Strict equality is deliberate; a round
// that regresses also reads as stale and triggers a refetch.
func IsCurrent(marker repository.StandingsMarker, latestRound, minCount int) bool {
	if marker.Count < minCount {
		return false
	}
	return marker.Round == latestRound
}
