package repository

import (
	"fmt"

	"github.com/yourusername/pitwall/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Venue     VenueRepository
	Driver    DriverRepository
	Team      TeamRepository
	Event     EventRepository
	Result    ResultRepository
	Standings StandingsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Venue:     NewPostgresVenueRepository(db),
		Driver:    NewPostgresDriverRepository(db),
		Team:      NewPostgresTeamRepository(db),
		Event:     NewPostgresEventRepository(db),
		Result:    NewPostgresResultRepository(db),
		Standings: NewPostgresStandingsRepository(db),
	}, nil
}
