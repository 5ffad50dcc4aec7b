package database

import (
	"context"
	"fmt"
)

// Schema statements are idempotent so EnsureSchema is safe to run on every
// startup. Uniqueness constraints double as the conflict targets for all
// upsert paths: external_id per entity table, the composite natural keys on
// results and the standings tables.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id          BIGSERIAL PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		city        TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id            BIGSERIAL PRIMARY KEY,
		external_id   TEXT NOT NULL UNIQUE,
		short_code    TEXT,
		number        INT,
		given_name    TEXT NOT NULL,
		family_name   TEXT NOT NULL,
		nationality   TEXT,
		date_of_birth TEXT,
		reference_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS constructors (
		id            BIGSERIAL PRIMARY KEY,
		external_id   TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		nationality   TEXT,
		reference_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id             BIGSERIAL PRIMARY KEY,
		external_id    TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		nationality    TEXT,
		reference_url  TEXT,
		constructor_id BIGINT NOT NULL REFERENCES constructors(id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id             BIGSERIAL PRIMARY KEY,
		external_id    TEXT NOT NULL UNIQUE,
		sport_category TEXT NOT NULL,
		season         INT NOT NULL,
		round          INT NOT NULL,
		name           TEXT NOT NULL,
		sub_event_type TEXT NOT NULL,
		scheduled_at   TIMESTAMPTZ NOT NULL,
		venue_id       BIGINT NOT NULL REFERENCES venues(id)
	)`,
	`CREATE INDEX IF NOT EXISTS events_season_round_idx
		ON events (sport_category, season, round, sub_event_type)`,
	`CREATE TABLE IF NOT EXISTS results (
		id                   BIGSERIAL PRIMARY KEY,
		event_id             BIGINT NOT NULL REFERENCES events(id),
		driver_id            BIGINT NOT NULL REFERENCES drivers(id),
		team_id              BIGINT NOT NULL REFERENCES teams(id),
		constructor_id       BIGINT NOT NULL REFERENCES constructors(id),
		starting_position    INT,
		finish_position      INT,
		finish_position_text TEXT NOT NULL DEFAULT '',
		points               NUMERIC(6,2) NOT NULL DEFAULT 0,
		laps                 INT,
		status               TEXT,
		time_millis          BIGINT,
		time_text            TEXT,
		fastest_lap_number   INT,
		fastest_lap_rank     INT,
		fastest_lap_time     TEXT,
		detail               JSONB,
		UNIQUE (event_id, driver_id)
	)`,
	`CREATE TABLE IF NOT EXISTS driver_standings (
		id        BIGSERIAL PRIMARY KEY,
		driver_id BIGINT NOT NULL REFERENCES drivers(id),
		team_id   BIGINT NOT NULL REFERENCES teams(id),
		season    INT NOT NULL,
		round     INT NOT NULL,
		position  INT NOT NULL,
		points    NUMERIC(7,2) NOT NULL DEFAULT 0,
		wins      INT NOT NULL DEFAULT 0,
		UNIQUE (driver_id, season)
	)`,
	`CREATE TABLE IF NOT EXISTS constructor_standings (
		id             BIGSERIAL PRIMARY KEY,
		constructor_id BIGINT NOT NULL REFERENCES constructors(id),
		season         INT NOT NULL,
		round          INT NOT NULL,
		position       INT NOT NULL,
		points         NUMERIC(7,2) NOT NULL DEFAULT 0,
		wins           INT NOT NULL DEFAULT 0,
		UNIQUE (constructor_id, season)
	)`,
	`CREATE TABLE IF NOT EXISTS team_standings (
		id       BIGSERIAL PRIMARY KEY,
		team_id  BIGINT NOT NULL REFERENCES teams(id),
		season   INT NOT NULL,
		round    INT NOT NULL,
		position INT NOT NULL,
		points   NUMERIC(7,2) NOT NULL DEFAULT 0,
		wins     INT NOT NULL DEFAULT 0,
		UNIQUE (team_id, season)
	)`,
}

// EnsureSchema applies the schema statements in order
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
