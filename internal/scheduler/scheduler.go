// Package scheduler runs the periodic cache refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/service"
)

// Scheduler manages the recurring refresh of the default season. The jobs
// re-run the full import pipelines; every write path is an upsert, so a tick
// against an already-current cache changes nothing.
type Scheduler struct {
	cron      *cron.Cron
	ingestion *service.IngestionService
	season    int
	logger    *logrus.Logger
	mu        sync.Mutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler targeting one season
func NewScheduler(ingestion *service.IngestionService, season int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		ingestion: ingestion,
		season:    season,
		logger:    logger,
		jobIDs:    make([]cron.EntryID, 0),
	}
}

// ScheduleRefresh registers the schedule and standings refresh jobs under one
// cron expression
func (s *Scheduler) ScheduleRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.refresh)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"season": s.season,
	}).Info("Scheduled cache refresh job")

	return nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log := s.logger.WithField("season", s.season)
	log.Info("Starting scheduled cache refresh")

	if _, err := s.ingestion.ImportSchedule(ctx, s.season); err != nil {
		log.WithError(err).Error("Scheduled schedule refresh failed")
	}
	if _, err := s.ingestion.ImportDriverStandings(ctx, s.season); err != nil {
		log.WithError(err).Error("Scheduled driver standings refresh failed")
	}
	if _, err := s.ingestion.ImportConstructorStandings(ctx, s.season); err != nil {
		log.WithError(err).Error("Scheduled constructor standings refresh failed")
	}

	log.Info("Scheduled cache refresh finished")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting for in-flight jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}
