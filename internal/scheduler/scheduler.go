// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/oblog-go/internal/store"
)

// sweepSchedule runs the media sweep nightly, out of visitor hours.
const sweepSchedule = "0 3 * * *"

// Scheduler handles scheduled maintenance like the orphaned media sweep.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a new scheduler instance. deleteOrphans decides whether the
// sweep removes orphaned media files or only reports them.
func New(content *store.ContentStore, deleteOrphans bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper: NewSweeper(content, deleteOrphans, logger),
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start begins the scheduler with the nightly media sweep job.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(sweepSchedule, func() {
		if _, err := s.sweeper.Run(); err != nil {
			s.logger.Error("media sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
