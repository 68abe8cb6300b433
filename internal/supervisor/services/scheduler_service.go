// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package services

import (
	"context"
	"errors"
	"time"

	"github.com/avelinec/playdex/internal/logging"
	syncpkg "github.com/avelinec/playdex/internal/sync"
)

// SyncRunner matches *sync.Orchestrator's Run method.
type SyncRunner interface {
	Run(ctx context.Context) (*syncpkg.Summary, error)
}

// SchedulerService triggers a sync run every interval. A run already in
// progress (for example one started over the API) makes the scheduler skip
// its tick rather than queue behind it.
type SchedulerService struct {
	runner   SyncRunner
	interval time.Duration

	// runOnStart triggers an immediate run when the service comes up, so a
	// fresh deployment has data before the first interval elapses.
	runOnStart bool
}

// NewSchedulerService builds the periodic sync service.
func NewSchedulerService(runner SyncRunner, interval time.Duration, runOnStart bool) *SchedulerService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SchedulerService{runner: runner, interval: interval, runOnStart: runOnStart}
}

// Serve implements suture.Service. It returns only when the context is
// canceled; individual run failures are logged and the ticker keeps going.
func (s *SchedulerService) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("sync scheduler started")

	if s.runOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, syncpkg.ErrSyncInProgress):
		logging.Debug().Msg("scheduled sync skipped: a run is already in progress")
	case errors.Is(err, context.Canceled):
	case err != nil:
		logging.Error().Err(err).Msg("scheduled sync failed")
	default:
		logging.Info().
			Str("status", string(summary.Status)).
			Dur("duration", summary.Duration).
			Msg("scheduled sync completed")
	}
}

// String implements fmt.Stringer; suture uses it in lifecycle logs.
func (s *SchedulerService) String() string {
	return "sync-scheduler"
}
