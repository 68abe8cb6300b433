// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/avelinec/playdex/internal/models"
	syncpkg "github.com/avelinec/playdex/internal/sync"
)

type mockRunner struct {
	runs atomic.Int32
	err  error
}

func (m *mockRunner) Run(ctx context.Context) (*syncpkg.Summary, error) {
	m.runs.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &syncpkg.Summary{Status: models.SyncStatusSuccess}, nil
}

func TestSchedulerServiceInterface(t *testing.T) {
	var _ suture.Service = (*SchedulerService)(nil)
}

func TestSchedulerServiceRunOnStart(t *testing.T) {
	runner := &mockRunner{}
	svc := NewSchedulerService(runner, time.Hour, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial run never happened")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if got := runner.runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 (interval far in the future)", got)
	}
}

func TestSchedulerServiceTicks(t *testing.T) {
	runner := &mockRunner{}
	svc := NewSchedulerService(runner, 10*time.Millisecond, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for runner.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before deadline, want at least 2", runner.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestSchedulerServiceKeepsTickingAfterFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("steam: 503")}
	svc := NewSchedulerService(runner, 10*time.Millisecond, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for runner.runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before deadline, want at least 3", runner.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled despite run failures", err)
	}
}

func TestSchedulerServiceSkipsBusyRuns(t *testing.T) {
	runner := &mockRunner{err: syncpkg.ErrSyncInProgress}
	svc := NewSchedulerService(runner, 10*time.Millisecond, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for runner.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler stopped ticking on ErrSyncInProgress")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestSchedulerServiceDefaultInterval(t *testing.T) {
	svc := NewSchedulerService(&mockRunner{}, 0, false)
	if svc.interval != 6*time.Hour {
		t.Errorf("interval = %v, want the 6h default", svc.interval)
	}
}
