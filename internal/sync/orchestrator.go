// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/merge"
	"github.com/avelinec/playdex/internal/metrics"
	"github.com/avelinec/playdex/internal/models"
	"github.com/avelinec/playdex/internal/resolve"
	"github.com/avelinec/playdex/internal/store"
)

// ErrSyncInProgress is returned when a run is requested while another run
// holds the sync lock. Exactly one run executes at a time.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// Notifier receives the summary of a completed run. The websocket hub
// implements this to push sync results to connected clients.
type Notifier interface {
	NotifySyncCompleted(summary *Summary)
}

// PlatformResult is one platform's outcome within a run.
type PlatformResult struct {
	Status  models.SyncStatus `json:"status"`
	Records int               `json:"records"`
	Skipped int               `json:"skipped"`
	Error   string            `json:"error,omitempty"`
}

// Summary is what one sync run reports.
type Summary struct {
	Status    models.SyncStatus                  `json:"status"`
	StartedAt time.Time                          `json:"started_at"`
	Duration  time.Duration                      `json:"duration"`
	Platforms map[models.Platform]PlatformResult `json:"platforms"`
	Changes   *models.ChangeSet                  `json:"changes"`
}

// Orchestrator drives a sync run end to end: parallel platform fetches,
// deterministic sequential merging, one atomic commit.
//
// Fetches run concurrently because they are independent network calls;
// merging is strictly sequential in platform merge order so two runs over the
// same data always produce the same profile. Nothing durable changes until
// the single commit at the end: a failure or cancellation anywhere before it
// leaves the previous profile untouched.
type Orchestrator struct {
	store        *store.Store
	engine       *merge.Engine
	clients      map[models.Platform]PlatformClient
	matcher      resolve.TitleMatcher
	notifier     Notifier
	fetchTimeout time.Duration

	runMu sync.Mutex
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	Store   *store.Store
	Clients []PlatformClient

	// FetchTimeout bounds each platform's fetch. Zero means one minute.
	FetchTimeout time.Duration

	// Matcher overrides the resolver's title matcher. Nil selects the
	// default.
	Matcher resolve.TitleMatcher

	// Notifier receives run summaries. May be nil.
	Notifier Notifier
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	clients := make(map[models.Platform]PlatformClient, len(opts.Clients))
	for _, c := range opts.Clients {
		clients[c.Platform()] = c
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Orchestrator{
		store:        opts.Store,
		engine:       merge.NewEngine(),
		clients:      clients,
		matcher:      opts.Matcher,
		notifier:     opts.Notifier,
		fetchTimeout: timeout,
	}
}

type fetchResult struct {
	payload adapters.RawPayload
	err     error
}

// Run executes one sync run and returns its summary. A second Run while one
// is executing fails immediately with ErrSyncInProgress. Cancelling ctx
// before the commit aborts the run without writing anything.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if !o.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer o.runMu.Unlock()

	ctx = logging.ContextWithSyncRunID(ctx, logging.GenerateSyncRunID())
	log := logging.Ctx(ctx)

	started := time.Now()
	summary := &Summary{
		StartedAt: started.UTC(),
		Platforms: make(map[models.Platform]PlatformResult, len(o.clients)),
		Changes:   &models.ChangeSet{},
	}

	prev, err := o.store.LoadProfile()
	if err != nil {
		return nil, err
	}

	log.Info().Int("platforms", len(o.clients)).Msg("Sync run started")
	results := o.fetchAll(ctx)

	// Merge in fixed platform order so runs are deterministic regardless of
	// fetch completion order.
	working := prev
	for _, platform := range models.AllPlatforms() {
		if _, configured := o.clients[platform]; !configured {
			continue
		}
		working = o.mergePlatform(ctx, working, platform, results[platform], summary)
	}

	// Nothing durable has changed yet; a cancelled run commits nothing.
	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("Sync run cancelled before commit")
		return nil, err
	}

	if err := o.store.CommitProfile(working); err != nil {
		metrics.SyncDuration.WithLabelValues(string(models.SyncStatusFailed)).Observe(time.Since(started).Seconds())
		return nil, err
	}

	summary.Status = overallStatus(summary.Platforms)
	summary.Duration = time.Since(started)

	metrics.SyncDuration.WithLabelValues(string(summary.Status)).Observe(summary.Duration.Seconds())
	metrics.LibraryGames.Set(float64(len(working.Games)))
	metrics.WishlistEntries.Set(float64(len(working.Wishlist)))

	log.Info().
		Str("status", string(summary.Status)).
		Dur("duration", summary.Duration).
		Int("games", len(working.Games)).
		Int("new_games", len(summary.Changes.GamesAdded)).
		Msg("Sync run finished")

	if o.notifier != nil {
		o.notifier.NotifySyncCompleted(summary)
	}
	return summary, nil
}

// fetchAll runs every configured platform fetch concurrently, each under its
// own timeout. A slow or hung platform only loses its own slot.
func (o *Orchestrator) fetchAll(ctx context.Context) map[models.Platform]fetchResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[models.Platform]fetchResult, len(o.clients))
	)
	for platform, client := range o.clients {
		wg.Add(1)
		go func(platform models.Platform, client PlatformClient) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
			defer cancel()

			started := time.Now()
			payload, err := client.Fetch(fetchCtx)
			status := models.SyncStatusSuccess
			if err != nil {
				status = models.SyncStatusFailed
			}
			metrics.PlatformFetchDuration.WithLabelValues(string(platform), string(status)).
				Observe(time.Since(started).Seconds())

			mu.Lock()
			results[platform] = fetchResult{payload: payload, err: err}
			mu.Unlock()
		}(platform, client)
	}
	wg.Wait()
	return results
}

// mergePlatform folds one platform's fetch result into the working profile
// and records its outcome. Failures mark the platform failed in sync state
// but never abort the run.
func (o *Orchestrator) mergePlatform(ctx context.Context, working *models.Profile, platform models.Platform, result fetchResult, summary *Summary) *models.Profile {
	log := logging.Ctx(ctx)
	now := time.Now().UTC()

	fail := func(stage string, err error) *models.Profile {
		log.Error().Str("platform", string(platform)).Str("stage", stage).Err(err).
			Msg("Platform sync failed")
		metrics.SyncErrors.WithLabelValues(string(platform), stage).Inc()
		summary.Platforms[platform] = PlatformResult{
			Status: models.SyncStatusFailed,
			Error:  err.Error(),
		}
		working.SyncState[platform] = &models.SyncMetadata{
			LastSyncAt: now,
			Status:     models.SyncStatusFailed,
			LastError:  err.Error(),
		}
		return working
	}

	if result.err != nil {
		return fail("fetch", result.err)
	}

	adapter := adapters.ForPlatform(platform)
	batch, err := adapter.Normalize(result.payload)
	if err != nil {
		return fail("normalize", err)
	}

	resolver := resolve.NewResolver(working, o.matcher)
	resolutions := resolver.ResolveBatch(batch.Records)

	next, changes := o.engine.Apply(working, platform, resolutions)
	summary.Changes.Merge(changes)

	if batch.Wishlist != nil {
		var wishlistChanges *models.ChangeSet
		next, wishlistChanges = o.engine.ApplyWishlist(next, batch.Wishlist)
		summary.Changes.Merge(wishlistChanges)
	}

	status := models.SyncStatusSuccess
	if batch.Skipped > 0 {
		status = models.SyncStatusPartial
	}
	summary.Platforms[platform] = PlatformResult{
		Status:  status,
		Records: len(batch.Records),
		Skipped: batch.Skipped,
	}
	next.SyncState[platform] = &models.SyncMetadata{
		LastSyncAt: now,
		Status:     status,
	}

	metrics.SyncRecordsProcessed.WithLabelValues(string(platform)).Add(float64(len(batch.Records)))
	metrics.SyncRecordsSkipped.WithLabelValues(string(platform)).Add(float64(batch.Skipped))
	metrics.SyncLastSuccess.WithLabelValues(string(platform)).Set(float64(now.Unix()))

	log.Info().
		Str("platform", string(platform)).
		Str("status", string(status)).
		Int("records", len(batch.Records)).
		Int("skipped", batch.Skipped).
		Msg("Platform merged")
	return next
}

// overallStatus folds per-platform outcomes into the run's status: success
// when every platform succeeded, failed when every platform failed, partial
// otherwise.
func overallStatus(platforms map[models.Platform]PlatformResult) models.SyncStatus {
	if len(platforms) == 0 {
		return models.SyncStatusSuccess
	}
	successes, failures := 0, 0
	for _, r := range platforms {
		switch r.Status {
		case models.SyncStatusSuccess:
			successes++
		case models.SyncStatusFailed:
			failures++
		}
	}
	switch {
	case failures == len(platforms):
		return models.SyncStatusFailed
	case successes == len(platforms):
		return models.SyncStatusSuccess
	default:
		return models.SyncStatusPartial
	}
}
