// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	if a == "" || a == b {
		t.Errorf("GenerateRequestID() produced %q and %q, want distinct non-empty IDs", a, b)
	}
}

func TestGenerateSyncRunID(t *testing.T) {
	id := GenerateSyncRunID()
	if len(id) != 8 {
		t.Errorf("GenerateSyncRunID() = %q, want 8 characters", id)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}
	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
}

func TestSyncRunIDContext(t *testing.T) {
	ctx := ContextWithSyncRunID(context.Background(), "run-abc")
	if got := SyncRunIDFromContext(ctx); got != "run-abc" {
		t.Errorf("SyncRunIDFromContext() = %q, want run-abc", got)
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-456")
	ctx = ContextWithSyncRunID(ctx, "run-789")

	// Chaining level methods directly off Ctx must work: zerolog's level
	// starters have pointer receivers, so Ctx returns *zerolog.Logger.
	Ctx(ctx).Info().Msg("context test")
	Ctx(ctx).Debug().Str("platform", "steam").Msg("chained debug")
	Ctx(ctx).Warn().Msg("chained warn")

	output := buf.String()
	if !strings.Contains(output, "req-456") {
		t.Errorf("expected request_id in output: %s", output)
	}
	if !strings.Contains(output, "run-789") {
		t.Errorf("expected sync_run_id in output: %s", output)
	}
	if !strings.Contains(output, "chained debug") || !strings.Contains(output, "chained warn") {
		t.Errorf("expected all chained lines in output: %s", output)
	}
}

func TestCtxWithoutIDs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	Ctx(context.Background()).Info().Msg("bare context")

	output := buf.String()
	if strings.Contains(output, "request_id") || strings.Contains(output, "sync_run_id") {
		t.Errorf("IDs should be absent for a bare context: %s", output)
	}
	if !strings.Contains(output, "bare context") {
		t.Errorf("expected message in output: %s", output)
	}
}
