// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/metrics"
	"github.com/avelinec/playdex/internal/models"
)

// BreakerClient wraps a PlatformClient with a circuit breaker. When a
// platform API degrades, the breaker fails sync attempts for that platform
// fast instead of burning the whole fetch timeout on every run; the other
// platforms keep syncing.
type BreakerClient struct {
	inner   PlatformClient
	breaker *gobreaker.CircuitBreaker[adapters.RawPayload]
}

// NewBreakerClient wraps inner with a breaker that opens after 3 consecutive
// failures and probes again after a minute.
func NewBreakerClient(inner PlatformClient) *BreakerClient {
	name := string(inner.Platform())
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("client", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}
	return &BreakerClient{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[adapters.RawPayload](settings),
	}
}

func (c *BreakerClient) Platform() models.Platform {
	return c.inner.Platform()
}

func (c *BreakerClient) Fetch(ctx context.Context) (adapters.RawPayload, error) {
	payload, err := c.breaker.Execute(func() (adapters.RawPayload, error) {
		return c.inner.Fetch(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return adapters.RawPayload{}, &FetchError{Platform: c.inner.Platform(), Reason: "circuit breaker open", Err: err}
	}
	if err != nil {
		return adapters.RawPayload{}, err
	}
	return payload, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
