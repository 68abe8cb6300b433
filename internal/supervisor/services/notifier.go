// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package services

import (
	syncpkg "github.com/avelinec/playdex/internal/sync"
	"github.com/avelinec/playdex/internal/websocket"
)

// HubNotifier pushes sync run summaries to connected websocket clients. It
// sits between the orchestrator and the hub so neither package has to know
// about the other.
type HubNotifier struct {
	hub *websocket.Hub
}

// NewHubNotifier builds the adapter; implements sync.Notifier.
func NewHubNotifier(hub *websocket.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifySyncCompleted broadcasts the run summary.
func (n *HubNotifier) NotifySyncCompleted(summary *syncpkg.Summary) {
	n.hub.Broadcast(websocket.MessageTypeSyncCompleted, summary)
}
