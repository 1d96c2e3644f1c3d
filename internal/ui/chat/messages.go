// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat
// interface. The store is the single source of truth; most messages
// just tell the UI when to take a fresh snapshot.
package chat

import (
	"time"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg signals that a store mutation happened. The UI responds
// by snapshotting the store; Version lets stale notifications coalesce.
type StoreChangedMsg struct {
	Version uint64
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives the capped-rate redraw loop while a reply streams.
type StreamTickMsg struct {
	Time time.Time
}

// CycleEndMsg reports that a send cycle finished, successfully or not.
// The store already holds the finalized (or failed) message by the time
// this arrives.
type CycleEndMsg struct {
	ConversationID string
	Err            error
}

// =============================================================================
// OLLAMA MESSAGES
// =============================================================================

// OllamaStatusMsg reports the health-check result.
type OllamaStatusMsg struct {
	Running bool
	Error   error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg carries hot-reloaded settings from the config watcher.
type ConfigReloadedMsg struct {
	Model string
	Theme string
}
