// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry provides structured event logging for the application.
//
// The sink receives per-cycle stream events and transport failures so they
// are observable without surfacing in the UI. Aborted cycles are logged and
// dropped, never retried.
//
// # Usage
//
//	sink := telemetry.New(logger)
//	sink.CycleAborted(conversationID, err)
//
// Tests use the no-op sink:
//
//	sink := telemetry.NewNop()
//
// # Privacy
//
// Logging is local-only. Message content is never logged, only
// conversation ids, token counts, and error text.
package telemetry
