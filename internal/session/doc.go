// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives send/stream cycles between the store and the
// Ollama client.
//
// A cycle is one user turn: commit the user message and an empty streaming
// placeholder to the store, POST the full prior history to /api/chat, then
// apply each streamed record back to the store until the terminal record
// arrives. Cycles move Idle -> Sending -> Streaming -> Finalized, or to
// Aborted on transport failure; aborted cycles mark their placeholder
// failed and keep any partial content.
//
// Concurrency rules the session relies on:
//
//   - Store writes for deleted conversations are silent no-ops, so a
//     conversation may be deleted at any point mid-cycle.
//   - Each cycle checks that its placeholder is still the conversation's
//     streaming target before writing, so a superseded cycle goes quiet
//     instead of corrupting a newer one.
//   - Delete cancels the in-flight cycle's context via Session.Cancel.
package session
