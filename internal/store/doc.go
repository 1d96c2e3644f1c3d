// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the in-memory conversation collection and its
// mutation protocol.
//
// The store is the single source of truth: every other component either
// mutates it through named operations or reads immutable snapshots from it.
// Nothing outside this package holds a mutable reference to a conversation.
//
// Two properties carry the concurrency model:
//
//   - Mutations are total. A write addressed to a conversation that no
//     longer exists is a silent no-op, so an in-flight stream whose
//     conversation was deleted simply stops having effects.
//   - Streamed fragments are addressed through each conversation's explicit
//     streaming target id, never by position, so a stale cycle can never
//     write into a newer message.
//
// Change is observable through a version counter and registered listeners.
// Listeners are always invoked outside the store lock.
package store
