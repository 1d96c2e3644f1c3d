// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the multi-conversation chat TUI on Bubble Tea.

# Architecture

The store is the single source of truth. The Bubble Tea model never
mutates conversations directly; it calls store and session operations
and re-renders from snapshots:

	keyboard -> Update -> session.Send (own goroutine, via tea.Cmd)
	                         |
	                         v
	store mutations -> Subscribe listener -> p.Send(StoreChangedMsg)
	                         |
	                         v
	             snapshot -> viewport content

Each conversation streams independently. Input is blocked only while
the ACTIVE conversation has a reply in flight; switching to another
conversation lets the user keep typing there while the first one
finishes in the background.

# Streaming redraws

Fragments arrive much faster than a terminal repaints. A RenderGate
(streaming.go) coalesces store notifications into ~30fps redraws while
a reply streams; every other mutation repaints immediately.

# Wiring

	m := chat.New(st, sess, client, prefsStore, themePref)
	p := chat.NewProgram(m)
	chat.BindStore(p, st)
	_, err := p.Run()
*/
package chat
