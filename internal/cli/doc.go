// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the command line surface: argument parsing and
the plain line-based REPL.

The REPL is the fallback chat surface for environments where the TUI
does not fit: scripts, dumb terminals, screen readers. It shares the
store and session with the TUI, so all conversation semantics (history,
switching, delete-with-cancel) behave identically; only rendering
differs. Input history persists across runs via liner.

	st := store.New()
	sess := session.New(st, client, session.Config{}, sink)
	repl := cli.NewREPL(st, sess, client)
	err := repl.Run(ctx)
*/
package cli
