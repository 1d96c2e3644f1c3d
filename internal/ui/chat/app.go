// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/multichat-tui/internal/config"
	"github.com/jeranaias/multichat-tui/internal/store"
)

// NewProgram wraps the chat model in a full-screen Bubble Tea program.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// BindStore forwards store change notifications into the program.
// p.Send is safe from any goroutine, which is exactly where store
// listeners fire during streaming.
func BindStore(p *tea.Program, st *store.Store) {
	st.Subscribe(func() {
		p.Send(StoreChangedMsg{Version: st.Version()})
	})
}

// BindConfig forwards hot-reloaded config values into the program.
func BindConfig(p *tea.Program) func(*config.Config) {
	return func(cfg *config.Config) {
		p.Send(ConfigReloadedMsg{
			Model: cfg.Ollama.Model,
			Theme: cfg.UI.Theme,
		})
	}
}
