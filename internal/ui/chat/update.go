// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the Bubble Tea update loop.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/multichat-tui/internal/prefs"
	"github.com/jeranaias/multichat-tui/internal/ui/components"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
)

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		if msg.Version <= m.seenVersion {
			return m, nil
		}
		m.seenVersion = msg.Version
		if m.activeStreaming() {
			// Coalesce fragment bursts; the tick loop repaints.
			m.gate.Mark()
			return m, nil
		}
		m.refreshViewport()
		return m, nil

	case StreamTickMsg:
		var cmd tea.Cmd
		if m.gate.TryFlush() {
			m.refreshViewport()
		}
		if m.activeStreaming() {
			cmd = streamTickCmd()
		}
		return m, cmd

	case CycleEndMsg:
		m.gate.ForceFlush()
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.lastCycleErr = msg.Err
		}
		m.refreshViewport()
		return m, nil

	case OllamaStatusMsg:
		m.ollamaRunning = msg.Running
		m.ollamaErr = msg.Error
		return m, nil

	case ConfigReloadedMsg:
		if msg.Model != "" {
			m.session.SetModel(msg.Model)
			m.modelName = msg.Model
		}
		if msg.Theme != "" && styles.ParsePreference(msg.Theme) != m.themePref {
			m.applyTheme(styles.ParsePreference(msg.Theme))
			m.refreshViewport()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The delete confirmation swallows everything until answered.
	if m.confirmDelete {
		switch msg.String() {
		case "y", "Y":
			m.confirmDelete = false
			m.deleteActive()
			m.refreshViewport()
		default:
			m.confirmDelete = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewConv):
		m.store.Create()
		m.focus = FocusInput
		m.input.Focus()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteConv):
		if m.store.Len() > 0 {
			m.confirmDelete = true
		}
		return m, nil

	case key.Matches(msg, m.keyMap.FocusNext):
		if m.focus == FocusInput {
			m.focus = FocusMenu
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.CycleTheme):
		m.applyTheme(m.themePref.Next())
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if active, ok := m.store.Active(); ok && active.Streaming {
			m.session.Cancel(active.ID)
		}
		return m, nil
	}

	if m.focus == FocusMenu {
		return m.handleMenuKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleMenuKey navigates the conversation list.
func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.PrevConv):
		m.selectNeighbor(-1)
		m.refreshViewport()
	case key.Matches(msg, m.keyMap.NextConv):
		m.selectNeighbor(1)
		m.refreshViewport()
	case key.Matches(msg, m.keyMap.Submit):
		m.focus = FocusInput
		m.input.Focus()
	}
	return m, nil
}

// handleInputKey feeds the textarea and submits on Enter.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Submit) && !msg.Alt {
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a send cycle for the active conversation. Input is
// rejected while that conversation is already streaming; other
// conversations stream independently.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.activeStreaming() {
		return m, nil
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.store.Len() == 0 {
		m.store.Create()
	}
	active, ok := m.store.Active()
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.lastCycleErr = nil

	return m, tea.Batch(m.sendCmd(active.ID, text), streamTickCmd())
}

// deleteActive cancels any in-flight cycle, then removes the active
// conversation. Selection falls back to the newest remaining one.
func (m *Model) deleteActive() {
	active, ok := m.store.Active()
	if !ok {
		return
	}
	m.session.Cancel(active.ID)
	m.store.Delete(active.ID)
}

// selectNeighbor moves the active selection by delta within store order.
func (m *Model) selectNeighbor(delta int) {
	convs := m.store.Conversations()
	if len(convs) == 0 {
		return
	}
	activeID := m.store.ActiveID()
	idx := 0
	for i, c := range convs {
		if c.ID == activeID {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(convs) {
		idx = len(convs) - 1
	}
	m.store.Select(convs[idx].ID)
}

// applyTheme rebuilds every themed component and persists the preference.
func (m *Model) applyTheme(pref styles.Preference) {
	m.themePref = pref
	m.theme = styles.NewTheme(pref)
	m.menu = components.NewMenu(m.theme)
	m.msgList = components.NewMessageList(m.theme)
	m.statusBar = components.NewStatusBar(m.theme)
	m.spinner.Style = m.theme.Spinner
	m.resize(m.width, m.height)

	if m.prefs != nil {
		// Persistence failures are not worth interrupting the user for.
		_ = m.prefs.Set(prefs.KeyTheme, pref.String())
	}
}

// updateComponents forwards unhandled messages to the focused components.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.focus == FocusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
