// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements layout and rendering. The view is three regions:
// a conversation menu pane on the left, the message viewport with the
// input area on the right, and a status bar across the bottom.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/multichat-tui/internal/ollama"
)

const (
	menuWidth    = 28
	inputHeight  = 3
	headerHeight = 1
	statusHeight = 1
)

// resize recomputes component dimensions for a terminal size.
func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	chatWidth := width - menuWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := height - headerHeight - inputHeight - statusHeight - 3
	if chatHeight < 3 {
		chatHeight = 3
	}

	m.viewport.Width = chatWidth
	m.viewport.Height = chatHeight
	m.input.SetWidth(chatWidth - 2)
	m.menu.SetSize(menuWidth, chatHeight+inputHeight+2)
	m.msgList.SetWidth(chatWidth)
	m.statusBar.SetWidth(width)
}

// refreshViewport re-renders the active conversation into the viewport.
// Called on store changes, never per frame; View only assembles strings.
func (m *Model) refreshViewport() {
	wasAtBottom := m.viewport.AtBottom()

	active, ok := m.store.Active()
	if !ok {
		m.msgList.SetMessages(nil)
	} else {
		m.msgList.SetMessages(active.Messages)
	}
	m.viewport.SetContent(m.msgList.View())

	// Follow the stream unless the user scrolled up to read history.
	if wasAtBottom || (ok && active.Streaming) {
		m.viewport.GotoBottom()
	}
}

// View renders the full screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := m.renderHeader()
	m.menu.SetConversations(m.store.Conversations(), m.store.ActiveID())
	menu := m.menu.View()

	chat := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, menu, chat)

	m.statusBar.Model = m.modelName
	m.statusBar.Streaming = m.activeStreaming()

	sections := []string{header, body}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title row.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("multichat")
	status := m.theme.HeaderMeta.Render("connected")
	if !m.ollamaRunning {
		status = m.theme.ErrorText.Render("ollama unreachable")
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + status)
}

// renderInput renders the textarea region, with the spinner replacing the
// prompt while the active conversation streams.
func (m Model) renderInput() string {
	if m.activeStreaming() {
		thinking := m.spinner.View() + " " + m.theme.ThinkingText.Render("waiting for reply, esc to cancel")
		return m.theme.InputContainer.Width(m.viewport.Width).Render(thinking)
	}
	return m.theme.InputContainer.Width(m.viewport.Width).Render(m.input.View())
}

// renderBanner renders transient prompts: delete confirmation or the
// most recent cycle error.
func (m Model) renderBanner() string {
	if m.confirmDelete {
		active, _ := m.store.Active()
		return m.theme.ConfirmBox.Render("Delete \"" + active.Title + "\"? y/n")
	}

	if m.ollamaErr != nil && !m.ollamaRunning {
		return m.theme.ErrorText.Render("Ollama is not running. Start it with: ollama serve")
	}

	if m.lastCycleErr != nil {
		msg := m.lastCycleErr.Error()
		if ollama.IsModelNotFound(m.lastCycleErr) {
			msg = "model not found, pull it with: ollama pull " + m.modelName
		}
		return m.theme.ErrorText.Render(msg)
	}
	return ""
}
