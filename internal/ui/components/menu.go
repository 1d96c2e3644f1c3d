// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
	"github.com/jeranaias/multichat-tui/internal/util"
)

// =============================================================================
// CONVERSATION MENU COMPONENT
// =============================================================================

// Menu renders the conversation list pane. Conversations appear in the
// store's order, most recently created first, with the active one
// highlighted.
type Menu struct {
	Conversations []store.ConversationView
	ActiveID      string
	Width         int
	Height        int
	theme         *styles.Theme
}

// NewMenu creates a conversation menu.
func NewMenu(theme *styles.Theme) *Menu {
	return &Menu{
		Width:  28,
		Height: 20,
		theme:  theme,
	}
}

// SetSize sets the pane dimensions.
func (m *Menu) SetSize(width, height int) {
	m.Width = width
	m.Height = height
}

// SetConversations replaces the listed conversations and active selection.
func (m *Menu) SetConversations(convs []store.ConversationView, activeID string) {
	m.Conversations = convs
	m.ActiveID = activeID
}

// View renders the menu pane.
func (m *Menu) View() string {
	var b strings.Builder

	b.WriteString(m.theme.MenuTitle.Render("Conversations"))
	b.WriteString("\n")

	if len(m.Conversations) == 0 {
		b.WriteString(m.theme.MenuEmpty.Render("No conversations yet.\nPress ctrl+n to start one."))
		return m.frame(b.String())
	}

	// Each entry takes two rows (title + meta); show what fits.
	maxEntries := (m.Height - 2) / 2
	if maxEntries < 1 {
		maxEntries = 1
	}
	visible := m.Conversations
	if len(visible) > maxEntries {
		visible = m.windowAroundActive(maxEntries)
	}

	titleWidth := m.Width - 4
	if titleWidth < 8 {
		titleWidth = 8
	}

	for _, conv := range visible {
		title := util.TruncateWidth(conv.Title, titleWidth)
		if conv.Streaming {
			title = StreamCursor + " " + util.TruncateWidth(conv.Title, titleWidth-2)
		}

		if conv.ID == m.ActiveID {
			b.WriteString(m.theme.MenuItemActive.Render(util.PadRight(title, titleWidth)))
		} else {
			b.WriteString(m.theme.MenuItem.Render(title))
		}
		b.WriteString("\n")
		meta := relativeStamp(conv.UpdatedAt)
		if !sameDay(conv.CreatedAt, conv.UpdatedAt) {
			meta = relativeStamp(conv.CreatedAt) + " / " + meta
		}
		b.WriteString(m.theme.MenuMeta.Render(util.TruncateWidth(meta, titleWidth)))
		b.WriteString("\n")
	}

	return m.frame(b.String())
}

// frame wraps content in the bordered menu style at the pane size.
func (m *Menu) frame(content string) string {
	return m.theme.Menu.
		Width(m.Width).
		Height(m.Height).
		Render(content)
}

// windowAroundActive returns a slice of n conversations keeping the active
// one visible when the list overflows the pane.
func (m *Menu) windowAroundActive(n int) []store.ConversationView {
	activeIdx := 0
	for i, c := range m.Conversations {
		if c.ID == m.ActiveID {
			activeIdx = i
			break
		}
	}

	start := activeIdx - n/2
	if start < 0 {
		start = 0
	}
	if start+n > len(m.Conversations) {
		start = len(m.Conversations) - n
	}
	return m.Conversations[start : start+n]
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// relativeStamp formats a timestamp the way chat sidebars do: clock time
// today, weekday within a week, date otherwise.
func relativeStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	switch {
	case t.Year() == now.Year() && t.YearDay() == now.YearDay():
		return t.Format("3:04 PM")
	case now.Sub(t) < 7*24*time.Hour:
		return t.Format("Mon 3:04 PM")
	default:
		return t.Format("Jan 2")
	}
}

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar renders the bottom bar with model name, cycle state, and
// keyboard shortcuts.
type StatusBar struct {
	Model     string
	Streaming bool
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	left := s.theme.StatusModel.Render(s.Model)
	if s.Streaming {
		left += " " + s.theme.StatusState.Render("streaming")
	}

	shortcuts := []struct{ key, desc string }{
		{"ctrl+n", "new"},
		{"ctrl+d", "delete"},
		{"tab", "focus"},
		{"ctrl+t", "theme"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.key)+" "+s.theme.ShortcutDesc.Render(sc.desc))
	}
	right := strings.Join(parts, "  ")

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
