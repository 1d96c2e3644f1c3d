// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/session"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
)

func newTestModel() (Model, *store.Store) {
	st := store.New()
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: "http://127.0.0.1:1"})
	sess := session.New(st, client, session.Config{Model: "llama3.2"}, nil)
	m := New(st, sess, client, nil, styles.PrefDark)
	m.resize(100, 30)
	return m, st
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNewConversationShortcut(t *testing.T) {
	m, st := newTestModel()

	next, _ := m.Update(keyMsg("ctrl+n"))
	m = next.(Model)

	if st.Len() != 1 {
		t.Fatalf("store has %d conversations, want 1", st.Len())
	}
	if m.focus != FocusInput {
		t.Error("creating a conversation should focus the input")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, st := newTestModel()
	st.Create()
	st.Create()

	next, _ := m.Update(keyMsg("ctrl+d"))
	m = next.(Model)
	if !m.confirmDelete {
		t.Fatal("delete should arm the confirmation prompt")
	}
	if st.Len() != 2 {
		t.Fatal("nothing should be deleted before confirmation")
	}

	// Anything but y dismisses.
	next, _ = m.Update(keyMsg("n"))
	m = next.(Model)
	if m.confirmDelete || st.Len() != 2 {
		t.Fatal("n should dismiss without deleting")
	}

	next, _ = m.Update(keyMsg("ctrl+d"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("y"))
	m = next.(Model)
	if st.Len() != 1 {
		t.Fatalf("store has %d conversations after confirm, want 1", st.Len())
	}
}

func TestDeleteShortcutIgnoredWhenEmpty(t *testing.T) {
	m, _ := newTestModel()

	next, _ := m.Update(keyMsg("ctrl+d"))
	m = next.(Model)
	if m.confirmDelete {
		t.Error("delete on an empty store should not prompt")
	}
}

func TestMenuNavigationSwitchesActive(t *testing.T) {
	m, st := newTestModel()
	st.Create() // older, index 1 after second create
	newest := st.Create()

	// Focus the menu, then move down to the older conversation.
	next, _ := m.Update(keyMsg("tab"))
	m = next.(Model)
	if m.focus != FocusMenu {
		t.Fatal("tab should move focus to the menu")
	}

	next, _ = m.Update(keyMsg("down"))
	m = next.(Model)
	if st.ActiveID() == newest {
		t.Error("down should select the next conversation in the list")
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(Model)
	if st.ActiveID() != newest {
		t.Error("up should return to the newest conversation")
	}
}

func TestStaleStoreVersionIgnored(t *testing.T) {
	m, st := newTestModel()
	st.Create()

	next, _ := m.Update(StoreChangedMsg{Version: st.Version()})
	m = next.(Model)
	seen := m.seenVersion

	next, _ = m.Update(StoreChangedMsg{Version: seen - 1})
	m = next.(Model)
	if m.seenVersion != seen {
		t.Error("stale version should not rewind the seen counter")
	}
}

func TestViewRendersWithoutConversations(t *testing.T) {
	m, _ := newTestModel()
	if m.View() == "" {
		t.Error("view should render the empty state")
	}
}
