// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/prefs"
	"github.com/jeranaias/multichat-tui/internal/session"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/ui/components"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which pane receives keyboard input.
type Focus int

const (
	FocusInput Focus = iota // Composing in the textarea
	FocusMenu               // Navigating the conversation list
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the multi-conversation chat view.
// It renders snapshots of the store and drives send cycles through the
// session; it never mutates conversation state directly.
type Model struct {
	store   *store.Store
	session *session.Session
	client  *ollama.Client
	prefs   *prefs.Store

	// Styling
	theme     *styles.Theme
	themePref styles.Preference

	// Dimensions
	width  int
	height int

	// Focus and transient state
	focus         Focus
	confirmDelete bool
	ollamaRunning bool
	ollamaErr     error
	lastCycleErr  error

	// Rendered snapshot bookkeeping
	seenVersion uint64
	gate        *RenderGate

	// UI components
	viewport  viewport.Model
	input     textarea.Model
	spinner   spinner.Model
	menu      *components.Menu
	msgList   *components.MessageList
	statusBar *components.StatusBar

	keyMap KeyMap

	modelName string
}

// New creates the chat model. The prefs store may be nil, in which case
// theme changes are not persisted.
func New(st *store.Store, sess *session.Session, client *ollama.Client, ps *prefs.Store, pref styles.Preference) Model {
	theme := styles.NewTheme(pref)

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 4096
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / defaultMaxFPS,
	}
	sp.Style = theme.Spinner

	return Model{
		store:     st,
		session:   sess,
		client:    client,
		prefs:     ps,
		theme:     theme,
		themePref: pref,
		focus:     FocusInput,
		gate:      NewRenderGate(),
		viewport:  vp,
		input:     ta,
		spinner:   sp,
		menu:      components.NewMenu(theme),
		msgList:   components.NewMessageList(theme),
		statusBar: components.NewStatusBar(theme),
		keyMap:    DefaultKeyMap(),
		modelName: sess.Model(),
	}
}

// Init starts the health check and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkOllamaCmd(), m.spinner.Tick)
}

// activeStreaming reports whether the active conversation has a reply
// in flight.
func (m Model) activeStreaming() bool {
	active, ok := m.store.Active()
	return ok && active.Streaming
}

// =============================================================================
// COMMANDS
// =============================================================================

// checkOllamaCmd probes the Ollama server.
func (m Model) checkOllamaCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.CheckRunning(ctx); err != nil {
			return OllamaStatusMsg{Running: false, Error: err}
		}
		return OllamaStatusMsg{Running: true}
	}
}

// sendCmd runs one full send cycle. Bubble Tea executes commands on
// their own goroutines, so the blocking stream lives here; the store
// subscription delivers incremental updates while it runs.
func (m Model) sendCmd(conversationID, text string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		err := sess.Send(context.Background(), conversationID, text)
		return CycleEndMsg{ConversationID: conversationID, Err: err}
	}
}
