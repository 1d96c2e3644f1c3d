// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual building blocks for the chat TUI.

Each component is a plain view-model over store snapshots, styled with
Lip Gloss through a *styles.Theme. Components hold no references into the
store; they render whatever ConversationView/MessageView copies they are
handed.

# Components

Menu (menu.go) - Conversation list pane with active highlight and timestamps.
StatusBar (menu.go) - Bottom bar with model name, cycle state, and shortcuts.
MessageBubble (message.go) - Styled chat bubbles; markdown for finalized
assistant replies, raw text plus a cursor while streaming.
MessageList (message.go) - Vertical stack of bubbles for one conversation.
Markdown (markdown.go) - Glamour-based terminal markdown renderer.
CodeBlock (codeblock.go) - Chroma-highlighted code blocks, used standalone
and as the fallback when glamour is unavailable.

# Theme Integration

All components accept a *styles.Theme:

	theme := styles.NewTheme(styles.PrefSystem)
	menu := components.NewMenu(theme)
	menu.SetConversations(views, activeID)
	pane := menu.View()
*/
package components
