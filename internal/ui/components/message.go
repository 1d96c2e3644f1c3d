// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/multichat-tui/internal/model"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
	"github.com/jeranaias/multichat-tui/internal/util"
)

// StreamCursor marks the live end of a streaming assistant reply.
const StreamCursor = "▌"

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single message snapshot as a styled bubble.
type MessageBubble struct {
	Message       store.MessageView
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
	markdown      *Markdown
}

// NewMessageBubble creates a bubble for a message snapshot. The markdown
// renderer may be nil, in which case assistant content renders as plain text.
func NewMessageBubble(msg store.MessageView, theme *styles.Theme, md *Markdown) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		markdown:      md,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	default:
		return b.renderGenericBubble()
	}
}

// ==========================================================================
// USER BUBBLE - teal tones, right-aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := min(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)

	header := b.theme.RoleLabel.Render("you")
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	margin := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(lipgloss.Right,
		margin.Render(header),
		margin.Render(bubble),
	)
}

// ==========================================================================
// ASSISTANT BUBBLE - slate tones, left-aligned, markdown when finalized
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	var content string
	switch {
	case b.Message.IsStreaming:
		// PERFORMANCE: partial markdown re-renders badly and slowly, so
		// streaming text stays raw until the reply finalizes.
		content = wordWrap(b.Message.Content, maxContentWidth) +
			b.theme.StreamCursor.Render(StreamCursor)
	case b.markdown != nil && b.Message.Content != "":
		b.markdown.SetWidth(maxContentWidth)
		content = b.markdown.Render(b.Message.Content)
	default:
		content = wordWrap(b.Message.Content, maxContentWidth)
	}
	if content == "" {
		content = b.theme.ThinkingText.Render("...")
	}

	contentWidth := min(maxLineWidth(content)+4, b.Width-8)

	bubbleStyle := b.theme.AssistantBubble
	if b.Message.Failed {
		bubbleStyle = b.theme.FailedBubble
	}
	bubble := bubbleStyle.Width(contentWidth).Render(content)

	header := b.theme.RoleLabel.Render("assistant")
	if b.Message.Failed {
		header += " " + b.theme.ErrorText.Render("(interrupted)")
	}
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}

// ==========================================================================
// GENERIC BUBBLE - fallback for unknown roles
// ==========================================================================

func (b *MessageBubble) renderGenericBubble() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	return lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2).
		Render(wordWrap(content, maxContentWidth))
}

// renderTimestamp renders a dimmed timestamp, date-prefixed when not today.
func (b *MessageBubble) renderTimestamp() string {
	ts := b.Message.Timestamp
	if ts.IsZero() || !b.ShowTimestamp {
		return ""
	}

	now := time.Now()
	var formatted string
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = ts.Format("3:04 PM")
	} else {
		formatted = ts.Format("Jan 2, 3:04 PM")
	}
	return b.theme.Timestamp.Render(formatted)
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified display width.
// UNICODE: widths are measured in terminal cells, not bytes or runes.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for lineIdx, line := range strings.Split(text, "\n") {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if util.StringWidth(current)+1+util.StringWidth(word) <= width {
				current += " " + word
			} else {
				result.WriteString(current)
				result.WriteString("\n")
				current = word
			}
		}
		result.WriteString(current)
	}

	return result.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		if w := util.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a conversation's messages as a vertical bubble stack.
type MessageList struct {
	Messages       []store.MessageView
	Width          int
	ShowTimestamps bool
	theme          *styles.Theme
	markdown       *Markdown
}

// NewMessageList creates an empty message list.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
		markdown:       NewMarkdown(80),
	}
}

// SetMessages replaces the messages to display.
func (ml *MessageList) SetMessages(messages []store.MessageView) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages, or the empty-conversation hint.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("No messages yet. Type below to start the conversation.")
	}

	bubbles := make([]string, 0, len(ml.Messages))
	for _, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme, ml.markdown)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n\n")
}
