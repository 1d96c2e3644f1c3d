// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders assistant replies as terminal markdown via glamour.
// The underlying renderer is rebuilt when the wrap width changes, which
// happens on window resize and essentially never otherwise.
type Markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a markdown renderer wrapping at the given width.
func NewMarkdown(width int) *Markdown {
	m := &Markdown{}
	m.SetWidth(width)
	return m
}

// SetWidth updates the wrap width, rebuilding the renderer if needed.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == m.width && m.renderer != nil {
		return
	}
	m.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Glamour only fails on bad options; fall back to chroma-only rendering.
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Render renders markdown to styled terminal text. On renderer failure it
// falls back to highlighting fenced code blocks with chroma and leaving
// the surrounding prose untouched.
func (m *Markdown) Render(text string) string {
	if m.renderer != nil {
		out, err := m.renderer.Render(text)
		if err == nil {
			// Glamour pads with leading/trailing blank lines.
			return strings.Trim(out, "\n")
		}
	}
	return ParseInlineCode(ParseCodeBlocks(text, m.width))
}
