// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements redraw coalescing for streaming replies. Fragments
// land in the store far faster than a terminal can usefully repaint, so
// the view refreshes at a capped frame rate instead of once per fragment.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER GATE
// =============================================================================

// RenderGate coalesces store-change notifications into capped-rate redraws.
// Store mutations mark the gate dirty; the Bubble Tea tick loop asks the
// gate whether a repaint is due. A repaint is due when either:
//  1. Enough marks accumulated since the last flush (burst of fragments)
//  2. Enough time passed since the last flush (slow trickle)
//
// PERFORMANCE: without the gate, a fast model produces hundreds of store
// bumps per second and the viewport re-renders on every one, which
// flickers and burns CPU.
//
// Thread-safety: marks arrive from the streaming goroutine while flushes
// happen on the Bubble Tea loop, so everything is mutex-protected.
type RenderGate struct {
	mu        sync.Mutex
	dirty     int
	lastFlush time.Time

	burstSize   int
	minFlushGap time.Duration
}

const (
	// 30fps keeps streaming smooth without wasteful repaints.
	defaultMaxFPS    = 30
	defaultBurstSize = 15
)

// NewRenderGate creates a gate with the default 30fps cap.
func NewRenderGate() *RenderGate {
	return NewRenderGateWithConfig(defaultBurstSize, defaultMaxFPS)
}

// NewRenderGateWithConfig creates a gate with a custom burst size and
// frame rate cap. Out-of-range values fall back to the defaults.
func NewRenderGateWithConfig(burstSize, maxFPS int) *RenderGate {
	if burstSize <= 0 {
		burstSize = defaultBurstSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &RenderGate{
		burstSize:   burstSize,
		minFlushGap: time.Second / time.Duration(maxFPS),
		lastFlush:   time.Now(),
	}
}

// Mark records a store mutation. Called from the streaming goroutine.
func (g *RenderGate) Mark() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty++
}

// TryFlush reports whether a repaint is due and, if so, consumes the
// pending marks. Called from the Bubble Tea update loop.
func (g *RenderGate) TryFlush() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dirty == 0 {
		return false
	}
	if g.dirty < g.burstSize && time.Since(g.lastFlush) < g.minFlushGap {
		return false
	}

	g.dirty = 0
	g.lastFlush = time.Now()
	return true
}

// ForceFlush consumes pending marks unconditionally. Used when a stream
// completes so the final fragment always renders.
func (g *RenderGate) ForceFlush() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	had := g.dirty > 0
	g.dirty = 0
	g.lastFlush = time.Now()
	return had
}

// Pending returns the number of unflushed marks.
func (g *RenderGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// Reset clears pending marks without counting a flush as rendered.
func (g *RenderGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = 0
	g.lastFlush = time.Now()
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd drives the redraw loop at the gate's frame rate while a
// reply is streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(time.Second/defaultMaxFPS, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
