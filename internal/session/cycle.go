// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "sync"

// =============================================================================
// CYCLE STATE MACHINE
// =============================================================================

// CycleState is the lifecycle state of one send/stream cycle.
type CycleState int

const (
	StateIdle CycleState = iota
	StateSending
	StateStreaming
	StateFinalized
	StateAborted
)

// String returns the state name.
func (s CycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalized:
		return "finalized"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s CycleState) Terminal() bool {
	return s == StateFinalized || s == StateAborted
}

// cycle tracks state transitions for one send/stream cycle.
//
// Legal transitions: Idle -> Sending -> Streaming -> {Finalized, Aborted},
// with Sending allowed to jump straight to either terminal state (empty
// stream or pre-stream failure). Illegal transitions are ignored rather
// than panicking: the stream callback may race the terminal path, and a
// late advance must not corrupt a terminal state.
type cycle struct {
	mu    sync.Mutex
	state CycleState
}

func newCycle() *cycle {
	return &cycle{state: StateIdle}
}

// advance moves to next when legal and reports whether it did.
func (c *cycle) advance(next CycleState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !legalTransition(c.state, next) {
		return false
	}
	c.state = next
	return true
}

// current returns the current state.
func (c *cycle) current() CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func legalTransition(from, to CycleState) bool {
	if from.Terminal() {
		return false
	}
	switch from {
	case StateIdle:
		return to == StateSending
	case StateSending:
		return to == StateStreaming || to == StateFinalized || to == StateAborted
	case StateStreaming:
		return to == StateFinalized || to == StateAborted
	default:
		return false
	}
}
