// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry provides structured event logging for the application.
package telemetry

import (
	"io"
	"log/slog"
	"time"
)

// =============================================================================
// SINK
// =============================================================================

// Sink receives stream lifecycle events. Implementations must be safe for
// concurrent use.
type Sink interface {
	// CycleStarted records the beginning of a send/stream cycle.
	CycleStarted(conversationID, model string)

	// CycleCompleted records a cycle that reached its terminal record.
	CycleCompleted(conversationID string, tokens int, elapsed time.Duration)

	// CycleAborted records a cycle that failed in transport or decode.
	CycleAborted(conversationID string, err error)
}

// =============================================================================
// SLOG SINK
// =============================================================================

type slogSink struct {
	logger *slog.Logger
}

// New creates a sink backed by the given slog logger.
func New(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogSink{logger: logger}
}

// NewWriter creates a sink writing text logs to w.
func NewWriter(w io.Writer, level slog.Level) Sink {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogSink{logger: slog.New(handler)}
}

func (s *slogSink) CycleStarted(conversationID, model string) {
	s.logger.Debug("cycle started",
		"conversation", conversationID,
		"model", model,
	)
}

func (s *slogSink) CycleCompleted(conversationID string, tokens int, elapsed time.Duration) {
	s.logger.Info("cycle completed",
		"conversation", conversationID,
		"tokens", tokens,
		"elapsed", elapsed,
	)
}

func (s *slogSink) CycleAborted(conversationID string, err error) {
	s.logger.Error("cycle aborted",
		"conversation", conversationID,
		"error", err,
	)
}

// =============================================================================
// NOP SINK
// =============================================================================

type nopSink struct{}

// NewNop creates a sink that discards all events.
func NewNop() Sink {
	return nopSink{}
}

func (nopSink) CycleStarted(string, string)               {}
func (nopSink) CycleCompleted(string, int, time.Duration) {}
func (nopSink) CycleAborted(string, error)                {}
