// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives send/stream cycles between the store and the
// Ollama client.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/telemetry"
	"github.com/jeranaias/multichat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned when the trimmed input is empty.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownConversation is returned when the target conversation does
	// not exist at cycle entry. After entry the conversation may vanish at
	// any time; that is not an error, the cycle just stops having effects.
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrTruncatedStream is returned when the stream ends cleanly without a
	// terminal record. The reply may look complete but cannot be trusted, so
	// the cycle aborts instead of finalizing.
	ErrTruncatedStream = errors.New("stream ended without a terminal record")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds session configuration.
type Config struct {
	// Model requested for every cycle (default: client's default model).
	Model string

	// RateLimit caps how fast sends may be issued (default: 2/s).
	RateLimit rate.Limit

	// Burst for the send limiter (default: 4).
	Burst int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		RateLimit: rate.Limit(2),
		Burst:     4,
	}
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observer receives per-cycle events for callers that render outside the
// store subscription, such as the plain REPL printing fragments as they
// arrive. All methods are called from the cycle's goroutine.
type Observer interface {
	Fragment(conversationID, messageID, fragment string)
	CycleEnd(conversationID, messageID string, stats *ollama.StreamStats, err error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns the send/stream cycle: it commits the user turn and the
// assistant placeholder to the store, runs the network call, and applies
// stream records back to the store.
//
// All store writes go through named store operations, so a conversation
// deleted mid-cycle simply stops absorbing writes. Each cycle additionally
// guards on its own placeholder still being the conversation's streaming
// target, so a superseded cycle cannot finalize or write into a newer one.
type Session struct {
	store   *store.Store
	client  *ollama.Client
	config  Config
	sink    telemetry.Sink
	limiter *rate.Limiter

	mu       sync.Mutex
	observer Observer
	inflight map[string]*flight
}

type flight struct {
	cancel context.CancelFunc
}

// New creates a session. A nil sink falls back to the no-op sink.
func New(st *store.Store, client *ollama.Client, config Config, sink telemetry.Sink) *Session {
	if config.RateLimit == 0 {
		config.RateLimit = rate.Limit(2)
	}
	if config.Burst == 0 {
		config.Burst = 4
	}
	if config.Model == "" {
		config.Model = client.GetDefaultModel()
	}
	if sink == nil {
		sink = telemetry.NewNop()
	}
	return &Session{
		store:    st,
		client:   client,
		config:   config,
		sink:     sink,
		limiter:  rate.NewLimiter(config.RateLimit, config.Burst),
		inflight: make(map[string]*flight),
	}
}

// SetObserver registers the per-cycle event observer.
func (s *Session) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// Model returns the model requested for each cycle.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Model
}

// SetModel switches the model used for subsequent cycles. Cycles already
// in flight keep the model they started with.
func (s *Session) SetModel(name string) {
	name = util.NormalizeInput(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	s.config.Model = name
	s.mu.Unlock()
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// Send runs one complete send/stream cycle for a conversation. It blocks
// until the cycle reaches a terminal state and returns the transport error
// for aborted cycles.
//
// The user message and the streaming placeholder are committed to the
// store before the network call, so the UI shows them immediately.
func (s *Session) Send(ctx context.Context, conversationID, text string) error {
	text = util.NormalizeInput(text)
	if text == "" {
		return ErrEmptyInput
	}

	history, ok := s.store.WireHistory(conversationID)
	if !ok {
		return ErrUnknownConversation
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	// Outbound payload: prior history plus the new user turn, role and
	// content only, chronological order.
	wire := make([]ollama.Message, 0, len(history)+1)
	for _, m := range history {
		wire = append(wire, ollama.Message{Role: m.Role, Content: m.Content})
	}
	wire = append(wire, ollama.NewUserMessage(text))

	// Commit both sides of the turn before the network call.
	s.store.AppendUserMessage(conversationID, text)
	msgID := s.store.AppendStreamingPlaceholder(conversationID)
	if msgID == "" {
		// Conversation vanished between entry and commit.
		return ErrUnknownConversation
	}

	cycle := newCycle()
	cycle.advance(StateSending)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	f := &flight{cancel: cancel}
	s.register(conversationID, f)
	defer s.unregister(conversationID, f)

	modelName := s.Model()
	s.sink.CycleStarted(conversationID, modelName)
	stats := ollama.NewStreamStats()
	tokens := 0
	sawTerminal := false

	err := s.client.ChatStream(ctx, modelName, wire, func(chunk ollama.StreamChunk) {
		cycle.advance(StateStreaming)
		if chunk.Content != "" {
			if tokens == 0 {
				stats.RecordFirstToken()
			}
			tokens++
			if s.store.StreamingTarget(conversationID) == msgID {
				s.store.AppendStreamingContent(conversationID, chunk.Content)
			}
			s.notifyFragment(conversationID, msgID, chunk.Content)
		}
		if chunk.Done {
			sawTerminal = true
			stats.Finalize(chunk)
		}
	})

	// A connection dropped on a line boundary reads as a clean EOF. Only
	// the terminal record proves the reply is complete.
	if err == nil && !sawTerminal {
		err = ErrTruncatedStream
	}

	if err != nil {
		cycle.advance(StateAborted)
		if s.store.StreamingTarget(conversationID) == msgID {
			s.store.FailStreamingMessage(conversationID)
		}
		s.sink.CycleAborted(conversationID, err)
		s.notifyEnd(conversationID, msgID, stats, err)
		return err
	}

	cycle.advance(StateFinalized)
	if s.store.StreamingTarget(conversationID) == msgID {
		s.store.FinalizeStreamingMessage(conversationID)
	}
	s.sink.CycleCompleted(conversationID, tokens, time.Since(stats.StartTime))
	s.notifyEnd(conversationID, msgID, stats, nil)
	return nil
}

// Cancel aborts the in-flight cycle for a conversation, if any. Safe to
// call for conversations with no active cycle.
func (s *Session) Cancel(conversationID string) {
	s.mu.Lock()
	f := s.inflight[conversationID]
	s.mu.Unlock()
	if f != nil {
		f.cancel()
	}
}

// IsBusy reports whether a cycle is in flight for the conversation.
func (s *Session) IsBusy(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[conversationID]
	return ok
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Session) register(conversationID string, f *flight) {
	s.mu.Lock()
	s.inflight[conversationID] = f
	s.mu.Unlock()
}

// unregister removes the flight only if it is still the registered one, so
// a newer cycle for the same conversation is never evicted by an older one.
func (s *Session) unregister(conversationID string, f *flight) {
	s.mu.Lock()
	if s.inflight[conversationID] == f {
		delete(s.inflight, conversationID)
	}
	s.mu.Unlock()
}

func (s *Session) notifyFragment(conversationID, messageID, fragment string) {
	s.mu.Lock()
	o := s.observer
	s.mu.Unlock()
	if o != nil {
		o.Fragment(conversationID, messageID, fragment)
	}
}

func (s *Session) notifyEnd(conversationID, messageID string, stats *ollama.StreamStats, err error) {
	s.mu.Lock()
	o := s.observer
	s.mu.Unlock()
	if o != nil {
		o.CycleEnd(conversationID, messageID, stats, err)
	}
}

// =============================================================================
// SEND CONVENIENCE
// =============================================================================

// SendToActive runs a cycle against the active conversation, creating one
// first when the store is empty.
func (s *Session) SendToActive(ctx context.Context, text string) error {
	id := s.store.ActiveID()
	if id == "" {
		id = s.store.Create()
	}
	return s.Send(ctx, id, text)
}
