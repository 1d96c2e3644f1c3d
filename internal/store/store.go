// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the in-memory conversation collection and its
// mutation protocol.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/jeranaias/multichat-tui/internal/model"
)

// =============================================================================
// SNAPSHOT TYPES
// =============================================================================

// MessageView is an immutable copy of a message for rendering.
type MessageView struct {
	ID          string
	Role        model.Role
	Content     string
	Timestamp   time.Time
	IsStreaming bool
	Failed      bool
}

// ConversationView is an immutable copy of a conversation for rendering.
type ConversationView struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []MessageView
	Streaming bool
}

// LastMessage returns the final message view, or a zero value if empty.
func (v ConversationView) LastMessage() (MessageView, bool) {
	if len(v.Messages) == 0 {
		return MessageView{}, false
	}
	return v.Messages[len(v.Messages)-1], true
}

// =============================================================================
// STORE
// =============================================================================

// Listener is invoked after every successful mutation. Listeners run
// outside the store lock and may call back into the store.
type Listener func()

// Store is the single source of truth for all conversations.
//
// All mutations are total over "conversation may or may not exist": writes
// addressed to a deleted conversation are silent no-ops, which is what makes
// in-flight streams safe to orphan. Conversations are kept most-recent-first
// (newest created at the front).
type Store struct {
	mu            sync.Mutex
	conversations []*model.Conversation
	activeID      string
	titleSeq      int
	version       uint64
	listeners     []Listener
}

// New creates an empty store.
func New() *Store {
	return &Store{
		conversations: make([]*model.Conversation, 0),
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create inserts a new empty conversation at the front of the collection,
// makes it active, and returns its id. Titles come from a monotonic
// counter, so deleting "Chat 2" never causes a second "Chat 2".
func (s *Store) Create() string {
	s.mu.Lock()
	s.titleSeq++
	conv := model.NewConversation(fmt.Sprintf("Chat %d", s.titleSeq))
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.bump()
	s.mu.Unlock()

	s.notify()
	return conv.ID
}

// Select makes the given conversation active. No-op for unknown ids.
func (s *Store) Select(id string) {
	s.mu.Lock()
	if s.find(id) == -1 || s.activeID == id {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	s.bump()
	s.mu.Unlock()

	s.notify()
}

// Delete removes a conversation. If it was active, selection falls back to
// the first remaining conversation, or to none. Unknown ids are a no-op.
// Any in-flight stream addressed to the id is orphaned: every later
// mutation for it lands here, finds nothing, and does nothing.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	idx := s.find(id)
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.activeID == id {
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		} else {
			s.activeID = ""
		}
	}
	s.bump()
	s.mu.Unlock()

	s.notify()
}

// AppendMessage appends a message to a conversation.
func (s *Store) AppendMessage(conversationID string, msg *model.Message) {
	s.mutate(conversationID, func(c *model.Conversation) {
		c.AddMessage(msg)
	})
}

// AppendUserMessage appends a user message and returns its id.
// Returns "" when the conversation does not exist.
func (s *Store) AppendUserMessage(conversationID, content string) string {
	var msgID string
	s.mutate(conversationID, func(c *model.Conversation) {
		msgID = c.AddUserMessage(content).ID
	})
	return msgID
}

// AppendStreamingPlaceholder appends an empty streaming assistant message,
// makes it the conversation's streaming target, and returns its id.
// Returns "" when the conversation does not exist.
func (s *Store) AppendStreamingPlaceholder(conversationID string) string {
	var msgID string
	s.mutate(conversationID, func(c *model.Conversation) {
		msgID = c.AddAssistantPlaceholder().ID
	})
	return msgID
}

// AppendStreamingContent appends a content fragment to the conversation's
// streaming target. Silent no-op when the conversation or target is gone.
func (s *Store) AppendStreamingContent(conversationID, fragment string) {
	s.mutate(conversationID, func(c *model.Conversation) {
		c.AppendStreaming(fragment)
	})
}

// FinalizeStreamingMessage completes the conversation's streaming target.
// Idempotent; silent no-op when the conversation is gone.
func (s *Store) FinalizeStreamingMessage(conversationID string) {
	s.mutate(conversationID, func(c *model.Conversation) {
		c.FinalizeStreaming()
	})
}

// FailStreamingMessage completes the conversation's streaming target and
// marks it failed, keeping any partial content. Idempotent.
func (s *Store) FailStreamingMessage(conversationID string) {
	s.mutate(conversationID, func(c *model.Conversation) {
		c.FailStreaming()
	})
}

// mutate runs fn on the conversation under the lock, then notifies.
// Unknown ids skip both fn and the notification.
func (s *Store) mutate(conversationID string, fn func(*model.Conversation)) {
	s.mu.Lock()
	idx := s.find(conversationID)
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	fn(s.conversations[idx])
	s.bump()
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// READS
// =============================================================================

// Conversations returns snapshot views of all conversations,
// most-recent-first.
func (s *Store) Conversations() []ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]ConversationView, len(s.conversations))
	for i, c := range s.conversations {
		views[i] = snapshot(c)
	}
	return views
}

// Get returns a snapshot view of one conversation.
func (s *Store) Get(id string) (ConversationView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx == -1 {
		return ConversationView{}, false
	}
	return snapshot(s.conversations[idx]), true
}

// Active returns a snapshot view of the active conversation, if any.
func (s *Store) Active() (ConversationView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return ConversationView{}, false
	}
	idx := s.find(s.activeID)
	if idx == -1 {
		return ConversationView{}, false
	}
	return snapshot(s.conversations[idx]), true
}

// ActiveID returns the id of the active conversation, or "".
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// WireHistory returns the outbound wire history of a conversation,
// role+content pairs in chronological order. The boolean is false when the
// conversation does not exist.
func (s *Store) WireHistory(id string) ([]model.WireMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx == -1 {
		return nil, false
	}
	return s.conversations[idx].WireHistory(), true
}

// StreamingTarget returns the id of the message currently receiving stream
// fragments for a conversation, or "".
func (s *Store) StreamingTarget(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(conversationID)
	if idx == -1 {
		return ""
	}
	return s.conversations[idx].StreamingID
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Version returns the mutation counter. It increments on every successful
// mutation, so pollers can cheaply detect change.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers a listener invoked after every successful mutation.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// bump increments the version. Caller must hold the lock.
func (s *Store) bump() {
	s.version++
}

// notify invokes listeners outside the lock so they can safely read the
// store or trigger further mutations.
func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// find returns the index of a conversation, or -1. Caller must hold the lock.
func (s *Store) find(id string) int {
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func snapshot(c *model.Conversation) ConversationView {
	msgs := make([]MessageView, len(c.Messages))
	for i, m := range c.Messages {
		msgs[i] = MessageView{
			ID:          m.ID,
			Role:        m.Role,
			Content:     m.DisplayContent(),
			Timestamp:   m.Timestamp,
			IsStreaming: m.IsStreaming,
			Failed:      m.Failed,
		}
	}
	return ConversationView{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  msgs,
		Streaming: c.IsStreaming(),
	}
}
