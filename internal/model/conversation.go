// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one chat session: an ordered message history plus
// metadata. Messages are append-only; the only in-place mutation is the
// single currently-streaming assistant message.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, insertion order = chronological order
	Messages []*Message `json:"messages"`

	// StreamingID is the id of the message currently receiving stream
	// fragments, or "" when no stream is active. Fragments are addressed
	// through this id rather than by last-message position, so a stale
	// cycle can never write into a newer placeholder.
	StreamingID string `json:"-"`
}

// NewConversation creates a new conversation with a generated ID.
func NewConversation(title string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and stamps UpdatedAt.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantPlaceholder creates and appends an empty streaming assistant
// message and makes it the streaming target.
func (c *Conversation) AddAssistantPlaceholder() *Message {
	msg := NewAssistantPlaceholder()
	c.AddMessage(msg)
	c.StreamingID = msg.ID
	return msg
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageByID returns a message by its ID, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// STREAMING TARGET
// =============================================================================

// AppendStreaming appends a fragment to the streaming target message.
// No-op when no target is set, the target is gone, or the target is not an
// assistant message.
func (c *Conversation) AppendStreaming(fragment string) {
	if c.StreamingID == "" {
		return
	}
	msg := c.MessageByID(c.StreamingID)
	if msg == nil || msg.Role != RoleAssistant {
		return
	}
	msg.AppendFragment(fragment)
	c.UpdatedAt = time.Now()
}

// FinalizeStreaming clears the streaming flag on the target message and
// drops the target. Idempotent: calling it with no active stream is a no-op.
func (c *Conversation) FinalizeStreaming() {
	if c.StreamingID == "" {
		return
	}
	if msg := c.MessageByID(c.StreamingID); msg != nil && msg.Role == RoleAssistant {
		msg.Finalize()
		c.UpdatedAt = time.Now()
	}
	c.StreamingID = ""
}

// FailStreaming finalizes the target message and marks it failed.
// Idempotent like FinalizeStreaming.
func (c *Conversation) FailStreaming() {
	if c.StreamingID == "" {
		return
	}
	if msg := c.MessageByID(c.StreamingID); msg != nil && msg.Role == RoleAssistant {
		msg.Fail()
		c.UpdatedAt = time.Now()
	}
	c.StreamingID = ""
}

// IsStreaming reports whether a stream is currently targeting this
// conversation.
func (c *Conversation) IsStreaming() bool {
	return c.StreamingID != ""
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// WireMessage is the role+content pair transmitted to the model endpoint.
// Transient fields (id, timestamp, streaming state) are never transmitted.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WireHistory converts the message history to outbound wire format,
// preserving order. A still-streaming placeholder (if any) is excluded:
// it is UI state, not history.
func (c *Conversation) WireHistory() []WireMessage {
	wire := make([]WireMessage, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.IsStreaming {
			continue
		}
		wire = append(wire, WireMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return wire
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Preview returns a short preview of the conversation for listing.
func (c *Conversation) Preview(maxLen int) string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && !msg.IsEmpty() {
			return msg.Preview(maxLen)
		}
	}
	return ""
}

// NewID generates a fresh opaque unique identifier.
func NewID() string {
	return uuid.NewString()
}
