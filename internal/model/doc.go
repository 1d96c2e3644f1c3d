// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations and their messages.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, timestamp, and streaming state
//   - Role: Message role enumeration (user, assistant)
//   - WireMessage: Outbound role+content pair for the model endpoint
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation("Chat 1")
//	conv.AddUserMessage("Hello!")
//	placeholder := conv.AddAssistantPlaceholder()
//
// Stream content into the placeholder:
//
//	conv.AppendStreaming("Hi ")
//	conv.AppendStreaming("there!")
//	conv.FinalizeStreaming()
package model
