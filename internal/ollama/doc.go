// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// This package implements a client for the Ollama local LLM server,
// supporting streaming chat completions over newline-delimited JSON.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Wire-format chat message (role and content only)
//   - ChatRequest: Request structure for chat completions
//   - StreamChunk: One decoded record from a streaming response
//   - StreamReader: Line-oriented decoder for streaming response bodies
//
// # Usage
//
// Create a client and stream a chat completion:
//
//	client := ollama.NewClient()
//	err := client.ChatStream(ctx, "llama3.2", messages, func(chunk ollama.StreamChunk) {
//	    fmt.Print(chunk.Content)
//	})
//
// # Decoding policy
//
// The decoder reassembles records across arbitrary network chunk
// boundaries, skips malformed lines, and drops an unterminated trailing
// line at EOF. The terminal record carries done=true; nothing is read
// past it.
package ollama
