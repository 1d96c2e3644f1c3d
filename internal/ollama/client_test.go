// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: baseURL})
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).CheckRunning(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckRunningDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	err := newTestClient(srv.URL).CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("expected not-running error, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{
			Models: []ModelInfo{{Name: "llama3.2"}, {Name: "qwen2.5:7b"}},
		})
	}))
	defer srv.Close()

	models, err := newTestClient(srv.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.2" {
		t.Errorf("models = %+v", models)
	}
}

func TestChatStreamRequestShape(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("got %s %s, want POST /api/chat", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer srv.Close()

	messages := []Message{
		NewUserMessage("first"),
		NewAssistantMessage("reply"),
		NewUserMessage("second"),
	}
	err := newTestClient(srv.URL).ChatStream(context.Background(), "llama3.2", messages, func(StreamChunk) {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != "llama3.2" {
		t.Errorf("model = %q", got.Model)
	}
	if !got.Stream {
		t.Error("stream flag should be true")
	}
	if len(got.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(got.Messages))
	}
	for i, m := range messages {
		if got.Messages[i] != m {
			t.Errorf("messages[%d] = %+v, want %+v", i, got.Messages[i], m)
		}
	}
}

func TestChatStreamDeliversChunksInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"message":{"content":"one "},"done":false}`,
			`{"message":{"content":"two "},"done":false}`,
			`{"message":{"content":"three"},"done":false}`,
			`{"done":true}`,
		}
		flusher := w.(http.Flusher)
		for _, l := range lines {
			w.Write([]byte(l + "\n"))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	var sb strings.Builder
	err := newTestClient(srv.URL).ChatStream(context.Background(), "", nil, func(c StreamChunk) {
		sb.WriteString(c.Content)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.String() != "one two three" {
		t.Errorf("accumulated = %q", sb.String())
	}
}

func TestChatStreamModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).ChatStream(context.Background(), "nope", nil, func(StreamChunk) {})
	if !IsModelNotFound(err) {
		t.Errorf("expected model-not-found, got %v", err)
	}
}

func TestChatStreamServerErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(OllamaError{Error: "model requires more memory"})
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).ChatStream(context.Background(), "llama3.2", nil, func(StreamChunk) {})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model requires more memory") {
		t.Errorf("error = %v, want server message surfaced", err)
	}
}

func TestChatStreamChanDeliversError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ch := newTestClient(srv.URL).ChatStreamChan(context.Background(), "llama3.2", nil)
	var last StreamChunk
	for c := range ch {
		last = c
	}
	if last.Error == nil {
		t.Error("expected error chunk")
	}
}

func TestDefaultsBackfilled(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	cfg := c.GetConfig()
	if cfg.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.DefaultModel != "llama3.2" {
		t.Errorf("default model = %q", cfg.DefaultModel)
	}
}
