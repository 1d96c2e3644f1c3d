// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/telemetry"
)

// fakeOllama returns a server streaming the given content fragments
// followed by a terminal record.
func fakeOllama(t *testing.T, fragments ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, f := range fragments {
			line, _ := json.Marshal(map[string]any{
				"message": map[string]string{"role": "assistant", "content": f},
				"done":    false,
			})
			w.Write(append(line, '\n'))
			flusher.Flush()
		}
		w.Write([]byte(`{"done":true,"done_reason":"stop"}` + "\n"))
	}))
}

func newTestSession(st *store.Store, baseURL string) *Session {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: baseURL})
	cfg := Config{Model: "llama3.2", RateLimit: 1000, Burst: 1000}
	return New(st, client, cfg, telemetry.NewNop())
}

func TestSendFullCycle(t *testing.T) {
	srv := fakeOllama(t, "The answer", " is", " 42.")
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	err := sess.Send(context.Background(), id, "  what is the answer?  ")
	require.NoError(t, err)

	conv, ok := st.Get(id)
	require.True(t, ok)
	require.Len(t, conv.Messages, 2)

	user := conv.Messages[0]
	assert.Equal(t, "user", user.Role.String())
	assert.Equal(t, "what is the answer?", user.Content, "input should be trimmed")

	asst := conv.Messages[1]
	assert.Equal(t, "assistant", asst.Role.String())
	assert.Equal(t, "The answer is 42.", asst.Content)
	assert.False(t, asst.IsStreaming)
	assert.False(t, asst.Failed)
	assert.False(t, conv.Streaming)
}

func TestSendEmptyInputRejected(t *testing.T) {
	st := store.New()
	id := st.Create()
	sess := newTestSession(st, "http://127.0.0.1:1")

	for _, input := range []string{"", "   ", "\n\t  "} {
		err := sess.Send(context.Background(), id, input)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}

	conv, _ := st.Get(id)
	assert.Empty(t, conv.Messages, "rejected sends must not mutate the store")
}

func TestSendUnknownConversation(t *testing.T) {
	st := store.New()
	sess := newTestSession(st, "http://127.0.0.1:1")

	err := sess.Send(context.Background(), "no-such-id", "hello")
	assert.ErrorIs(t, err, ErrUnknownConversation)
}

func TestSendPayloadShape(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"message":{"content":"reply"},"done":false}` + "\n"))
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	require.NoError(t, sess.Send(context.Background(), id, "first"))
	require.NoError(t, sess.Send(context.Background(), id, "second"))

	assert.Equal(t, "llama3.2", captured.Model)
	assert.True(t, captured.Stream)
	// Second request carries the full prior history plus the new turn.
	require.Len(t, captured.Messages, 3)
	wantRoles := []string{"user", "assistant", "user"}
	wantContent := []string{"first", "reply", "second"}
	for i, m := range captured.Messages {
		assert.Equal(t, wantRoles[i], m["role"])
		assert.Equal(t, wantContent[i], m["content"])
		// Only role and content cross the wire.
		assert.Len(t, m, 2, "message %d leaked extra fields: %v", i, m)
	}
}

func TestSendPlaceholderCommittedBeforeNetwork(t *testing.T) {
	st := store.New()
	id := st.Create()

	seen := make(chan int, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// By the time the request arrives, both turn halves must exist.
		conv, _ := st.Get(id)
		seen <- len(conv.Messages)
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer srv.Close()

	sess := newTestSession(st, srv.URL)
	require.NoError(t, sess.Send(context.Background(), id, "hi"))

	assert.Equal(t, 2, <-seen)
}

func TestSendTransportFailureMarksPlaceholderFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ollama.OllamaError{Error: "out of memory"})
	}))
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	err := sess.Send(context.Background(), id, "hello")
	require.Error(t, err)

	conv, _ := st.Get(id)
	require.Len(t, conv.Messages, 2)
	asst := conv.Messages[1]
	assert.True(t, asst.Failed)
	assert.False(t, asst.IsStreaming)
	assert.False(t, conv.Streaming, "no stream may be left dangling")
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	err := sess.Send(context.Background(), id, "hello")
	require.Error(t, err)

	conv, _ := st.Get(id)
	last, _ := conv.LastMessage()
	assert.True(t, last.Failed)
}

func TestSendStreamEndsWithoutTerminalRecord(t *testing.T) {
	// The server sends one content record then closes the connection on a
	// clean line boundary. Without the done:true record the reply may be
	// missing its tail, so the cycle must abort, not finalize.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"partial reply"},"done":false}` + "\n"))
	}))
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	err := sess.Send(context.Background(), id, "hello")
	assert.ErrorIs(t, err, ErrTruncatedStream)

	conv, _ := st.Get(id)
	require.Len(t, conv.Messages, 2)
	asst := conv.Messages[1]
	assert.True(t, asst.Failed, "a truncated reply must not read as a successful one")
	assert.False(t, asst.IsStreaming)
	assert.Equal(t, "partial reply", asst.Content, "received content is kept")
	assert.False(t, conv.Streaming)
}

func TestDeleteMidCycleOrphansStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write([]byte(`{"message":{"content":"before delete"},"done":false}` + "\n"))
		flusher.Flush()
		<-release
		w.Write([]byte(`{"message":{"content":"after delete"},"done":false}` + "\n"))
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer srv.Close()
	defer close(release)

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	done := make(chan error, 1)
	go func() {
		done <- sess.Send(context.Background(), id, "hello")
	}()

	// Wait for the first fragment to land.
	require.Eventually(t, func() bool {
		conv, ok := st.Get(id)
		if !ok || len(conv.Messages) < 2 {
			return false
		}
		return conv.Messages[1].Content == "before delete"
	}, 2*time.Second, 10*time.Millisecond)

	sess.Cancel(id)
	st.Delete(id)

	<-done

	// The deleted conversation must not resurrect in any form.
	assert.Equal(t, 0, st.Len())
	_, ok := st.Get(id)
	assert.False(t, ok)
}

func TestSecondCycleSupersedesFirst(t *testing.T) {
	srv := fakeOllama(t, "reply")
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	require.NoError(t, sess.Send(context.Background(), id, "one"))

	// Simulate a stale cycle still holding the first placeholder id: its
	// guard must see a different streaming target after a new placeholder
	// is committed.
	staleTarget := st.AppendStreamingPlaceholder(id)
	newTarget := st.AppendStreamingPlaceholder(id)
	assert.NotEqual(t, staleTarget, st.StreamingTarget(id))
	assert.Equal(t, newTarget, st.StreamingTarget(id))
}

func TestSendToActiveCreatesWhenEmpty(t *testing.T) {
	srv := fakeOllama(t, "hi")
	defer srv.Close()

	st := store.New()
	sess := newTestSession(st, srv.URL)

	require.NoError(t, sess.SendToActive(context.Background(), "hello"))
	assert.Equal(t, 1, st.Len())
}

func TestObserverReceivesFragments(t *testing.T) {
	srv := fakeOllama(t, "a", "b", "c")
	defer srv.Close()

	st := store.New()
	id := st.Create()
	sess := newTestSession(st, srv.URL)

	obs := &recordingObserver{}
	sess.SetObserver(obs)

	require.NoError(t, sess.Send(context.Background(), id, "hello"))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, obs.fragments)
	assert.True(t, obs.ended)
	assert.NoError(t, obs.err)
}

type recordingObserver struct {
	mu        sync.Mutex
	fragments []string
	ended     bool
	err       error
}

func (o *recordingObserver) Fragment(conversationID, messageID, fragment string) {
	o.mu.Lock()
	o.fragments = append(o.fragments, fragment)
	o.mu.Unlock()
}

func (o *recordingObserver) CycleEnd(conversationID, messageID string, stats *ollama.StreamStats, err error) {
	o.mu.Lock()
	o.ended = true
	o.err = err
	o.mu.Unlock()
}

// =============================================================================
// CYCLE STATE MACHINE TESTS
// =============================================================================

func TestCycleLegalPath(t *testing.T) {
	c := newCycle()
	assert.Equal(t, StateIdle, c.current())
	assert.True(t, c.advance(StateSending))
	assert.True(t, c.advance(StateStreaming))
	assert.True(t, c.advance(StateFinalized))
	assert.True(t, c.current().Terminal())
}

func TestCycleSendingMayAbort(t *testing.T) {
	c := newCycle()
	c.advance(StateSending)
	assert.True(t, c.advance(StateAborted))
}

func TestCycleNoReentryAfterTerminal(t *testing.T) {
	c := newCycle()
	c.advance(StateSending)
	c.advance(StateStreaming)
	c.advance(StateAborted)

	for _, next := range []CycleState{StateIdle, StateSending, StateStreaming, StateFinalized} {
		assert.False(t, c.advance(next), "aborted cycle accepted transition to %s", next)
	}
	assert.Equal(t, StateAborted, c.current())
}

func TestCycleIllegalSkips(t *testing.T) {
	c := newCycle()
	assert.False(t, c.advance(StateStreaming), "idle cannot jump to streaming")
	assert.False(t, c.advance(StateFinalized), "idle cannot jump to finalized")
}

func TestCycleStateStrings(t *testing.T) {
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "finalized", StateFinalized.String())
	assert.Equal(t, "aborted", StateAborted.String())
}
