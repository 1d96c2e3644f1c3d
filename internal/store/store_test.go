// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIsActiveAndEmpty(t *testing.T) {
	s := New()

	id := s.Create()

	require.NotEmpty(t, id)
	assert.Equal(t, id, s.ActiveID())

	conv, ok := s.Get(id)
	require.True(t, ok)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, "Chat 1", conv.Title)
	assert.False(t, conv.CreatedAt.IsZero())
}

func TestCreateInsertsAtFront(t *testing.T) {
	s := New()
	first := s.Create()
	second := s.Create()

	views := s.Conversations()
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].ID)
	assert.Equal(t, first, views[1].ID)
}

func TestTitleCounterIsMonotonic(t *testing.T) {
	s := New()
	s.Create()
	second := s.Create()
	s.Delete(second)

	third := s.Create()
	conv, ok := s.Get(third)
	require.True(t, ok)
	// Never reuses "Chat 2" even though it was deleted.
	assert.Equal(t, "Chat 3", conv.Title)
}

func TestSelectUnknownIDIsNoOp(t *testing.T) {
	s := New()
	id := s.Create()
	v := s.Version()

	s.Select("no-such-id")

	assert.Equal(t, id, s.ActiveID())
	assert.Equal(t, v, s.Version(), "failed select must not bump version")
}

func TestDeleteActiveFallsBackToFirst(t *testing.T) {
	s := New()
	oldest := s.Create()
	middle := s.Create()
	newest := s.Create()

	s.Select(middle)
	s.Delete(middle)

	assert.Equal(t, newest, s.ActiveID())
	assert.Equal(t, 2, s.Len())

	s.Delete(newest)
	s.Delete(oldest)
	assert.Equal(t, "", s.ActiveID())
	assert.Equal(t, 0, s.Len())
}

func TestDeleteInactiveKeepsSelection(t *testing.T) {
	s := New()
	first := s.Create()
	second := s.Create()

	s.Select(first)
	s.Delete(second)

	assert.Equal(t, first, s.ActiveID())
}

func TestStreamingCycleOrderedConcatenation(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendUserMessage(id, "question")
	msgID := s.AppendStreamingPlaceholder(id)
	require.NotEmpty(t, msgID)

	fragments := []string{"The", " answer", " is", " 42."}
	for _, f := range fragments {
		s.AppendStreamingContent(id, f)
	}
	s.FinalizeStreamingMessage(id)

	conv, ok := s.Get(id)
	require.True(t, ok)
	last, ok := conv.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "The answer is 42.", last.Content)
	assert.False(t, last.IsStreaming)
	assert.False(t, conv.Streaming)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendStreamingPlaceholder(id)
	s.AppendStreamingContent(id, "done")
	s.FinalizeStreamingMessage(id)
	s.FinalizeStreamingMessage(id)

	conv, _ := s.Get(id)
	last, _ := conv.LastMessage()
	assert.Equal(t, "done", last.Content)
}

func TestOrphanedStreamMutationsAreNoOps(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendUserMessage(id, "question")
	s.AppendStreamingPlaceholder(id)
	s.Delete(id)

	// The cycle keeps going against the deleted id. Nothing may resurrect it.
	s.AppendStreamingContent(id, "ghost fragment")
	s.FinalizeStreamingMessage(id)
	s.FailStreamingMessage(id)
	s.AppendUserMessage(id, "another ghost")

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestFailStreamingMarksMessage(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendUserMessage(id, "question")
	s.AppendStreamingPlaceholder(id)
	s.AppendStreamingContent(id, "partial ans")

	s.FailStreamingMessage(id)

	conv, _ := s.Get(id)
	last, _ := conv.LastMessage()
	assert.True(t, last.Failed)
	assert.False(t, last.IsStreaming)
	assert.Equal(t, "partial ans", last.Content)
	assert.Empty(t, s.StreamingTarget(id))
}

func TestStaleCycleCannotTouchNewPlaceholder(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendUserMessage(id, "first")
	firstTarget := s.AppendStreamingPlaceholder(id)
	s.FinalizeStreamingMessage(id)

	s.AppendUserMessage(id, "second")
	secondTarget := s.AppendStreamingPlaceholder(id)
	require.NotEqual(t, firstTarget, secondTarget)

	// The first cycle's guard: its placeholder is no longer the target.
	assert.Equal(t, secondTarget, s.StreamingTarget(id))
}

func TestWireHistoryExcludesInFlightPlaceholder(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendUserMessage(id, "hello")
	s.AppendStreamingPlaceholder(id)

	wire, ok := s.WireHistory(id)
	require.True(t, ok)
	require.Len(t, wire, 1)
	assert.Equal(t, "user", wire[0].Role)
	assert.Equal(t, "hello", wire[0].Content)

	_, ok = s.WireHistory("no-such-id")
	assert.False(t, ok)
}

func TestVersionAndListeners(t *testing.T) {
	s := New()

	var mu sync.Mutex
	fired := 0
	s.Subscribe(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	v0 := s.Version()
	id := s.Create()
	s.AppendUserMessage(id, "hi")
	s.Delete(id)

	assert.Equal(t, v0+3, s.Version())
	mu.Lock()
	assert.Equal(t, 3, fired)
	mu.Unlock()
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	// A listener that reads back into the store must not deadlock.
	s.Subscribe(func() {
		_ = s.Conversations()
		_ = s.ActiveID()
	})
	id := s.Create()
	s.AppendUserMessage(id, "hi")
	s.Delete(id)
}

func TestConcurrentMutations(t *testing.T) {
	s := New()
	id := s.Create()
	s.AppendStreamingPlaceholder(id)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AppendStreamingContent(id, fmt.Sprintf("[%d:%d]", n, j))
				_ = s.Conversations()
			}
		}(i)
	}
	wg.Wait()

	s.FinalizeStreamingMessage(id)
	conv, _ := s.Get(id)
	last, _ := conv.LastMessage()
	// 8 goroutines x 50 fragments, each "[n:j]" at least 5 chars.
	assert.GreaterOrEqual(t, len(last.Content), 8*50*5)
}
