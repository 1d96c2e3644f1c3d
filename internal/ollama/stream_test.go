// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

func collect(t *testing.T, r io.Reader) ([]StreamChunk, error) {
	t.Helper()
	var chunks []StreamChunk
	err := NewStreamReader(r).Process(context.Background(), func(c StreamChunk) {
		chunks = append(chunks, c)
	})
	return chunks, err
}

func TestStreamReaderBasic(t *testing.T) {
	input := `{"model":"llama3.2","message":{"role":"assistant","content":"Hello"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":" world"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","eval_count":2}
`
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Content != "Hello" || chunks[1].Content != " world" {
		t.Errorf("content fragments = %q, %q", chunks[0].Content, chunks[1].Content)
	}
	if !chunks[2].Done {
		t.Error("last chunk should be terminal")
	}
	if chunks[2].DoneReason != "stop" {
		t.Errorf("done_reason = %q, want stop", chunks[2].DoneReason)
	}
	if chunks[2].CompletionTokens != 2 {
		t.Errorf("completion tokens = %d, want 2", chunks[2].CompletionTokens)
	}
}

func TestStreamReaderChunkBoundaries(t *testing.T) {
	// One byte at a time: every record is split across reads.
	input := `{"message":{"content":"split"},"done":false}
{"message":{"content":" across reads"},"done":false}
{"done":true}
`
	var chunks []StreamChunk
	reader := NewStreamReader(iotest.OneByteReader(strings.NewReader(input)))
	err := reader.Process(context.Background(), func(c StreamChunk) {
		chunks = append(chunks, c)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := reader.GetAccumulated(); got != "split across reads" {
		t.Errorf("accumulated = %q", got)
	}
	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
}

func TestStreamReaderSkipsMalformedLines(t *testing.T) {
	input := `{"message":{"content":"before"},"done":false}
this is not json at all
{"message":{"content":"truncated json...
{"message":{"content":"after"},"done":false}
{"done":true}
`
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var contents []string
	for _, c := range chunks {
		if c.Content != "" {
			contents = append(contents, c.Content)
		}
	}
	if len(contents) != 2 || contents[0] != "before" || contents[1] != "after" {
		t.Errorf("contents = %v, want [before after]", contents)
	}
}

func TestStreamReaderDropsTrailingPartialLine(t *testing.T) {
	// Connection dropped mid-record: no trailing newline. The partial
	// record must be discarded, not parsed.
	input := `{"message":{"content":"complete"},"done":false}
{"message":{"content":"interrupted"},"done":fa`
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "complete" {
		t.Errorf("content = %q, want 'complete'", chunks[0].Content)
	}
}

func TestStreamReaderStopsAtTerminalRecord(t *testing.T) {
	// Data after done:true must never be read.
	input := `{"message":{"content":"answer"},"done":false}
{"done":true}
{"message":{"content":"never seen"},"done":false}
`
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if c.Content == "never seen" {
			t.Error("decoder read past the terminal record")
		}
	}
	if !chunks[len(chunks)-1].Done {
		t.Error("last delivered chunk should be terminal")
	}
}

func TestStreamReaderEmptyAndWhitespaceLines(t *testing.T) {
	input := "\n\n{\"message\":{\"content\":\"x\"},\"done\":false}\n   \n{\"done\":true}\n"
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
}

func TestStreamReaderContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	err := NewStreamReader(pr).Process(ctx, func(StreamChunk) {
		t.Error("callback should not fire after cancellation")
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStreamReaderEOFWithoutTerminal(t *testing.T) {
	// Stream ends cleanly but no done:true arrived. Not an error at this
	// layer; callers decide what an incomplete stream means.
	input := "{\"message\":{\"content\":\"partial answer\"},\"done\":false}\n"
	chunks, err := collect(t, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(chunks))
	}
}

func TestStreamStatsFinalize(t *testing.T) {
	stats := NewStreamStats()
	stats.RecordFirstToken()
	stats.Finalize(StreamChunk{
		Done:             true,
		EvalDuration:     2 * time.Second,
		CompletionTokens: 100,
	})

	if stats.TokensPerSecond != 50 {
		t.Errorf("tokens/s = %f, want 50", stats.TokensPerSecond)
	}
}

func TestStreamStatsFormat(t *testing.T) {
	stats := &StreamStats{
		TotalDuration:    1200 * time.Millisecond,
		CompletionTokens: 42,
		TokensPerSecond:  35.07,
		TTFT:             180 * time.Millisecond,
	}
	if got := stats.Format(); got != "1.2s | 42 tokens | 35.1 tok/s | TTFT 180ms" {
		t.Errorf("Format() = %q", got)
	}

	stats.TotalDuration = 450 * time.Millisecond
	if got := stats.Format(); got != "450ms | 42 tokens | 35.1 tok/s | TTFT 180ms" {
		t.Errorf("sub-second Format() = %q", got)
	}
}

func TestStreamAccumulator(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(StreamChunk{Content: "a"})
	acc.Add(StreamChunk{Content: "b"})
	acc.Add(StreamChunk{Done: true})

	if acc.GetContent() != "ab" {
		t.Errorf("content = %q, want ab", acc.GetContent())
	}
	if !acc.IsDone() {
		t.Error("accumulator should be done")
	}
	if acc.GetError() != nil {
		t.Errorf("unexpected error: %v", acc.GetError())
	}
}
