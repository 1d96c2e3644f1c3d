// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"testing"

	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/session"
	"github.com/jeranaias/multichat-tui/internal/store"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want Args
	}{
		{
			name: "empty",
			raw:  nil,
			want: Args{},
		},
		{
			name: "plain with model",
			raw:  []string{"-plain", "-model", "qwen2.5:7b"},
			want: Args{Plain: true, Model: "qwen2.5:7b"},
		},
		{
			name: "short model flag",
			raw:  []string{"-m", "llama3.2"},
			want: Args{Model: "llama3.2"},
		},
		{
			name: "equals form",
			raw:  []string{"--theme=dark", "--config=/tmp/c.toml"},
			want: Args{Theme: "dark", ConfigPath: "/tmp/c.toml"},
		},
		{
			name: "version and help",
			raw:  []string{"-v", "-h"},
			want: Args{Version: true, Help: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseArgs(tt.raw); got != tt.want {
				t.Errorf("ParseArgs(%v) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestArgParserFormats(t *testing.T) {
	p := NewArgParser([]string{"pos1", "--key", "value", "--flag", "--n=3", "--on=true"})
	if p.Positional(0) != "pos1" {
		t.Errorf("positional = %q", p.Positional(0))
	}
	if p.Flag("key") != "value" {
		t.Errorf("flag key = %q", p.Flag("key"))
	}
	if !p.BoolFlag("flag") {
		t.Error("bare flag should be boolean true")
	}
	if p.Flag("n") != "3" {
		t.Errorf("flag n = %q", p.Flag("n"))
	}
	if !p.BoolFlag("on") {
		t.Error("--on=true should parse as boolean")
	}
	if !p.HasFlag("key") || p.HasFlag("missing") {
		t.Error("HasFlag mismatch")
	}
}

func newTestREPL(t *testing.T) (*REPL, *store.Store) {
	t.Helper()
	st := store.New()
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: "http://127.0.0.1:1"})
	sess := session.New(st, client, session.Config{Model: "llama3.2"}, nil)
	return &REPL{store: st, session: sess, client: client}, st
}

func TestSlashCommandSwitchAndDelete(t *testing.T) {
	r, st := newTestREPL(t)
	st.Create() // Chat 1 (ends up at index 1)
	st.Create() // Chat 2 (index 0, active)

	if err := r.switchTo("2"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	convs := st.Conversations()
	if st.ActiveID() != convs[1].ID {
		t.Error("switch 2 should activate the second listed conversation")
	}

	if err := r.switchTo("9"); err == nil {
		t.Error("out-of-range switch should error")
	}

	if err := r.deleteConversation("1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d conversations, want 1", st.Len())
	}
}

func TestSlashCommandQuit(t *testing.T) {
	r, _ := newTestREPL(t)
	for _, cmd := range []string{"/quit", "/q", "/exit"} {
		quit, err := r.handleSlashCommand(context.Background(), cmd)
		if err != nil || !quit {
			t.Errorf("%s: quit=%v err=%v", cmd, quit, err)
		}
	}
}

func TestSlashCommandUnknown(t *testing.T) {
	r, _ := newTestREPL(t)
	quit, err := r.handleSlashCommand(context.Background(), "/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if err == nil {
		t.Error("unknown command should error")
	}
}

func TestDeleteWithEmptyStore(t *testing.T) {
	r, _ := newTestREPL(t)
	if err := r.deleteConversation(""); err == nil {
		t.Error("delete with no conversations should error")
	}
}
