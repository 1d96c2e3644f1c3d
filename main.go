// multichat - a terminal client for multi-conversation chat with a
// locally hosted Ollama model.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/multichat-tui/internal/cli"
	"github.com/jeranaias/multichat-tui/internal/config"
	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/prefs"
	"github.com/jeranaias/multichat-tui/internal/session"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/telemetry"
	"github.com/jeranaias/multichat-tui/internal/ui/chat"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := cli.ParseArgs(os.Args[1:])

	if args.Help {
		fmt.Print(cli.Usage)
		return 0
	}
	if args.Version {
		fmt.Printf("multichat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return 0
	}

	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: "+err.Error()+", using defaults")
		cfg = config.Default()
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}

	sink := openSink()

	// Persisted preferences win over the config file; flags win over both.
	themePref := cfg.UI.Theme
	var prefStore *prefs.Store
	if dir, err := config.ConfigDir(); err == nil {
		if ps, err := prefs.OpenDefault(dir); err == nil {
			prefStore = ps
			defer ps.Close()
			if args.Theme == "" {
				themePref = ps.GetDefault(prefs.KeyTheme, themePref)
			}
		}
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
	})
	st := store.New()
	sess := session.New(st, client, session.Config{Model: cfg.Ollama.Model}, sink)

	if args.Plain {
		return runPlain(st, sess, client)
	}
	return runTUI(st, sess, client, prefStore, themePref, cfgPath)
}

// loadConfig loads the config file, honoring the -config flag.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		return cfg, args.ConfigPath, err
	}
	path, _ := config.ConfigPath()
	if path != "" {
		// First run: seed the file so users have something to edit.
		if _, err := config.WriteDefaultIfMissing(path); err != nil {
			fmt.Fprintln(os.Stderr, "warning: could not write default config: "+err.Error())
		}
	}
	cfg, err := config.Load()
	return cfg, path, err
}

// openSink opens the telemetry log in the config directory. Chat apps
// own the terminal, so diagnostics go to a file instead of stderr.
func openSink() telemetry.Sink {
	dir, err := config.ConfigDir()
	if err != nil {
		return telemetry.NewNop()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return telemetry.NewNop()
	}
	f, err := os.OpenFile(filepath.Join(dir, "multichat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return telemetry.NewNop()
	}
	return telemetry.NewWriter(f, slog.LevelInfo)
}

// runPlain runs the line-based REPL. It fails fast when Ollama is down,
// unlike the TUI which shows the hint in its header.
func runPlain(st *store.Store, sess *session.Session, client *ollama.Client) int {
	ctx := context.Background()
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := client.CheckRunning(checkCtx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ollama is not running. Start it with: ollama serve")
		return 1
	}

	if err := cli.NewREPL(st, sess, client).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		return 1
	}
	return 0
}

// runTUI runs the full-screen interface with config hot reload.
func runTUI(st *store.Store, sess *session.Session, client *ollama.Client, ps *prefs.Store, themePref, cfgPath string) int {
	m := chat.New(st, sess, client, ps, styles.ParsePreference(themePref))
	p := chat.NewProgram(m)
	chat.BindStore(p, st)

	if cfgPath != "" {
		if w, err := config.NewWatcher(cfgPath, time.Second, chat.BindConfig(p)); err == nil {
			if err := w.Watch(); err == nil {
				defer w.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		return 1
	}
	return 0
}
