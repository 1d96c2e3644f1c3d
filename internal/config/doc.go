// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management.
//
// TOML configuration with sensible defaults, environment variable
// overrides, and validation. Saves are atomic; an optional fsnotify
// watcher reloads the file on external edits.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MULTICHAT_*)
//   - ~/.multichat/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Ollama.URL
//	model := cfg.Ollama.Model
package config
