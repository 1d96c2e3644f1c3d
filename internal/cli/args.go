// args.go - Argument parsing for the multichat command line.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser handles the flag formats the command accepts:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments.
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if !strings.HasPrefix(arg, "-") {
			parser.positional = append(parser.positional, arg)
			i++
			continue
		}

		// --flag=value form
		if strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			name := strings.TrimLeft(parts[0], "-")
			if parts[1] == "true" || parts[1] == "false" {
				parser.boolFlags[name] = parts[1] == "true"
			} else {
				parser.flags[name] = parts[1]
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			parser.flags[name] = raw[i+1]
			i += 2
		} else {
			parser.boolFlags[name] = true
			i++
		}
	}

	return parser
}

// Flag returns the value of a string flag, or "" if absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or a default if not set.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// BoolFlag returns the value of a boolean flag, false if absent.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// HasFlag reports whether the flag was passed in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// =============================================================================
// COMMAND ARGUMENTS
// =============================================================================

// Args holds the parsed command line for the multichat binary.
type Args struct {
	Plain      bool   // Run the plain REPL instead of the TUI
	Model      string // Override the configured model
	Theme      string // Override the configured theme
	ConfigPath string // Alternate config file path
	Version    bool
	Help       bool
}

// ParseArgs parses os.Args[1:] into Args.
func ParseArgs(raw []string) Args {
	p := NewArgParser(raw)
	return Args{
		Plain:      p.BoolFlag("plain") || p.BoolFlag("p"),
		Model:      p.FlagOrDefault("model", p.Flag("m")),
		Theme:      p.Flag("theme"),
		ConfigPath: p.Flag("config"),
		Version:    p.BoolFlag("version") || p.BoolFlag("v"),
		Help:       p.BoolFlag("help") || p.BoolFlag("h"),
	}
}

// Usage is the help text for the multichat binary.
const Usage = `multichat - multi-conversation chat for local Ollama models

Usage:
  multichat [flags]

Flags:
  -plain           Run the plain line-based REPL instead of the TUI
  -m, -model NAME  Model to chat with (default from config)
  -theme NAME      Theme preference: light, dark, or system
  -config PATH     Alternate config file
  -v, -version     Print version and exit
  -h, -help        Show this help

Interactive REPL commands:
  /new             Create a conversation and switch to it
  /list            List conversations
  /switch N        Switch to conversation number N
  /delete [N]      Delete conversation (active if N omitted)
  /model [NAME]    Show or switch the model
  /help            Show commands
  /quit            Exit
`
