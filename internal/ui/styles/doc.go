// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the TUI.

This package defines the color palette and themed styles used throughout
the application. All colors use Lip Gloss AdaptiveColor for automatic
light/dark terminal adaptation.

# Color System (colors.go)

## Primary Accent Colors

  - Teal - Primary accent and brand color
  - Cyan - Info, commands, and user highlights
  - Emerald - Success states and the connected indicator
  - Amber - Warnings and in-progress states
  - Rose - Errors and failed cycles

## Semantic Colors

Message bubbles and UI elements use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

A Theme is built from a Preference (light, dark, or system):

	theme := styles.NewTheme(styles.ParsePreference(cfg.UI.Theme))
	if theme.IsDark {
		// Dark palette in effect
	}

PrefSystem detects the terminal background via termenv; explicit
preferences override detection.

# Usage Example

	import "github.com/jeranaias/multichat-tui/internal/ui/styles"

	theme := styles.NewTheme(styles.PrefSystem)
	header := theme.Header.Render("multichat")
*/
package styles
