// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the application.
//
// # Key Functions
//
// String utilities:
//   - TruncateWidth: display-width safe truncation with ellipsis
//   - TruncateRunes: UTF-8 safe truncation by character count
//   - NormalizeInput: NFC normalization plus trimming for user input
//
// File operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	display := util.TruncateWidth(longTitle, 30)
//	text := util.NormalizeInput(rawInput)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
