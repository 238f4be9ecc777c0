// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core domain types shared by every suji
// package: chat messages, sessions, user settings, the provider enum and
// the model catalog.
//
// JSON field names use the camelCase document format of the existing
// web client so that session documents written by either client remain
// readable by the other.
package model
