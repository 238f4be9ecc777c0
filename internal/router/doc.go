// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router orchestrates response generation across the three
// backends. It picks a primary from the user's settings, attempts at
// most one fallback hop between the two cloud backends, and never falls
// back from or to the local engine. Backend failures surface as
// presentable messages rather than errors; only context cancellation
// propagates as an error.
package router
