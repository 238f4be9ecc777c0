// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package local runs the on-device text generation engine. It owns the
// model artifact cache, downloads missing artifacts from the hub with
// structured progress reporting, and drives a llama.cpp style inference
// server through the Runtime interface.
//
// The engine is a three-state machine: uninitialized, initializing and
// ready. Concurrent initialization requests do not race: callers that
// arrive while an initialization is in flight block until it resolves
// and share its outcome.
package local
