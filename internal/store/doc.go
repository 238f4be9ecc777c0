// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists chat sessions and user settings. It is a facade
// over two backends: an on-device JSON file store that is the ground
// truth and always written synchronously, and an optional remote Redis
// document store that is written best-effort and consulted first on
// reads. A remote failure is logged and the read falls back to the
// local copy; it never surfaces to the caller.
//
// Settings are local-only. They are small, read on every send, and have
// no sharing story, so the remote round trip would buy nothing.
package store
