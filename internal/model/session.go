// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/google/uuid"

// DefaultSessionTitle is the title given to a session before its first
// user message arrives.
const DefaultSessionTitle = "New Consultation"

// TitleMaxRunes is the length at which a derived session title is cut.
const TitleMaxRunes = 30

// ChatSession is one conversation thread. The session store owns the
// persisted copy; the conversation controller only ever holds a transient
// working copy.
type ChatSession struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   int64     `json:"createdAt"`
	LastUpdated int64     `json:"lastUpdated"`
}

// NewChatSession allocates an empty session with the default title.
func NewChatSession() ChatSession {
	now := NowMillis()
	return ChatSession{
		ID:          uuid.NewString(),
		Title:       DefaultSessionTitle,
		Messages:    []Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// DeriveTitle builds a session title from the first user message: the
// first TitleMaxRunes characters, with "..." appended only when the
// content is actually longer.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > TitleMaxRunes {
		return string(runes[:TitleMaxRunes]) + "..."
	}
	return content
}
