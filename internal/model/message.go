// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

// The two roles a persisted message can carry. Cloud adapters map
// RoleModel to their own vocabulary ("assistant" for OpenAI-style APIs).
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single chat turn. Messages are immutable once persisted;
// a streaming response is represented by repeatedly replacing Content on
// an in-memory copy until it is finalized.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: NowMillis(),
	}
}

// NewModelMessage creates a model message stamped with the current time.
func NewModelMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Content:   content,
		Timestamp: NowMillis(),
	}
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit used throughout the session documents.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
