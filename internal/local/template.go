// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"fmt"
	"strings"

	"github.com/jeranaias/suji-tui/internal/model"
	"github.com/jeranaias/suji-tui/internal/prompt"
)

// historyWindow limits how many recent turns are templated in, to keep
// within the small model's context window.
const historyWindow = 3

// BuildPrompt renders the conversation into the TinyLlama chat template:
//
//	<|system|>\n{system}</s>\n<|user|>\n{user}</s>\n<|assistant|>\n
//
// Only the last historyWindow messages of history are included.
func BuildPrompt(history []model.Message, userMessage, language string) string {
	systemPrompt := fmt.Sprintf("%s\nKeep responses concise. Language: %s.", prompt.SystemInstruction, language)

	var b strings.Builder
	fmt.Fprintf(&b, "<|system|>\n%s</s>\n", systemPrompt)

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, msg := range recent {
		role := "user"
		if msg.Role == model.RoleModel {
			role = "assistant"
		}
		fmt.Fprintf(&b, "<|%s|>\n%s</s>\n", role, msg.Content)
	}

	fmt.Fprintf(&b, "<|user|>\n%s</s>\n<|assistant|>\n", userMessage)
	return b.String()
}
