// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short question", DeriveTitle("short question"))

	exact := strings.Repeat("a", TitleMaxRunes)
	assert.Equal(t, exact, DeriveTitle(exact))

	long := strings.Repeat("a", TitleMaxRunes+1)
	got := DeriveTitle(long)
	assert.Equal(t, exact+"...", got)

	// Multibyte input must cut on rune boundaries.
	multibyte := strings.Repeat("日", TitleMaxRunes+5)
	got = DeriveTitle(multibyte)
	assert.Equal(t, strings.Repeat("日", TitleMaxRunes)+"...", got)
}

func TestNewChatSession(t *testing.T) {
	a := NewChatSession()
	b := NewChatSession()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, DefaultSessionTitle, a.Title)
	assert.NotNil(t, a.Messages)
	assert.Empty(t, a.Messages)
	assert.Equal(t, a.CreatedAt, a.LastUpdated)
	assert.Greater(t, a.CreatedAt, int64(0))
}

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hello")
	m := NewModelMessage("hi")

	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, RoleModel, m.Role)
	assert.NotEqual(t, u.ID, m.ID)
	assert.Equal(t, "hello", u.Content)
}

func TestSessionJSONFieldNames(t *testing.T) {
	s := NewChatSession()
	s.Messages = append(s.Messages, NewUserMessage("hi"))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"id", "title", "messages", "createdAt", "lastUpdated"} {
		assert.Contains(t, doc, key)
	}

	msgs := doc["messages"].([]any)
	msg := msgs[0].(map[string]any)
	for _, key := range []string{"id", "role", "content", "timestamp"} {
		assert.Contains(t, msg, key)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "auto", s.Language)
	assert.Equal(t, ThemeSystem, s.Theme)
	assert.Equal(t, ProviderGemini, s.Provider)
	assert.Equal(t, ModelGeminiFlash, s.PreferredModel)
	assert.False(t, s.UseVoiceOutput)
	assert.False(t, s.IsSeniorMode)
}

func TestSupportedLanguagesWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	foundDefault := false
	for _, lang := range SupportedLanguages {
		assert.NotEmpty(t, lang.Code)
		assert.NotEmpty(t, lang.Name)
		assert.False(t, seen[lang.Code], "duplicate code %s", lang.Code)
		seen[lang.Code] = true
		if lang.Code == DefaultLanguage {
			foundDefault = true
		}
	}
	assert.True(t, foundDefault)
}
