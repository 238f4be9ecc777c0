// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/suji-tui/internal/model"
)

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalSessionsEmpty(t *testing.T) {
	s := newLocal(t)
	sessions, err := s.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLocalInsertAndGet(t *testing.T) {
	s := newLocal(t)

	first := model.NewChatSession()
	second := model.NewChatSession()
	require.NoError(t, s.InsertSession(first))
	require.NoError(t, s.InsertSession(second))

	sessions, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Newest insert comes first.
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)

	got, ok, err := s.Session(first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	_, ok, err = s.Session("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendMessageDerivesTitle(t *testing.T) {
	s := newLocal(t)
	sess := model.NewChatSession()
	require.NoError(t, s.InsertSession(sess))

	long := strings.Repeat("y", model.TitleMaxRunes+10)
	title, err := s.AppendMessage(sess.ID, model.NewUserMessage(long))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("y", model.TitleMaxRunes)+"...", title)

	got, ok, err := s.Session(sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, title, got.Title)
	assert.Len(t, got.Messages, 1)
	assert.GreaterOrEqual(t, got.LastUpdated, sess.LastUpdated)
}

func TestAppendMessageTitleOnlyOnFirstUserMessage(t *testing.T) {
	s := newLocal(t)
	sess := model.NewChatSession()
	require.NoError(t, s.InsertSession(sess))

	title, err := s.AppendMessage(sess.ID, model.NewUserMessage("short"))
	require.NoError(t, err)
	// No ellipsis when content fits.
	assert.Equal(t, "short", title)

	title, err = s.AppendMessage(sess.ID, model.NewModelMessage("reply"))
	require.NoError(t, err)
	assert.Empty(t, title)

	got, _, err := s.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "short", got.Title)
	assert.Len(t, got.Messages, 2)
}

func TestAppendMessageModelFirstKeepsDefaultTitle(t *testing.T) {
	s := newLocal(t)
	sess := model.NewChatSession()
	require.NoError(t, s.InsertSession(sess))

	title, err := s.AppendMessage(sess.ID, model.NewModelMessage("greeting"))
	require.NoError(t, err)
	assert.Empty(t, title)

	got, _, err := s.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSessionTitle, got.Title)
}

func TestAppendMessageUnknownSessionNoop(t *testing.T) {
	s := newLocal(t)
	title, err := s.AppendMessage("missing", model.NewUserMessage("hi"))
	require.NoError(t, err)
	assert.Empty(t, title)
}

func TestDeleteSession(t *testing.T) {
	s := newLocal(t)
	a := model.NewChatSession()
	b := model.NewChatSession()
	require.NoError(t, s.InsertSession(a))
	require.NoError(t, s.InsertSession(b))

	require.NoError(t, s.DeleteSession(a.ID))

	sessions, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, b.ID, sessions[0].ID)
}

func TestDeleteAllSessions(t *testing.T) {
	s := newLocal(t)
	require.NoError(t, s.InsertSession(model.NewChatSession()))
	require.NoError(t, s.DeleteAllSessions())

	sessions, err := s.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Deleting again is fine.
	require.NoError(t, s.DeleteAllSessions())
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newLocal(t)

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)

	settings.Provider = model.ProviderOpenAI
	settings.PreferredModel = model.ModelGPT4Turbo
	settings.IsSeniorMode = true
	require.NoError(t, s.SaveSettings(settings))

	got, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestSettingsMergeOverDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	// A legacy blob missing fields added later.
	legacy := `{"language":"ta-IN","provider":"local"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte(legacy), 0o644))

	got, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, "ta-IN", got.Language)
	assert.Equal(t, model.ProviderLocal, got.Provider)
	// Absent fields keep their defaults.
	assert.Equal(t, model.ThemeSystem, got.Theme)
	assert.Equal(t, model.ModelGeminiFlash, got.PreferredModel)
}

func TestClearAll(t *testing.T) {
	s := newLocal(t)
	require.NoError(t, s.InsertSession(model.NewChatSession()))
	require.NoError(t, s.SaveSettings(model.DefaultSettings()))

	require.NoError(t, s.ClearAll())

	sessions, err := s.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}
