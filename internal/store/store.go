// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"log"

	"github.com/jeranaias/suji-tui/internal/model"
)

// Store is the dual-backend session and settings facade. The zero value
// is not usable; construct with New.
type Store struct {
	local  *LocalStore
	remote *RemoteStore // nil when remote sync is disabled
}

// New creates a Store. remote may be nil to run fully on-device.
func New(local *LocalStore, remote *RemoteStore) *Store {
	return &Store{local: local, remote: remote}
}

// RemoteEnabled reports whether a remote backend is wired in.
func (s *Store) RemoteEnabled() bool {
	return s.remote != nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// GetSessions lists sessions most recent first. The remote copy is
// preferred when available; any remote failure falls back to local.
func (s *Store) GetSessions(ctx context.Context) ([]model.ChatSession, error) {
	if s.remote != nil {
		sessions, err := s.remote.Sessions(ctx)
		if err == nil {
			return sessions, nil
		}
		log.Printf("store: remote read failed, falling back to local: %v", err)
	}
	return s.local.Sessions()
}

// GetSession fetches one session, preferring the remote copy.
func (s *Store) GetSession(ctx context.Context, id string) (model.ChatSession, bool, error) {
	if s.remote != nil {
		sess, err := s.remote.Session(ctx, id)
		if err == nil {
			return sess, true, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			log.Printf("store: remote get failed, falling back to local: %v", err)
		}
	}
	return s.local.Session(id)
}

// CreateSession allocates a new empty session and persists it to both
// backends. The local write must succeed; the remote write is
// best-effort.
func (s *Store) CreateSession(ctx context.Context) (model.ChatSession, error) {
	sess := model.NewChatSession()

	if s.remote != nil {
		if err := s.remote.PutSession(ctx, sess); err != nil {
			log.Printf("store: remote create failed: %v", err)
		}
	}
	if err := s.local.InsertSession(sess); err != nil {
		return model.ChatSession{}, err
	}
	return sess, nil
}

// SaveMessage appends a message to a session in both backends. The local
// append runs first and is authoritative, including the title derivation
// for a session's first user message; the remote document is then
// updated to match, best-effort.
func (s *Store) SaveMessage(ctx context.Context, sessionID string, msg model.Message) error {
	updatedTitle, err := s.local.AppendMessage(sessionID, msg)
	if err != nil {
		return err
	}

	if s.remote == nil {
		return nil
	}

	sess, rerr := s.remote.Session(ctx, sessionID)
	if rerr != nil {
		if !errors.Is(rerr, ErrSessionNotFound) {
			log.Printf("store: remote update failed: %v", rerr)
		}
		return nil
	}

	sess.Messages = append(sess.Messages, msg)
	sess.LastUpdated = model.NowMillis()
	if updatedTitle != "" {
		sess.Title = updatedTitle
	}
	if rerr := s.remote.PutSession(ctx, sess); rerr != nil {
		log.Printf("store: remote update failed: %v", rerr)
	}
	return nil
}

// DeleteSession removes a session from both backends.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if s.remote != nil {
		if err := s.remote.DeleteSession(ctx, id); err != nil {
			log.Printf("store: remote delete failed: %v", err)
		}
	}
	return s.local.DeleteSession(id)
}

// DeleteAllSessions clears session history in both backends.
func (s *Store) DeleteAllSessions(ctx context.Context) error {
	if s.remote != nil {
		if err := s.remote.DeleteAllSessions(ctx); err != nil {
			log.Printf("store: remote delete all failed: %v", err)
		}
	}
	return s.local.DeleteAllSessions()
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings reads user settings from the local store.
func (s *Store) GetSettings() model.UserSettings {
	settings, err := s.local.Settings()
	if err != nil {
		log.Printf("store: settings read failed, using defaults: %v", err)
		return model.DefaultSettings()
	}
	return settings
}

// SaveSettings persists user settings synchronously.
func (s *Store) SaveSettings(settings model.UserSettings) error {
	return s.local.SaveSettings(settings)
}

// ClearAllLocalData removes every locally persisted file. The remote
// store is untouched; this is the "wipe this device" operation.
func (s *Store) ClearAllLocalData() error {
	return s.local.ClearAll()
}
