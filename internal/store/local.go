// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/suji-tui/internal/model"
	"github.com/jeranaias/suji-tui/internal/util"
)

const (
	sessionsFile = "sessions.json"
	settingsFile = "settings.json"
)

// LocalStore is the on-device ground truth. Sessions are kept
// most-recent-first in a single JSON document; every mutation rewrites
// the file atomically so a crash can never leave it half-written.
type LocalStore struct {
	mu  sync.Mutex
	dir string
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) sessionsPath() string { return filepath.Join(s.dir, sessionsFile) }
func (s *LocalStore) settingsPath() string { return filepath.Join(s.dir, settingsFile) }

// =============================================================================
// SESSIONS
// =============================================================================

// loadSessions reads the session list. A missing file is an empty list.
func (s *LocalStore) loadSessions() ([]model.ChatSession, error) {
	data, err := os.ReadFile(s.sessionsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ChatSession{}, nil
		}
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var sessions []model.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	return sessions, nil
}

func (s *LocalStore) writeSessions(sessions []model.ChatSession) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := util.AtomicWriteFile(s.sessionsPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

// Sessions returns every stored session, most recent first.
func (s *LocalStore) Sessions() ([]model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSessions()
}

// Session returns one session by ID, or false when absent.
func (s *LocalStore) Session(id string) (model.ChatSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions()
	if err != nil {
		return model.ChatSession{}, false, err
	}
	for _, sess := range sessions {
		if sess.ID == id {
			return sess, true, nil
		}
	}
	return model.ChatSession{}, false, nil
}

// InsertSession prepends a new session to the list.
func (s *LocalStore) InsertSession(sess model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions()
	if err != nil {
		return err
	}
	sessions = append([]model.ChatSession{sess}, sessions...)
	return s.writeSessions(sessions)
}

// AppendMessage appends a message to the named session, bumping its
// lastUpdated. When the appended message is the session's very first
// and comes from the user, the session title is derived from it; the
// derived title is returned so the remote copy can apply the same one.
// Appending to an unknown session is a no-op.
func (s *LocalStore) AppendMessage(sessionID string, msg model.Message) (updatedTitle string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions()
	if err != nil {
		return "", err
	}

	for i := range sessions {
		if sessions[i].ID != sessionID {
			continue
		}
		sessions[i].Messages = append(sessions[i].Messages, msg)
		sessions[i].LastUpdated = model.NowMillis()

		if len(sessions[i].Messages) == 1 && msg.Role == model.RoleUser {
			updatedTitle = model.DeriveTitle(msg.Content)
			sessions[i].Title = updatedTitle
		}
		return updatedTitle, s.writeSessions(sessions)
	}
	return "", nil
}

// DeleteSession removes one session. Unknown IDs are a no-op.
func (s *LocalStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions()
	if err != nil {
		return err
	}
	filtered := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			filtered = append(filtered, sess)
		}
	}
	return s.writeSessions(filtered)
}

// DeleteAllSessions removes the session file entirely.
func (s *LocalStore) DeleteAllSessions() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings reads the persisted settings merged over the defaults, so
// fields added after the blob was written keep their default values
// instead of zeroing out.
func (s *LocalStore) Settings() (model.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := model.DefaultSettings()

	data, err := os.ReadFile(s.settingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes settings synchronously.
func (s *LocalStore) SaveSettings(settings model.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(s.settingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ClearAll removes sessions and settings.
func (s *LocalStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.sessionsPath(), s.settingsPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
