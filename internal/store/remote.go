// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jeranaias/suji-tui/internal/model"
)

const (
	sessionKeyPrefix = "suji:session:"
	sessionIndexKey  = "suji:sessions:by-updated"
)

// ErrSessionNotFound is returned by RemoteStore.Session for unknown IDs.
var ErrSessionNotFound = errors.New("session not found")

// RemoteStore keeps session documents in Redis. Each session is one JSON
// value under its own key, with a sorted set indexing IDs by lastUpdated
// so listing most-recent-first is a single range read.
type RemoteStore struct {
	client *redis.Client
}

// NewRemoteStore connects a remote store to addr. The connection is not
// probed here; the facade treats every remote failure as non-fatal.
func NewRemoteStore(addr, password string, db int) *RemoteStore {
	return &RemoteStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewRemoteStoreWithClient wraps an existing client, mainly for tests.
func NewRemoteStoreWithClient(client *redis.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

// Close releases the underlying connection pool.
func (r *RemoteStore) Close() error {
	return r.client.Close()
}

// Ping checks connectivity.
func (r *RemoteStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Sessions returns every stored session, most recent first.
func (r *RemoteStore) Sessions(ctx context.Context) ([]model.ChatSession, error) {
	ids, err := r.client.ZRevRange(ctx, sessionIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}
	if len(ids) == 0 {
		return []model.ChatSession{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	sessions := make([]model.ChatSession, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry whose document expired or was deleted out of band.
			continue
		}
		var sess model.ChatSession
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Session returns one session by ID.
func (r *RemoteStore) Session(ctx context.Context, id string) (model.ChatSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ChatSession{}, ErrSessionNotFound
		}
		return model.ChatSession{}, fmt.Errorf("failed to read session: %w", err)
	}

	var sess model.ChatSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return model.ChatSession{}, fmt.Errorf("failed to parse session: %w", err)
	}
	return sess, nil
}

// PutSession writes the full session document and refreshes its index
// position.
func (r *RemoteStore) PutSession(ctx context.Context, sess model.ChatSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, 0)
	pipe.ZAdd(ctx, sessionIndexKey, redis.Z{
		Score:  float64(sess.LastUpdated),
		Member: sess.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// DeleteSession removes one session document and its index entry.
func (r *RemoteStore) DeleteSession(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.ZRem(ctx, sessionIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAllSessions removes every session document and the index.
func (r *RemoteStore) DeleteAllSessions(ctx context.Context) error {
	ids, err := r.client.ZRange(ctx, sessionIndexKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read session index: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, sessionIndexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
