// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives one conversation: it holds a working copy of the
// active session, persists turns through the store, and streams model
// output into a placeholder message until the response is final.
package chat

import (
	"context"
	"fmt"

	"github.com/jeranaias/suji-tui/internal/local"
	"github.com/jeranaias/suji-tui/internal/model"
	"github.com/jeranaias/suji-tui/internal/prompt"
	"github.com/jeranaias/suji-tui/internal/store"
)

// Generator produces a reply for a conversation turn. Satisfied by
// router.Orchestrator.
type Generator interface {
	GenerateResponse(ctx context.Context, history []model.Message, userMessage string, settings model.UserSettings, onLocalProgress local.ProgressFunc, onStream func(string)) (string, error)
}

// Callbacks receive conversation events during Send. Any field may be
// nil.
type Callbacks struct {
	// OnUpdate fires whenever the working transcript changes, including
	// on every streaming update of the pending response.
	OnUpdate func(session model.ChatSession)
	// OnEmergency fires before sending when the user's input mentions an
	// emergency keyword. Sending proceeds regardless; the callback is
	// for showing urgent guidance alongside the reply.
	OnEmergency func()
	// OnLocalProgress receives engine initialization progress when the
	// local provider is selected.
	OnLocalProgress local.ProgressFunc
}

// Controller owns the working copy of the active session. The persisted
// copy in the store is only touched through SaveMessage, so a crashed or
// canceled turn never leaves a dangling placeholder on disk.
type Controller struct {
	store     *store.Store
	generator Generator
	session   model.ChatSession
	active    bool
}

// NewController creates a controller with no active session.
func NewController(st *store.Store, gen Generator) *Controller {
	return &Controller{store: st, generator: gen}
}

// Session returns the current working copy.
func (c *Controller) Session() model.ChatSession {
	return c.session
}

// Active reports whether a session is loaded.
func (c *Controller) Active() bool {
	return c.active
}

// StartNew creates and activates a fresh session.
func (c *Controller) StartNew(ctx context.Context) error {
	sess, err := c.store.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.session = sess
	c.active = true
	return nil
}

// Load activates an existing session.
func (c *Controller) Load(ctx context.Context, id string) error {
	sess, ok, err := c.store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	c.session = sess
	c.active = true
	return nil
}

// Send runs one conversation turn: persists the user message, streams
// the reply into a placeholder, and persists the final reply. The
// returned message is the finalized model turn. On context cancellation
// the placeholder is discarded and the error returned; the user message
// stays persisted.
func (c *Controller) Send(ctx context.Context, text string, cb Callbacks) (model.Message, error) {
	if !c.active {
		if err := c.StartNew(ctx); err != nil {
			return model.Message{}, err
		}
	}

	if prompt.ContainsEmergencyKeyword(text) && cb.OnEmergency != nil {
		cb.OnEmergency()
	}

	history := c.session.Messages

	userMsg := model.NewUserMessage(text)
	c.session.Messages = append(c.session.Messages, userMsg)
	if len(c.session.Messages) == 1 {
		c.session.Title = model.DeriveTitle(text)
	}
	c.notify(cb)

	if err := c.store.SaveMessage(ctx, c.session.ID, userMsg); err != nil {
		return model.Message{}, fmt.Errorf("failed to save message: %w", err)
	}

	settings := c.store.GetSettings()

	// Streaming placeholder. It lives only in the working copy until the
	// response is final.
	placeholder := model.NewModelMessage("")
	c.session.Messages = append(c.session.Messages, placeholder)
	placeholderIdx := len(c.session.Messages) - 1
	c.notify(cb)

	onStream := func(full string) {
		c.session.Messages[placeholderIdx].Content = full
		c.notify(cb)
	}

	reply, err := c.generator.GenerateResponse(ctx, history, text, settings, cb.OnLocalProgress, onStream)
	if err != nil {
		// Cancellation mid-stream: drop the placeholder, keep the user turn.
		c.session.Messages = c.session.Messages[:placeholderIdx]
		c.notify(cb)
		return model.Message{}, err
	}

	c.session.Messages[placeholderIdx].Content = reply
	c.session.LastUpdated = model.NowMillis()
	final := c.session.Messages[placeholderIdx]
	c.notify(cb)

	if err := c.store.SaveMessage(ctx, c.session.ID, final); err != nil {
		return model.Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	return final, nil
}

func (c *Controller) notify(cb Callbacks) {
	if cb.OnUpdate != nil {
		cb.OnUpdate(c.session)
	}
}
