// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/suji-tui/internal/model"
)

// EmptyResponseText is returned when generation completes without
// producing any text.
const EmptyResponseText = "I couldn't generate a response."

type engineState int

const (
	stateUninitialized engineState = iota
	stateInitializing
	stateReady
)

// Engine is the on-device generation engine.
type Engine struct {
	mu      sync.Mutex
	state   engineState
	waiters []chan error

	modelID    string
	cache      *ModelCache
	downloader *Downloader
	runtime    Runtime
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithModelID selects the model to install and run.
func WithModelID(id string) EngineOption {
	return func(e *Engine) {
		e.modelID = id
	}
}

// WithRuntime overrides the inference runtime, mainly for tests.
func WithRuntime(r Runtime) EngineOption {
	return func(e *Engine) {
		e.runtime = r
	}
}

// WithDownloader overrides the artifact downloader.
func WithDownloader(d *Downloader) EngineOption {
	return func(e *Engine) {
		e.downloader = d
	}
}

// NewEngine creates an engine whose artifact cache lives under cacheDir.
// Nothing is downloaded or started until the first initialization.
func NewEngine(cacheDir string, opts ...EngineOption) *Engine {
	e := &Engine{
		modelID:    DefaultModelID,
		downloader: NewDownloader(),
		runtime:    NewServerRuntime(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = NewModelCache(cacheDir, e.modelID)
	return e
}

// Cache exposes the engine's model cache for install state queries.
func (e *Engine) Cache() *ModelCache {
	return e.cache
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Initialize brings the engine to the ready state: downloads any missing
// artifacts and starts the runtime. It is idempotent. When another
// initialization is already in flight the call blocks until that attempt
// resolves and returns its outcome, so no second download or runtime
// start can race the first.
func (e *Engine) Initialize(ctx context.Context, onProgress ProgressFunc) error {
	e.mu.Lock()
	switch e.state {
	case stateReady:
		e.mu.Unlock()
		return nil
	case stateInitializing:
		ch := make(chan error, 1)
		e.waiters = append(e.waiters, ch)
		e.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.state = stateInitializing
	e.mu.Unlock()

	err := e.doInitialize(ctx, onProgress)

	e.mu.Lock()
	if err == nil {
		e.state = stateReady
	} else {
		e.state = stateUninitialized
	}
	waiters := e.waiters
	e.waiters = nil
	e.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
	return err
}

func (e *Engine) doInitialize(ctx context.Context, onProgress ProgressFunc) error {
	log.Printf("local: initializing engine for %s", e.modelID)
	onProgress.emit(ProgressEvent{Stage: StageInitiate, File: "offline engine"})

	if err := e.downloader.Fetch(ctx, e.cache, onProgress); err != nil {
		return initError(err)
	}
	if err := e.runtime.Start(ctx, e.cache.WeightsPath()); err != nil {
		return initError(err)
	}

	log.Printf("local: engine ready")
	return nil
}

// initError normalizes runtime failures into a user-presentable message.
// GPU allocation failures get a specific hint.
func initError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "createBuffer") {
		msg = "GPU memory buffer failed. Try closing other tabs."
	}
	return fmt.Errorf("Offline AI Init Failed: %s", msg)
}

// Close shuts down the runtime. The engine can be initialized again
// afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = stateUninitialized
	return e.runtime.Close()
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateResponse produces a reply fully on-device. The engine is
// initialized on demand, with progress surfaced through onProgress.
// onStream is invoked once with the complete text; the local runtime
// does not stream partial output.
func (e *Engine) GenerateResponse(ctx context.Context, history []model.Message, userMessage, language string, onProgress ProgressFunc, onStream func(string)) (string, error) {
	if err := e.Initialize(ctx, onProgress); err != nil {
		return "", err
	}

	fullPrompt := BuildPrompt(history, userMessage, language)

	out, err := e.runtime.Generate(ctx, fullPrompt, defaultSampling)
	if err != nil {
		log.Printf("local: generation failed: %v", err)
		return "", fmt.Errorf("local processing failed: %s", safeErrorString(err))
	}

	if onStream != nil {
		onStream(out)
	}
	if out == "" {
		return EmptyResponseText, nil
	}
	return out, nil
}

// safeErrorString serializes an error for inclusion in a wrapped message.
// Errors from the runtime can carry odd payloads, so marshaling is
// guarded and falls back to plain formatting.
func safeErrorString(err error) (s string) {
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("%v", err)
		}
	}()

	data, merr := json.Marshal(err.Error())
	if merr != nil {
		return fmt.Sprintf("%v", err)
	}
	return string(data)
}
