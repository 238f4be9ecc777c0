// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/suji-tui/internal/local"
	"github.com/jeranaias/suji-tui/internal/model"
)

// =============================================================================
// BACKEND INTERFACES
// =============================================================================

// GeminiBackend is the streaming cloud backend.
type GeminiBackend interface {
	GenerateResponse(ctx context.Context, history []model.Message, userMessage, language, modelID string, onStream func(string)) (string, error)
}

// OpenAIBackend is the single-shot cloud backend.
type OpenAIBackend interface {
	GenerateResponse(ctx context.Context, history []model.Message, userMessage, modelID, language string, onStream func(string)) (string, error)
}

// LocalBackend is the on-device engine.
type LocalBackend interface {
	GenerateResponse(ctx context.Context, history []model.Message, userMessage, language string, onProgress local.ProgressFunc, onStream func(string)) (string, error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator routes generation requests and applies the fallback
// policy. The API keys are held here, not in the adapters, because the
// fallback decision needs to know whether the other cloud backend is
// even configured before trying it.
type Orchestrator struct {
	gemini GeminiBackend
	openai OpenAIBackend
	local  LocalBackend

	geminiKey string
	openaiKey string

	resolveLanguage func(string) string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithKeys sets the cloud API keys used for fallback availability checks.
func WithKeys(geminiKey, openaiKey string) Option {
	return func(o *Orchestrator) {
		o.geminiKey = geminiKey
		o.openaiKey = openaiKey
	}
}

// WithLanguageResolver sets the function that maps a settings language
// value (possibly "auto") to a concrete BCP-47 code.
func WithLanguageResolver(fn func(string) string) Option {
	return func(o *Orchestrator) {
		o.resolveLanguage = fn
	}
}

// New creates an Orchestrator over the three backends. Any backend may
// be nil if the corresponding provider is never selected; selecting a
// nil backend yields the unavailability diagnostics.
func New(gemini GeminiBackend, openai OpenAIBackend, localEngine LocalBackend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gemini:          gemini,
		openai:          openai,
		local:           localEngine,
		resolveLanguage: func(lang string) string { return lang },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// hasKey reports whether a configured key looks usable: non-empty after
// trimming and not a literal pair of quotes left by a misconfigured env
// file.
func hasKey(key string) bool {
	trimmed := strings.TrimSpace(key)
	return trimmed != "" && trimmed != `""`
}

// =============================================================================
// ROUTING
// =============================================================================

// backendName identifies a cloud backend in logs and diagnostics.
type backendName string

const (
	nameGemini backendName = "Gemini"
	nameOpenAI backendName = "OpenAI"
)

// attemptFunc runs one backend attempt with all arguments bound.
type attemptFunc func(ctx context.Context) (string, error)

// GenerateResponse produces a reply using the provider selected in
// settings. Local requests never touch the network and never fall back;
// a local failure comes back as an offline error message. Cloud requests
// get at most one fallback hop to the other cloud backend, and only
// when that backend has a key configured. When both cloud attempts fail
// the returned text is a diagnostic message, not an error. The only
// error this method returns is context cancellation.
func (o *Orchestrator) GenerateResponse(ctx context.Context, history []model.Message, userMessage string, settings model.UserSettings, onLocalProgress local.ProgressFunc, onStream func(string)) (string, error) {
	language := o.resolveLanguage(settings.Language)

	if settings.Provider == model.ProviderLocal {
		return o.generateLocal(ctx, history, userMessage, language, onLocalProgress, onStream)
	}

	primary, fallback := o.cloudPlan(settings, history, userMessage, language, onStream)

	text, err := primary.fn(ctx)
	if err == nil {
		return text, nil
	}
	if isContextError(err) {
		return "", err
	}
	log.Printf("router: primary backend (%s) failed: %v", primary.name, err)

	canFallback := hasKey(o.keyFor(fallback.name))
	if canFallback {
		log.Printf("router: attempting fallback to %s", fallback.name)
		text, ferr := fallback.fn(ctx)
		if ferr == nil {
			return text, nil
		}
		if isContextError(ferr) {
			return "", ferr
		}
		log.Printf("router: fallback backend (%s) also failed: %v", fallback.name, ferr)
	} else {
		log.Printf("router: cannot fall back to %s: missing API key or configuration", fallback.name)
	}

	return systemAlert(primary.name, fallback.name, canFallback), nil
}

// cloudAttempt pairs a backend name with its bound attempt.
type cloudAttempt struct {
	name backendName
	fn   attemptFunc
}

// cloudPlan decides which cloud backend is primary. OpenAI is primary
// when the provider says so or when the preferred model is a GPT model;
// Gemini is primary otherwise. The fallback always runs the other
// backend's default model, not the user's preferred one.
func (o *Orchestrator) cloudPlan(settings model.UserSettings, history []model.Message, userMessage, language string, onStream func(string)) (primary, fallback cloudAttempt) {
	geminiAttempt := func(modelID string) cloudAttempt {
		return cloudAttempt{
			name: nameGemini,
			fn: func(ctx context.Context) (string, error) {
				if o.gemini == nil {
					return "", errors.New("gemini backend not configured")
				}
				return o.gemini.GenerateResponse(ctx, history, userMessage, language, modelID, onStream)
			},
		}
	}
	openaiAttempt := func(modelID string) cloudAttempt {
		return cloudAttempt{
			name: nameOpenAI,
			fn: func(ctx context.Context) (string, error) {
				if o.openai == nil {
					return "", errors.New("openai backend not configured")
				}
				return o.openai.GenerateResponse(ctx, history, userMessage, modelID, language, onStream)
			},
		}
	}

	openAIPrimary := settings.Provider == model.ProviderOpenAI || strings.HasPrefix(settings.PreferredModel, "gpt")
	if openAIPrimary {
		return openaiAttempt(settings.PreferredModel), geminiAttempt(model.ModelGeminiFlash)
	}
	return geminiAttempt(settings.PreferredModel), openaiAttempt(model.ModelGPT35Turbo)
}

func (o *Orchestrator) keyFor(name backendName) string {
	if name == nameGemini {
		return o.geminiKey
	}
	return o.openaiKey
}

// generateLocal runs the on-device engine. Engine failures are turned
// into an offline error message so the conversation keeps a usable
// transcript instead of a dropped turn.
func (o *Orchestrator) generateLocal(ctx context.Context, history []model.Message, userMessage, language string, onProgress local.ProgressFunc, onStream func(string)) (string, error) {
	if o.local == nil {
		return offlineErrorText("offline engine not configured"), nil
	}

	text, err := o.local.GenerateResponse(ctx, history, userMessage, language, onProgress, onStream)
	if err == nil {
		return text, nil
	}
	if isContextError(err) {
		return "", err
	}
	log.Printf("router: local engine failed: %v", err)
	return offlineErrorText(err.Error()), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// =============================================================================
// FAILURE MESSAGES
// =============================================================================

func offlineErrorText(detail string) string {
	return fmt.Sprintf("⚠️ **Offline Mode Error:** \n%s\n\nPlease ensure your device supports GPU inference or switch back to Cloud Mode in settings.", detail)
}

func systemAlert(primary, fallback backendName, fallbackTried bool) string {
	backupStatus := "Not configured or missing API key"
	if fallbackTried {
		backupStatus = "Also unavailable"
	}
	return fmt.Sprintf(`⚠️ **System Alert:** I am currently unable to connect to the medical knowledge base.

**Diagnostics:**
- **Primary System (%s):** Encountered an error.
- **Backup System (%s):** %s.

Please check your internet connection or switch to **Offline Mode** in settings to use the on-device AI.`, primary, fallback, backupStatus)
}
