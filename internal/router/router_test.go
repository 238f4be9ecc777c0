// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/suji-tui/internal/local"
	"github.com/jeranaias/suji-tui/internal/model"
)

type fakeGemini struct {
	calls  int
	models []string
	out    string
	err    error
}

func (f *fakeGemini) GenerateResponse(ctx context.Context, history []model.Message, userMessage, language, modelID string, onStream func(string)) (string, error) {
	f.calls++
	f.models = append(f.models, modelID)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeOpenAI struct {
	calls  int
	models []string
	out    string
	err    error
}

func (f *fakeOpenAI) GenerateResponse(ctx context.Context, history []model.Message, userMessage, modelID, language string, onStream func(string)) (string, error) {
	f.calls++
	f.models = append(f.models, modelID)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeLocal struct {
	calls int
	langs []string
	out   string
	err   error
}

func (f *fakeLocal) GenerateResponse(ctx context.Context, history []model.Message, userMessage, language string, onProgress local.ProgressFunc, onStream func(string)) (string, error) {
	f.calls++
	f.langs = append(f.langs, language)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func settingsFor(p model.Provider, preferred string) model.UserSettings {
	s := model.DefaultSettings()
	s.Provider = p
	s.PreferredModel = preferred
	return s
}

func TestGeminiPrimarySuccess(t *testing.T) {
	g := &fakeGemini{out: "gemini says"}
	o := New(g, &fakeOpenAI{}, &fakeLocal{}, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGeminiPro), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini says", got)
	assert.Equal(t, []string{model.ModelGeminiPro}, g.models)
}

func TestGPTPrefixMakesOpenAIPrimary(t *testing.T) {
	g := &fakeGemini{out: "gemini"}
	oa := &fakeOpenAI{out: "openai says"}
	// Provider still says gemini, but the preferred model is a GPT model.
	o := New(g, oa, &fakeLocal{}, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGPT4Turbo), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai says", got)
	assert.Equal(t, 0, g.calls)
	assert.Equal(t, []string{model.ModelGPT4Turbo}, oa.models)
}

func TestFallbackGeminiToOpenAI(t *testing.T) {
	g := &fakeGemini{err: errors.New("quota")}
	oa := &fakeOpenAI{out: "backup answer"}
	o := New(g, oa, &fakeLocal{}, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGeminiFlash), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "backup answer", got)

	// The fallback runs the default GPT model, not the user's preference.
	assert.Equal(t, []string{model.ModelGPT35Turbo}, oa.models)
}

func TestFallbackOpenAIToGemini(t *testing.T) {
	oa := &fakeOpenAI{err: errors.New("401")}
	g := &fakeGemini{out: "backup answer"}
	o := New(g, oa, &fakeLocal{}, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderOpenAI, model.ModelGPT4Turbo), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "backup answer", got)
	assert.Equal(t, []string{model.ModelGeminiFlash}, g.models)
}

func TestNoFallbackWithoutKey(t *testing.T) {
	g := &fakeGemini{err: errors.New("quota")}
	oa := &fakeOpenAI{out: "should not run"}

	for _, openaiKey := range []string{"", "  ", `""`} {
		g.calls, oa.calls = 0, 0
		o := New(g, oa, &fakeLocal{}, WithKeys("gk", openaiKey))

		got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGeminiFlash), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, oa.calls, "key %q", openaiKey)
		assert.Contains(t, got, "System Alert")
		assert.Contains(t, got, "Primary System (Gemini)")
		assert.Contains(t, got, "Backup System (OpenAI)")
		assert.Contains(t, got, "Not configured or missing API key")
	}
}

func TestBothCloudBackendsFail(t *testing.T) {
	g := &fakeGemini{err: errors.New("down")}
	oa := &fakeOpenAI{err: errors.New("also down")}
	o := New(g, oa, &fakeLocal{}, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGeminiFlash), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, got, "System Alert")
	assert.Contains(t, got, "Gemini")
	assert.Contains(t, got, "OpenAI")
	assert.Contains(t, got, "Also unavailable")

	// Exactly one fallback hop.
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 1, oa.calls)
}

func TestLocalProviderNeverTouchesCloud(t *testing.T) {
	g := &fakeGemini{out: "cloud"}
	oa := &fakeOpenAI{out: "cloud"}
	l := &fakeLocal{out: "local answer"}
	o := New(g, oa, l, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderLocal, model.ModelLocalChat), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "local answer", got)
	assert.Equal(t, 0, g.calls)
	assert.Equal(t, 0, oa.calls)
}

func TestLocalFailureReturnsOfflineError(t *testing.T) {
	g := &fakeGemini{out: "cloud"}
	l := &fakeLocal{err: errors.New("Offline AI Init Failed: no GPU")}
	o := New(g, &fakeOpenAI{}, l, WithKeys("gk", "ok"))

	got, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderLocal, model.ModelLocalChat), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, got, "Offline Mode Error")
	assert.Contains(t, got, "Offline AI Init Failed: no GPU")

	// No cloud fallback from local.
	assert.Equal(t, 0, g.calls)
}

func TestContextCancellationPropagates(t *testing.T) {
	g := &fakeGemini{err: context.Canceled}
	o := New(g, &fakeOpenAI{out: "x"}, &fakeLocal{}, WithKeys("gk", "ok"))

	_, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderGemini, model.ModelGeminiFlash), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLanguageResolverApplied(t *testing.T) {
	l := &fakeLocal{out: "ok"}
	o := New(&fakeGemini{}, &fakeOpenAI{}, l, WithLanguageResolver(func(lang string) string {
		assert.Equal(t, "auto", lang)
		return "sv-SE"
	}))

	_, err := o.GenerateResponse(context.Background(), nil, "q", settingsFor(model.ProviderLocal, model.ModelLocalChat), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sv-SE"}, l.langs)
}

func TestHasKey(t *testing.T) {
	assert.True(t, hasKey("sk-abc"))
	assert.True(t, hasKey("  sk-abc  "))
	assert.False(t, hasKey(""))
	assert.False(t, hasKey("   "))
	assert.False(t, hasKey(`""`))
}
