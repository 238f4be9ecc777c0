// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/suji-tui/internal/model"
)

func sseBody(chunks ...string) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString("data: " + c + "\n\n")
	}
	return b.String()
}

func chunkJSON(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGenerateResponseStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(chunkJSON("Hello"), chunkJSON(" world")))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	var updates []string
	got, err := c.GenerateResponse(context.Background(), nil, "hi", "en-US", model.ModelGeminiFlash, func(s string) {
		updates = append(updates, s)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)

	// Callback receives cumulative text, not deltas.
	assert.Equal(t, []string{"Hello", "Hello world"}, updates)
}

func TestGenerateResponseEmptyStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.GenerateResponse(context.Background(), nil, "hi", "en-US", model.ModelGeminiFlash, nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyResponseText, got)
}

func TestGenerateResponseMissingKey(t *testing.T) {
	c := NewClient("   ")
	_, err := c.GenerateResponse(context.Background(), nil, "hi", "en-US", model.ModelGeminiFlash, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateResponseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateResponse(context.Background(), nil, "hi", "en-US", model.ModelGeminiFlash, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "quota exceeded", apiErr.Message)
}

func TestGenerateResponseSendsHistory(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(chunkJSON("ok")))
	}))
	defer srv.Close()

	history := []model.Message{
		model.NewUserMessage("first question"),
		model.NewModelMessage("first answer"),
	}

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateResponse(context.Background(), history, "followup", "fr-FR", model.ModelGeminiPro, nil)
	require.NoError(t, err)

	assert.Contains(t, gotBody, "first question")
	assert.Contains(t, gotBody, "first answer")
	assert.Contains(t, gotBody, "followup")
	assert.Contains(t, gotBody, `"model"`)
	assert.Contains(t, gotBody, "respond in the language code: fr-FR")
	assert.Contains(t, gotBody, `"maxOutputTokens":8192`)
}

func TestSSEReaderMultiLineData(t *testing.T) {
	r := NewSSEReader(strings.NewReader("data: a\ndata: b\n\ndata: c\n\n"))

	first, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(first))

	second, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "c", string(second))
}
