// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini is the streaming adapter for the Gemini generateContent
// API. Credentials are checked lazily: a client can be constructed
// without a key and fails only when asked to generate.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/suji-tui/internal/model"
	"github.com/jeranaias/suji-tui/internal/prompt"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

// DefaultBaseURL is the Gemini API endpoint prefix.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// EmptyResponseText is returned in place of a response when the stream
// completes without producing any text.
const EmptyResponseText = "I apologize, I could not generate a response at this time."

// Generation parameters. Temperature is kept low for factual consistency;
// the token ceiling is the maximum the API supports for long-form answers.
const (
	temperature     = 0.4
	maxOutputTokens = 8192
)

// ErrNotConfigured is returned when a generation is attempted without an
// API key.
var ErrNotConfigured = errors.New("gemini API key not configured")

// APIError is a non-2xx response from the Gemini API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%d): %s", e.Status, e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Gemini streaming endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Gemini client. An empty key is allowed here; the
// failure surfaces on the first GenerateResponse call.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction content          `json:"systemInstruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateChunk struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *generateChunk) text() string {
	var b strings.Builder
	for _, cand := range c.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateResponse sends the conversation to the streaming endpoint and
// accumulates the chunks. onStream, when non-nil, is invoked with the
// cumulative text after every chunk that carried content. The final text
// is returned; an exhausted stream with no text yields EmptyResponseText
// without error.
func (c *Client) GenerateResponse(ctx context.Context, history []model.Message, userMessage, language, modelID string, onStream func(string)) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrNotConfigured
	}

	systemInstruction := prompt.SystemInstruction +
		fmt.Sprintf("\n\n**IMPORTANT:** Please respond in the language code: %s.", language)

	contents := make([]content, 0, len(history)+1)
	for _, msg := range history {
		role := "user"
		if msg.Role == model.RoleModel {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []contentPart{{Text: msg.Content}},
		})
	}
	contents = append(contents, content{
		Role:  "user",
		Parts: []contentPart{{Text: userMessage}},
	})

	reqBody := generateRequest{
		Contents:          contents,
		SystemInstruction: content{Parts: []contentPart{{Text: systemInstruction}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", c.errorFromResponse(resp.StatusCode, body)
	}

	fullText, err := c.processStream(ctx, resp.Body, onStream)
	if err != nil {
		return "", err
	}
	if fullText == "" {
		return EmptyResponseText, nil
	}
	return fullText, nil
}

// processStream reads SSE events until EOF, accumulating candidate text.
func (c *Client) processStream(ctx context.Context, body io.Reader, onStream func(string)) (string, error) {
	reader := NewSSEReader(body)
	var full strings.Builder

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return full.String(), nil
			}
			return "", err
		}

		var chunk generateChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks
			continue
		}

		if text := chunk.text(); text != "" {
			full.WriteString(text)
			if onStream != nil {
				onStream(full.String())
			}
		}
	}
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &APIError{Status: status, Message: parsed.Error.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
