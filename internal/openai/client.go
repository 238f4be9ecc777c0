// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai is the single-shot adapter for the OpenAI chat
// completions API. Unlike the gemini adapter it checks its credential
// eagerly, before any network activity, so the orchestrator can tell a
// missing key apart from a transport failure.
package openai

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

// DefaultBaseURL is the OpenAI API endpoint prefix.
const DefaultBaseURL = "https://api.openai.com"

// EmptyResponseText is substituted when the API returns a completion
// with no content.
const EmptyResponseText = "No response generated."

const (
	temperature = 0.4
	maxTokens   = 1000
)

// ErrKeyMissing is returned when a generation is attempted without a
// usable API key.
var ErrKeyMissing = errors.New("OpenAI API Key is missing or invalid")

// APIError is a non-2xx response from the OpenAI API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAI API Error (%d): %s", e.Status, e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat completions endpoint.
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

// NewClient creates an OpenAI client. The key is stored as given; it is
// validated per call so a key configured after startup takes effect.
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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateResponse performs a non-streaming completion. To keep the
// caller's streaming contract uniform across adapters, onStream is
// invoked exactly once with the full text just before returning.
func (c *Client) GenerateResponse(ctx context.Context, history []model.Message, userMessage, modelID, language string, onStream func(string)) (string, error) {
	key := strings.TrimSpace(c.apiKey)
	if key == "" || key == `""` {
		return "", ErrKeyMissing
	}

	systemInstruction := prompt.SystemInstruction +
		fmt.Sprintf("\n\n**IMPORTANT:** Respond in language: %s.", language)

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemInstruction})
	for _, msg := range history {
		role := "user"
		if msg.Role == model.RoleModel {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	reqBody := chatRequest{
		Model:       modelID,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromResponse(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := EmptyResponseText
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		text = parsed.Choices[0].Message.Content
	}

	if onStream != nil {
		onStream(text)
	}
	return text, nil
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &APIError{Status: status, Message: parsed.Error.Message}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}
