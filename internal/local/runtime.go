// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"time"
)

// SamplingParams control one generation request.
type SamplingParams struct {
	MaxNewTokens int
	Temperature  float64
	TopK         int
	Sample       bool
}

// defaultSampling keeps the small model's answers short and a little
// creative.
var defaultSampling = SamplingParams{
	MaxNewTokens: 300,
	Temperature:  0.7,
	TopK:         40,
	Sample:       true,
}

// Runtime abstracts the inference backend so the engine can be tested
// without a model on disk.
type Runtime interface {
	// Start makes the runtime ready to serve Generate calls for the
	// model at modelPath.
	Start(ctx context.Context, modelPath string) error
	// Generate produces a completion for the templated prompt.
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	// Close releases the runtime's resources.
	Close() error
}

// ErrRuntimeNotStarted is returned by Generate before a successful Start.
var ErrRuntimeNotStarted = errors.New("inference runtime not started")

// serverBinary is the llama.cpp server binary looked up on PATH.
const serverBinary = "llama-server"

// startupTimeout bounds how long we wait for the server's health check
// after spawning it. Model load on a cold page cache can take a while.
const startupTimeout = 120 * time.Second

// serverRuntime runs a llama.cpp HTTP server as a child process and
// proxies generation requests to its /completion endpoint.
type serverRuntime struct {
	cmd        *exec.Cmd
	baseURL    string
	httpClient *http.Client
}

// NewServerRuntime returns the default Runtime, backed by a local
// llama.cpp server subprocess.
func NewServerRuntime() Runtime {
	return &serverRuntime{
		httpClient: &http.Client{},
	}
}

func (r *serverRuntime) Start(ctx context.Context, modelPath string) error {
	if r.cmd != nil {
		return nil
	}

	binPath, err := exec.LookPath(serverBinary)
	if err != nil {
		return fmt.Errorf("%s not found on PATH: %w", serverBinary, err)
	}

	port, err := freePort()
	if err != nil {
		return fmt.Errorf("failed to allocate port: %w", err)
	}

	cmd := exec.Command(binPath,
		"-m", modelPath,
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
		"--log-disable",
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", serverBinary, err)
	}

	r.cmd = cmd
	r.baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)

	if err := r.waitReady(ctx); err != nil {
		r.Close()
		return err
	}
	return nil
}

// waitReady polls the server's health endpoint until it answers or the
// startup window closes.
func (r *serverRuntime) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(startupTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}
	return fmt.Errorf("%s did not become healthy within %s", serverBinary, startupTimeout)
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	NPredict    int     `json:"n_predict"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	Stream      bool    `json:"stream"`
}

type completionResponse struct {
	Content string `json:"content"`
}

func (r *serverRuntime) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	if r.cmd == nil {
		return "", ErrRuntimeNotStarted
	}

	reqBody := completionRequest{
		Prompt:      prompt,
		NPredict:    params.MaxNewTokens,
		Temperature: params.Temperature,
		TopK:        params.TopK,
		Stream:      false,
	}
	if !params.Sample {
		reqBody.Temperature = 0
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/completion", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion failed: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	return parsed.Content, nil
}

func (r *serverRuntime) Close() error {
	if r.cmd == nil {
		return nil
	}
	cmd := r.cmd
	r.cmd = nil

	if cmd.Process != nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
	return nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
