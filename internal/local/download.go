// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultHubURL is the artifact hub downloads resolve against.
const DefaultHubURL = "https://huggingface.co"

// Downloader fetches model artifacts from the hub into a ModelCache.
type Downloader struct {
	baseURL    string
	httpClient *http.Client
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHubURL overrides the artifact hub, mainly for tests.
func WithHubURL(url string) DownloaderOption {
	return func(d *Downloader) {
		d.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithDownloadClient overrides the HTTP client.
func WithDownloadClient(hc *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.httpClient = hc
	}
}

// NewDownloader creates a Downloader. Artifact downloads run for as long
// as the caller's context allows; the client itself carries no timeout
// because weight files take minutes on slow links.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		baseURL:    DefaultHubURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads every missing artifact for the cache's model, emitting
// initiate, progress and done events per file. Files are written to a
// temp path and renamed into place only once complete, so an interrupted
// download never leaves a truncated artifact behind.
func (d *Downloader) Fetch(ctx context.Context, cache *ModelCache, onProgress ProgressFunc) error {
	missing := cache.MissingArtifacts()
	if len(missing) == 0 {
		return nil
	}

	if err := os.MkdirAll(cache.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	for _, name := range missing {
		if err := d.fetchOne(ctx, cache, name, onProgress); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downloader) fetchOne(ctx context.Context, cache *ModelCache, name string, onProgress ProgressFunc) error {
	onProgress.emit(ProgressEvent{Stage: StageInitiate, File: name})

	url := fmt.Sprintf("%s/%s/resolve/main/%s", d.baseURL, cache.modelID, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed: HTTP %d", name, resp.StatusCode)
	}

	dest := cache.ArtifactPath(name)
	tmp, err := os.CreateTemp(cache.Dir(), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := d.copyWithProgress(ctx, tmp, resp.Body, name, resp.ContentLength, onProgress); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}

	onProgress.emit(ProgressEvent{Stage: StageDone, File: name})
	return nil
}

// copyWithProgress streams body to w, emitting a progress event whenever
// the integral percentage advances. With an unknown content length the
// copy still happens, just without percentage events.
func (d *Downloader) copyWithProgress(ctx context.Context, w io.Writer, body io.Reader, name string, total int64, onProgress ProgressFunc) error {
	buf := make([]byte, 128*1024)
	var written int64
	lastPercent := -1
	lastEmit := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("failed to write %s: %w", name, werr)
			}
			written += int64(n)

			if total > 0 {
				percent := int(float64(written) / float64(total) * 100)
				if percent != lastPercent && time.Since(lastEmit) > 100*time.Millisecond {
					lastPercent = percent
					lastEmit = time.Now()
					onProgress.emit(ProgressEvent{
						Stage:   StageProgress,
						File:    name,
						Percent: float64(percent),
					})
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
}
