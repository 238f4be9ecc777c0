// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultModelID is the model the engine runs when none is configured.
const DefaultModelID = "Xenova/TinyLlama-1.1B-Chat-v1.0"

// artifactFiles are the files that make up an installed model, relative
// to the model's cache directory. weightsFile is the one whose presence
// decides HasModel.
var artifactFiles = []string{
	"config.json",
	"tokenizer.json",
	"tokenizer_config.json",
	"model.q4.gguf",
}

const weightsFile = "model.q4.gguf"

// ModelCache manages the on-disk artifact store for one model.
type ModelCache struct {
	root    string
	modelID string
}

// NewModelCache creates a cache rooted at dir for the given model. The
// model's artifacts live under a subdirectory derived from its ID.
func NewModelCache(dir, modelID string) *ModelCache {
	return &ModelCache{root: dir, modelID: modelID}
}

// Dir returns the directory holding this model's artifacts.
func (c *ModelCache) Dir() string {
	// "Xenova/TinyLlama-..." maps to a flat directory name.
	safe := strings.ReplaceAll(c.modelID, "/", "--")
	return filepath.Join(c.root, safe)
}

// ArtifactPath returns the on-disk path for one artifact file.
func (c *ModelCache) ArtifactPath(name string) string {
	return filepath.Join(c.Dir(), name)
}

// WeightsPath returns the path of the model weights file.
func (c *ModelCache) WeightsPath() string {
	return c.ArtifactPath(weightsFile)
}

// HasModel reports whether the model weights are installed. A missing or
// unreadable cache directory counts as not installed.
func (c *ModelCache) HasModel() bool {
	info, err := os.Stat(c.WeightsPath())
	return err == nil && !info.IsDir() && info.Size() > 0
}

// MissingArtifacts lists the artifact files not yet present on disk.
func (c *ModelCache) MissingArtifacts() []string {
	var missing []string
	for _, name := range artifactFiles {
		if _, err := os.Stat(c.ArtifactPath(name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// DeleteModel removes every cached artifact for this model.
func (c *ModelCache) DeleteModel() error {
	return os.RemoveAll(c.Dir())
}

// StorageUsage returns the total bytes the cached artifacts occupy.
// Returns 0 when nothing is installed.
func (c *ModelCache) StorageUsage() int64 {
	var total int64
	filepath.WalkDir(c.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
