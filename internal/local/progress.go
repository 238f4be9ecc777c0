// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"fmt"
	"path"
)

// ProgressStage identifies which phase of artifact loading an event
// belongs to.
type ProgressStage string

// The stages an artifact moves through while being fetched.
const (
	StageInitiate ProgressStage = "initiate"
	StageProgress ProgressStage = "progress"
	StageDone     ProgressStage = "done"
)

// ProgressEvent is a structured initialization progress report. Consumers
// that only want display text can use String; everything else reads the
// fields directly.
type ProgressEvent struct {
	Stage   ProgressStage
	File    string
	Percent float64
}

// String renders the event for display. Only the final path element of
// File is shown for progress events.
func (e ProgressEvent) String() string {
	switch e.Stage {
	case StageInitiate:
		return fmt.Sprintf("Starting %s...", e.File)
	case StageProgress:
		name := path.Base(e.File)
		if name == "." || name == "/" {
			name = "data"
		}
		return fmt.Sprintf("Downloading %s: %.0f%%", name, e.Percent)
	case StageDone:
		return fmt.Sprintf("Loaded %s", e.File)
	}
	return e.File
}

// ProgressFunc receives initialization progress events. A nil ProgressFunc
// is always allowed.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) emit(e ProgressEvent) {
	if f != nil {
		f(e)
	}
}
