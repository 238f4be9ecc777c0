// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import "strings"

// TriageStatus is the traffic-light severity a response opens with.
type TriageStatus string

// Severity levels, checked in order of urgency.
const (
	TriageRed    TriageStatus = "RED"
	TriageYellow TriageStatus = "YELLOW"
	TriageGreen  TriageStatus = "GREEN"
	TriageNone   TriageStatus = ""
)

var triageMarkers = []struct {
	marker string
	status TriageStatus
}{
	{"[STATUS: RED]", TriageRed},
	{"[STATUS: YELLOW]", TriageYellow},
	{"[STATUS: GREEN]", TriageGreen},
}

// ParseTriage scans a model response for the triage status marker. It
// returns the detected status and the content with the first occurrence
// of the marker removed and surrounding whitespace trimmed. RED wins over
// YELLOW over GREEN when a response somehow carries more than one. A
// response without a marker comes back unchanged with TriageNone.
func ParseTriage(content string) (TriageStatus, string) {
	for _, tm := range triageMarkers {
		if strings.Contains(content, tm.marker) {
			clean := strings.TrimSpace(strings.Replace(content, tm.marker, "", 1))
			return tm.status, clean
		}
	}
	return TriageNone, content
}
