// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsEmergencyKeyword(t *testing.T) {
	assert.True(t, ContainsEmergencyKeyword("I have CHEST PAIN right now"))
	assert.True(t, ContainsEmergencyKeyword("my friend took an overdose"))
	assert.True(t, ContainsEmergencyKeyword("Can't Breathe well at night"))
	assert.False(t, ContainsEmergencyKeyword("what should I eat for breakfast"))
	assert.False(t, ContainsEmergencyKeyword(""))
}

func TestParseTriage(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		status    TriageStatus
		wantClean string
	}{
		{
			name:      "green",
			in:        "[STATUS: GREEN]\n\n✅ **Wellness Advice:** drink water.",
			status:    TriageGreen,
			wantClean: "✅ **Wellness Advice:** drink water.",
		},
		{
			name:      "red",
			in:        "[STATUS: RED] call emergency services",
			status:    TriageRed,
			wantClean: "call emergency services",
		},
		{
			name:      "yellow mid-content",
			in:        "note\n[STATUS: YELLOW]\nsee a doctor",
			status:    TriageYellow,
			wantClean: "note\n\nsee a doctor",
		},
		{
			name:      "red wins over green",
			in:        "[STATUS: RED] x [STATUS: GREEN]",
			status:    TriageRed,
			wantClean: "x [STATUS: GREEN]",
		},
		{
			name:      "no marker",
			in:        "plain response",
			status:    TriageNone,
			wantClean: "plain response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, clean := ParseTriage(tt.in)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.wantClean, clean)
		})
	}
}

func TestSystemInstructionMentionsStatusCodes(t *testing.T) {
	for _, marker := range []string{"[STATUS: GREEN]", "[STATUS: YELLOW]", "[STATUS: RED]"} {
		assert.Contains(t, SystemInstruction, marker)
	}
}
