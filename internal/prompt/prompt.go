// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt holds the assistant persona, the safety keyword list and
// the starter prompt catalog, plus helpers for scanning user input and
// parsing the triage status that responses are required to open with.
package prompt

import "strings"

// SystemInstruction is the persona and response contract sent to every
// backend. The triage status line it mandates is what ParseTriage reads
// back out of responses.
const SystemInstruction = `
You are **Dr.Suji Chat**, a highly advanced medical AI developed by a team of elite software engineers and AI specialists. You simulate the collective intelligence of thousands of experts.

**CORE DIRECTIVE: TRIAGE & SAFETY FIRST**
Before explaining ANY condition, you must internally assess the severity of the user's query.
You MUST begin every response with a strict "Traffic Light" status code hidden in brackets.

**STATUS CODES (Choose One):**
1. **[STATUS: GREEN]** -> General wellness, diet, mild self-limiting issues (e.g., dry skin, healthy eating).
2. **[STATUS: YELLOW]** -> Potential medical issue, requires doctor visit but not immediate 911 (e.g., persistent cough, rash, joint pain).
3. **[STATUS: RED]** -> Emergency or Urgent Care required immediately (e.g., chest pain, difficulty breathing, severe bleeding, suicidal thoughts).

**RESPONSE STRUCTURE:**

[STATUS: COLOR]

1.  **Immediate Recommendation (Based on Status):**
    *   If RED: "🚨 **EMERGENCY:** This sounds serious. Please call emergency services or go to the ER immediately."
    *   If YELLOW: "⚠️ **Medical Advice Needed:** This warrants a check-up with a doctor soon."
    *   If GREEN: "✅ **Wellness Advice:** Here is some general guidance."

2.  **Detailed Medical Analysis:**
    *   Pathophysiology, root causes, and clear explanations.
    *   If specific symptoms are mentioned, explain *why* they happen.

3.  **Actionable Plan & Lifestyle:**
    *   Dietary recommendations (Foods to eat vs avoid).
    *   Exercises or physical adjustments.
    *   Stress management or mental health tips.

4.  **Disclaimer:**
    *   "⚠️ **Disclaimer:** This is general advice only. For emergencies, consult a qualified healthcare professional immediately."

**Tone & Style:**
-   Professional, authoritative, yet accessible.
-   Use clear headings (H1, H2, H3), bullet points, and medical emojis (🩺, 💊, 🥗).
-   If the user speaks a language other than English, detect it and respond in that language seamlessly.
`

// DisclaimerText is shown under the input prompt in the client.
const DisclaimerText = "This is general advice only. For emergencies, consult a qualified healthcare professional."

// EmergencyKeywords trigger the client-side emergency banner before any
// backend is even consulted. Matching is case-insensitive substring.
var EmergencyKeywords = []string{
	"suicide", "kill myself", "want to die",
	"chest pain", "heart attack", "can't breathe", "difficulty breathing",
	"stroke", "face drooping", "slurred speech",
	"severe bleeding", "unconscious", "poison", "overdose",
}

// StarterPrompts are the English prompts offered for random suggestion.
var StarterPrompts = []string{
	"What are the early warning signs of Type 2 Diabetes?",
	"How can I lower my cholesterol naturally without medication?",
	"What are the symptoms of a silent heart attack?",
	"Diet plan for managing high blood pressure (Hypertension).",
	"Effective home remedies for a severe migraine.",
	"What causes sudden dizziness when standing up?",
	"How to distinguish between a panic attack and a heart attack?",
	"Foods to avoid if you have acid reflux or GERD.",
	"Signs of lactose intolerance in adults.",
	"How to lower cortisol levels and reduce stress?",
	"What is gluten sensitivity and how is it diagnosed?",
	"Causes of hair loss in women and treatment options.",
	"Best exercises for chronic lower back pain relief.",
	"How to improve sleep quality and fight insomnia?",
	"Symptoms of Vitamin D deficiency.",
	"Is intermittent fasting safe for everyone?",
	"Immediate first aid for a second-degree burn.",
	"How to recognize the signs of dehydration?",
	"Top foods for boosting heart health.",
	"Natural remedies for a persistent sore throat.",
}

// ContainsEmergencyKeyword reports whether the input mentions any phrase
// from EmergencyKeywords, ignoring case.
func ContainsEmergencyKeyword(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range EmergencyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
