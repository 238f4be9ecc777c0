// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Provider selects which text-generation backend handles a request.
type Provider string

// The three supported backends. The fallback topology is fixed: one
// fallback hop, cloud-to-cloud only.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderLocal  Provider = "local"
)

// Theme is the UI appearance preference.
type Theme string

// Theme options.
const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Model catalog. Provider and PreferredModel are set together by the
// settings writer; nothing downstream re-derives one from the other.
const (
	ModelGeminiFlash = "gemini-3-flash-preview"
	ModelGeminiPro   = "gemini-3-pro-preview"
	ModelGPT4Turbo   = "gpt-4-turbo"
	ModelGPT35Turbo  = "gpt-3.5-turbo"
	ModelLocalChat   = "Xenova/TinyLlama-1.1B-Chat-v1.0"
)

// UserSettings is the process-wide user preference singleton. It is
// persisted synchronously on-device and merged over DefaultSettings on
// every read so new fields survive older persisted blobs.
type UserSettings struct {
	UseVoiceOutput bool     `json:"useVoiceOutput"`
	IsSeniorMode   bool     `json:"isSeniorMode"`
	Language       string   `json:"language"` // BCP-47 code or "auto"
	Theme          Theme    `json:"theme"`
	PreferredModel string   `json:"preferredModel"`
	Provider       Provider `json:"provider"`
}

// DefaultSettings returns the settings used for a fresh install and as
// the base layer when merging persisted settings.
func DefaultSettings() UserSettings {
	return UserSettings{
		UseVoiceOutput: false,
		IsSeniorMode:   false,
		Language:       "auto",
		Theme:          ThemeSystem,
		PreferredModel: ModelGeminiFlash,
		Provider:       ProviderGemini,
	}
}
