// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Language pairs a BCP-47 code with its display name.
type Language struct {
	Code string
	Name string
}

// DefaultLanguage is used when language resolution finds no match.
const DefaultLanguage = "en-US"

// SupportedLanguages lists every language the assistant can be asked to
// respond in. Order matters only for display.
var SupportedLanguages = []Language{
	{Code: "af-ZA", Name: "Afrikaans"},
	{Code: "am-ET", Name: "Amharic"},
	{Code: "ar-SA", Name: "Arabic"},
	{Code: "bg-BG", Name: "Bulgarian"},
	{Code: "bn-BD", Name: "Bengali"},
	{Code: "ca-ES", Name: "Catalan"},
	{Code: "cs-CZ", Name: "Czech"},
	{Code: "da-DK", Name: "Danish"},
	{Code: "de-DE", Name: "German"},
	{Code: "el-GR", Name: "Greek"},
	{Code: "en-US", Name: "English"},
	{Code: "es-ES", Name: "Spanish"},
	{Code: "et-EE", Name: "Estonian"},
	{Code: "fa-IR", Name: "Persian"},
	{Code: "fi-FI", Name: "Finnish"},
	{Code: "fil-PH", Name: "Filipino"},
	{Code: "fr-FR", Name: "French"},
	{Code: "gu-IN", Name: "Gujarati"},
	{Code: "he-IL", Name: "Hebrew"},
	{Code: "hi-IN", Name: "Hindi"},
	{Code: "hr-HR", Name: "Croatian"},
	{Code: "hu-HU", Name: "Hungarian"},
	{Code: "id-ID", Name: "Indonesian"},
	{Code: "it-IT", Name: "Italian"},
	{Code: "ja-JP", Name: "Japanese"},
	{Code: "kn-IN", Name: "Kannada"},
	{Code: "ko-KR", Name: "Korean"},
	{Code: "lt-LT", Name: "Lithuanian"},
	{Code: "lv-LV", Name: "Latvian"},
	{Code: "ml-IN", Name: "Malayalam"},
	{Code: "mr-IN", Name: "Marathi"},
	{Code: "ms-MY", Name: "Malay"},
	{Code: "nl-NL", Name: "Dutch"},
	{Code: "no-NO", Name: "Norwegian"},
	{Code: "pl-PL", Name: "Polish"},
	{Code: "pt-BR", Name: "Portuguese (Brazil)"},
	{Code: "pt-PT", Name: "Portuguese (Portugal)"},
	{Code: "ro-RO", Name: "Romanian"},
	{Code: "ru-RU", Name: "Russian"},
	{Code: "sk-SK", Name: "Slovak"},
	{Code: "sl-SI", Name: "Slovenian"},
	{Code: "sr-RS", Name: "Serbian"},
	{Code: "sv-SE", Name: "Swedish"},
	{Code: "sw-KE", Name: "Swahili"},
	{Code: "ta-IN", Name: "Tamil"},
	{Code: "te-IN", Name: "Telugu"},
	{Code: "th-TH", Name: "Thai"},
	{Code: "tr-TR", Name: "Turkish"},
	{Code: "uk-UA", Name: "Ukrainian"},
	{Code: "ur-PK", Name: "Urdu"},
	{Code: "vi-VN", Name: "Vietnamese"},
	{Code: "zh-CN", Name: "Chinese (Simplified)"},
	{Code: "zh-TW", Name: "Chinese (Traditional)"},
}
