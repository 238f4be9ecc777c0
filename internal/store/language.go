// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/jeranaias/suji-tui/internal/model"
)

var (
	matcherOnce   sync.Once
	languageTags  []language.Tag
	languageMatch language.Matcher
)

func initMatcher() {
	languageTags = make([]language.Tag, 0, len(model.SupportedLanguages))
	for _, lang := range model.SupportedLanguages {
		languageTags = append(languageTags, language.Make(lang.Code))
	}
	languageMatch = language.NewMatcher(languageTags)
}

// ResolveLanguage maps a settings language value to a concrete supported
// BCP-47 code. "auto" and empty resolve from the system locale; anything
// else passes through unchanged. Resolution is idempotent: feeding a
// resolved code back in returns the same code.
func ResolveLanguage(lang string) string {
	if lang == "auto" || lang == "" {
		return systemLanguage()
	}
	return lang
}

// systemLanguage derives the closest supported language from the
// process locale, falling back to the default when nothing matches.
func systemLanguage() string {
	raw := localeFromEnv()
	if raw == "" {
		return model.DefaultLanguage
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return model.DefaultLanguage
	}

	matcherOnce.Do(initMatcher)
	_, index, conf := languageMatch.Match(tag)
	if conf == language.No {
		return model.DefaultLanguage
	}
	return model.SupportedLanguages[index].Code
}

// localeFromEnv reads the POSIX locale variables in precedence order and
// normalizes "en_US.UTF-8" style values into BCP-47 form.
func localeFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
