// Package toolutil provides shared helpers for the HTTP, MCP and CLI surfaces.
package toolutil

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
)

// NormLang lowercases and trims a language field: empty string → def.
func NormLang(lang, def string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return def
	}
	return lang
}

// TrimURLs trims whitespace around each URL. Blank entries are kept so that
// batch results stay aligned with the input.
func TrimURLs(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = strings.TrimSpace(u)
	}
	return out
}

// TruncateResult returns a copy of res whose translated text is cut to maxChars
// runes at a word boundary. maxChars <= 0 returns res unchanged.
func TruncateResult(res *engine.TranslationResult, maxChars int) *engine.TranslationResult {
	if res == nil || maxChars <= 0 || res.TranslatedText == nil {
		return res
	}
	cp := *res
	text := strutil.TruncateAtWord(*res.TranslatedText, maxChars)
	cp.TranslatedText = &text
	return &cp
}

// Deref returns *p, or fallback when p is nil or empty.
func Deref(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

// FormatResult renders res as a short human-readable block.
// previewChars bounds the translation preview; 0 prints the full text.
func FormatResult(res *engine.TranslationResult, previewChars int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", res.SourceURL)
	fmt.Fprintf(&sb, "Status: %s\n", res.Status)
	if res.Status == engine.StatusFailed {
		fmt.Fprintf(&sb, "Error: %s\n", Deref(res.ErrorMessage, "-"))
		return sb.String()
	}
	fmt.Fprintf(&sb, "Title: %s\n", Deref(res.VideoTitle, "-"))
	fmt.Fprintf(&sb, "Channel: %s\n", Deref(res.ChannelName, "-"))
	fmt.Fprintf(&sb, "Duration: %s\n", Deref(res.VideoDuration, "-"))
	if res.Summary != nil {
		fmt.Fprintf(&sb, "\nSummary:\n%s\n", *res.Summary)
	}
	if res.TranslatedText != nil {
		text := *res.TranslatedText
		if previewChars > 0 {
			text = strutil.TruncateWith(text, previewChars, "…")
		}
		fmt.Fprintf(&sb, "\nTranslation:\n%s\n", text)
	}
	return sb.String()
}
