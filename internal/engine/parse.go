package engine

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Response parsing is best-effort structured extraction over free text.
// A missing label or section leaves the matching field nil; it is never an error.

// fieldRe builds a line-anchored matcher for "<label>: value", tolerating
// markdown bullets or bold around the label.
func fieldRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t>*_-]*` + label + `[ \t*_]*[:：][ \t*_]*(.+?)[ \t]*$`)
}

var (
	titleRe    = fieldRe(labelTitle)
	channelRe  = fieldRe(labelChannel)
	durationRe = fieldRe(labelDuration)
	summaryRe  = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(markerSummary) + `[ \t]*\r?\n(.*?)\r?\n[ \t]*` + regexp.QuoteMeta(markerBody))
)

// maxConfidence caps the length heuristic.
const maxConfidence = 0.95

// ParseResponse converts raw model output into a completed TranslationResult.
func ParseResponse(text, sourceURL string) *TranslationResult {
	res := &TranslationResult{
		Status:    StatusCompleted,
		SourceURL: sourceURL,
		CreatedAt: time.Now().UTC(),
	}

	res.VideoTitle = firstField(titleRe, text)
	res.ChannelName = firstField(channelRe, text)
	res.VideoDuration = firstField(durationRe, text)

	if m := summaryRe.FindStringSubmatch(text); len(m) == 2 {
		res.Summary = optStr(strings.TrimSpace(m[1]))
	}

	res.TranslatedText = strPtr(translationBody(text))

	wc := WordCount(text)
	res.WordCount = &wc
	conf := Confidence(text)
	res.Confidence = &conf
	return res
}

func firstField(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) != 2 {
		return nil
	}
	v := strings.TrimSpace(strings.Trim(m[1], "*_ \t"))
	return optStr(v)
}

// translationBody returns everything after the last body marker,
// or the whole trimmed text when the marker is absent.
func translationBody(text string) string {
	if idx := strings.LastIndex(text, markerBody); idx >= 0 {
		return strings.TrimSpace(text[idx+len(markerBody):])
	}
	return strings.TrimSpace(text)
}

// WordCount counts whitespace-delimited tokens after dropping punctuation.
func WordCount(text string) int {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return len(strings.Fields(sb.String()))
}

// Confidence is a length-based heuristic in [0, 0.95], not a calibrated probability.
func Confidence(text string) float64 {
	c := float64(utf8.RuneCountInString(text)) / 10000
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
