package engine

import (
	"regexp"
	"strings"
)

// youtubeURLRe matches the supported YouTube link shapes and captures the 11-char video id.
// Scheme, www./m. prefixes and trailing query/fragment are optional.
var youtubeURLRe = regexp.MustCompile(`(?i)^(?:https?://)?` +
	`(?:(?:www\.|m\.)?youtube\.com/(?:watch\?(?:[^#\s]*&)?v=|embed/|v/|shorts/)|youtu\.be/)` +
	`([A-Za-z0-9_-]{11})(?:[?&#/]\S*)?$`)

// IsValidURL reports whether raw is a supported YouTube video link.
func IsValidURL(raw string) bool {
	_, ok := ExtractVideoID(raw)
	return ok
}

// ExtractVideoID returns the video id embedded in raw.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	m := youtubeURLRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
