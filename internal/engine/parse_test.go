package engine

import (
	"strings"
	"testing"
)

const sampleResponse = `
=== 영상 정보 ===
제목: 테스트 비디오
채널: 테스트 채널
길이: 3:45

=== 요약 ===
이것은 테스트 영상의 요약입니다.
두 번째 줄입니다.
세 번째 줄입니다.

=== 전체 번역 ===
[00:00] 안녕하세요, **머신러닝(Machine Learning)** 강의에 오신 것을 환영합니다.
[화자 1] 오늘은 기초부터 시작하겠습니다.
`

func TestParseResponse(t *testing.T) {
	res := ParseResponse(sampleResponse, "https://youtu.be/dQw4w9WgXcQ")

	if res.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", res.Status)
	}
	if res.SourceURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("source url = %q", res.SourceURL)
	}
	checks := []struct {
		name string
		got  *string
		want string
	}{
		{"title", res.VideoTitle, "테스트 비디오"},
		{"channel", res.ChannelName, "테스트 채널"},
		{"duration", res.VideoDuration, "3:45"},
		{"summary", res.Summary, "이것은 테스트 영상의 요약입니다.\n두 번째 줄입니다.\n세 번째 줄입니다."},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s is nil", c.name)
			continue
		}
		if *c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, *c.got, c.want)
		}
	}
	if res.TranslatedText == nil || !strings.HasPrefix(*res.TranslatedText, "[00:00] 안녕하세요") {
		t.Errorf("translated text = %v", res.TranslatedText)
	}
	if res.WordCount == nil || *res.WordCount <= 0 {
		t.Errorf("word count = %v, want > 0", res.WordCount)
	}
	if res.Confidence == nil || *res.Confidence <= 0 || *res.Confidence > 0.95 {
		t.Errorf("confidence = %v, want in (0, 0.95]", res.Confidence)
	}
	if res.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestParseResponseMissingSummary(t *testing.T) {
	text := "제목: 테스트\n\n=== 전체 번역 ===\n본문입니다."
	res := ParseResponse(text, "https://youtu.be/dQw4w9WgXcQ")

	if res.Summary != nil {
		t.Errorf("summary = %q, want nil", *res.Summary)
	}
	if res.TranslatedText == nil || *res.TranslatedText != "본문입니다." {
		t.Errorf("translated text = %v, want body", res.TranslatedText)
	}
	if res.ChannelName != nil {
		t.Errorf("channel = %q, want nil", *res.ChannelName)
	}
}

func TestParseResponseFreeText(t *testing.T) {
	res := ParseResponse("  그냥 번역된 텍스트입니다.  ", "u")
	if res.TranslatedText == nil || *res.TranslatedText != "그냥 번역된 텍스트입니다." {
		t.Errorf("translated text = %v", res.TranslatedText)
	}
	if res.VideoTitle != nil || res.Summary != nil {
		t.Error("expected no structured fields")
	}
}

func TestParseResponseMarkdownLabels(t *testing.T) {
	text := "**제목:** 마크다운 제목\n- 채널: 채널명\n"
	res := ParseResponse(text, "u")
	if res.VideoTitle == nil || *res.VideoTitle != "마크다운 제목" {
		t.Errorf("title = %v", res.VideoTitle)
	}
	if res.ChannelName == nil || *res.ChannelName != "채널명" {
		t.Errorf("channel = %v", res.ChannelName)
	}
}

func TestParseResponseEmpty(t *testing.T) {
	res := ParseResponse("", "u")
	if res.TranslatedText == nil {
		t.Fatal("translated text is nil")
	}
	if *res.WordCount != 0 || *res.Confidence != 0 {
		t.Errorf("word count %d, confidence %f, want zeros", *res.WordCount, *res.Confidence)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello world", 2},
		{"hello, world!", 2},
		{"안녕하세요 세계", 2},
		{"--- *** ...", 0},
		{"multi\nline\ttext", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(strings.Repeat("a", 5000)); got != 0.5 {
		t.Errorf("Confidence(5000 chars) = %f, want 0.5", got)
	}
	if got := Confidence(strings.Repeat("a", 20000)); got != 0.95 {
		t.Errorf("Confidence(20000 chars) = %f, want 0.95", got)
	}
	if got := Confidence(strings.Repeat("가", 1000)); got != 0.1 {
		t.Errorf("Confidence counts runes, got %f", got)
	}
}
