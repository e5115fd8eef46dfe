package engine

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch no www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch http", "http://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch trailing params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL1", "dQw4w9WgXcQ"},
		{"watch v not first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc123", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/abcDEF_-123", "abcDEF_-123"},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"fragment", "https://youtu.be/dQw4w9WgXcQ#t=10", "dQw4w9WgXcQ"},
		{"surrounding space", "  https://youtu.be/dQw4w9WgXcQ \n", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			if !ok {
				t.Fatalf("ExtractVideoID(%q) not ok", tt.url)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
			if !IsValidURL(tt.url) {
				t.Errorf("IsValidURL(%q) = false", tt.url)
			}
		})
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"vimeo", "https://vimeo.com/123"},
		{"id too short", "https://youtu.be/dQw4w9WgXc"},
		{"id too long", "https://youtu.be/dQw4w9WgXcQQ"},
		{"bad id char", "https://youtu.be/dQw4w9WgX!Q"},
		{"channel page", "https://www.youtube.com/@RickAstleyYT"},
		{"watch without v", "https://www.youtube.com/watch?list=PL1234567890"},
		{"lookalike host", "https://notyoutube.com/watch?v=dQw4w9WgXcQ"},
		{"other scheme", "ftp://youtu.be/dQw4w9WgXcQ"},
		{"plain text", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, ok := ExtractVideoID(tt.url); ok {
				t.Errorf("ExtractVideoID(%q) = %q, want no match", tt.url, id)
			}
			if IsValidURL(tt.url) {
				t.Errorf("IsValidURL(%q) = true", tt.url)
			}
		})
	}
}
