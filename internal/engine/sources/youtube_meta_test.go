package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const watchHTML = `<!DOCTYPE html><html><head>
<meta property="og:title" content="Never Gonna Give You Up">
<meta property="og:type" content="video.other">
</head><body>
<div itemprop="video"><span itemprop="author"><link itemprop="url" href="http://www.youtube.com/@RickAstleyYT"><link itemprop="name" content="Rick Astley"></span></div>
</body></html>`

func TestParseWatchPage(t *testing.T) {
	got := parseWatchPage(watchHTML)
	if got.Title != "Never Gonna Give You Up" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Channel != "Rick Astley" {
		t.Errorf("channel = %q", got.Channel)
	}
}

func TestParseWatchPageEmpty(t *testing.T) {
	got := parseWatchPage("<html><body>nothing</body></html>")
	if got.Title != "" || got.Channel != "" {
		t.Errorf("expected empty meta, got %+v", got)
	}
}

// newYouTubeServer serves oEmbed at /oembed and the Innertube player at /player.
func newYouTubeServer(t *testing.T, oembed, player http.HandlerFunc) *YouTubeMeta {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", oembed)
	mux.HandleFunc("/player", player)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return newMetaFor(srv)
}

func newMetaFor(srv *httptest.Server) *YouTubeMeta {
	m := NewYouTubeMeta(srv.Client(), nil)
	m.oembedURL = srv.URL + "/oembed"
	m.playerURL = srv.URL + "/player"
	return m
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

const playerJSON = `{"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"Never Gonna Give You Up (Official Video)","author":"Rick Astley","lengthSeconds":"213"}}`

func TestLookupOEmbedAndPlayer(t *testing.T) {
	m := newYouTubeServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("url"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
				t.Errorf("url param = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"title":"Never Gonna Give You Up","author_name":"Rick Astley"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("player method = %s", r.Method)
			}
			var req playerReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoID != "dQw4w9WgXcQ" {
				t.Errorf("player body: %+v, %v", req, err)
			}
			_, _ = w.Write([]byte(playerJSON))
		},
	)

	got, err := m.Lookup(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Never Gonna Give You Up" || got.Channel != "Rick Astley" {
		t.Errorf("oEmbed fields should win, got %+v", got)
	}
	if got.Duration != "3:33" {
		t.Errorf("duration = %q, want 3:33", got.Duration)
	}
}

func TestLookupPlayerOnly(t *testing.T) {
	m := newYouTubeServer(t, status(http.StatusUnauthorized), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(playerJSON))
	})

	got, err := m.Lookup(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Never Gonna Give You Up (Official Video)" || got.Duration != "3:33" {
		t.Errorf("got %+v", got)
	}
}

func TestLookupFallsBackToWatchPage(t *testing.T) {
	m := newYouTubeServer(t, status(http.StatusUnauthorized), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in"}}`))
	})

	var fetched string
	m.fetchPage = func(_ context.Context, pageURL string) ([]byte, int, error) {
		fetched = pageURL
		return []byte(watchHTML), http.StatusOK, nil
	}

	got, err := m.Lookup(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("fetched %q", fetched)
	}
	if got.Channel != "Rick Astley" {
		t.Errorf("channel = %q", got.Channel)
	}
}

func TestLookupAllFail(t *testing.T) {
	m := newYouTubeServer(t, status(http.StatusNotFound), status(http.StatusInternalServerError))
	m.fetchPage = func(context.Context, string) ([]byte, int, error) {
		return nil, 0, errors.New("proxy down")
	}

	if _, err := m.Lookup(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Error("expected error when every lookup fails")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{5, "0:05"},
		{213, "3:33"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
