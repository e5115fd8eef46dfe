package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
)

const (
	oembedURL   = "https://www.youtube.com/oembed"
	watchURL    = "https://www.youtube.com/watch?v="
	maxMetaBody = 4 << 20
)

// PageFetcher fetches a page body and returns it with the HTTP status.
type PageFetcher func(ctx context.Context, pageURL string) ([]byte, int, error)

// YouTubeMeta resolves public video metadata from oEmbed and the Innertube
// player, falling back to watch-page tags when neither yields a title.
type YouTubeMeta struct {
	client    *http.Client
	oembedURL string
	playerURL string
	fetchPage PageFetcher // nil disables the watch-page fallback
}

// NewYouTubeMeta returns a metadata source. fetch may be nil.
func NewYouTubeMeta(client *http.Client, fetch PageFetcher) *YouTubeMeta {
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTubeMeta{client: client, oembedURL: oembedURL, playerURL: ytPlayerURL, fetchPage: fetch}
}

// StealthFetcher adapts a go-stealth browser client to PageFetcher.
func StealthFetcher(bc *stealth.BrowserClient) PageFetcher {
	return func(_ context.Context, pageURL string) ([]byte, int, error) {
		headers := stealth.ChromeHeaders()
		headers["accept-language"] = "ko-KR,ko;q=0.9,en;q=0.8"
		data, _, status, err := bc.Do("GET", pageURL, headers, nil)
		return data, status, err
	}
}

// Lookup implements engine.MetadataSource.
func (m *YouTubeMeta) Lookup(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	var errs []error

	meta, err := m.oembed(ctx, videoID)
	if err != nil {
		errs = append(errs, err)
	}
	if p, err := m.player(ctx, videoID); err != nil {
		errs = append(errs, err)
	} else {
		meta = mergeMeta(meta, p)
	}
	if meta.Title != "" {
		return meta, nil
	}

	if m.fetchPage != nil {
		page, err := m.watchPage(ctx, videoID)
		if err == nil {
			return mergeMeta(page, meta), nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no metadata found"))
	}
	return engine.VideoMeta{}, errors.Join(errs...)
}

// mergeMeta fills empty fields of a from b.
func mergeMeta(a, b engine.VideoMeta) engine.VideoMeta {
	if a.Title == "" {
		a.Title = b.Title
	}
	if a.Channel == "" {
		a.Channel = b.Channel
	}
	if a.Duration == "" {
		a.Duration = b.Duration
	}
	return a
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

func (m *YouTubeMeta) oembed(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	engine.IncrMetadataLookups()

	q := url.Values{}
	q.Set("url", watchURL+videoID)
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.oembedURL+"?"+q.Encode(), nil)
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("oembed request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("oembed fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return engine.VideoMeta{}, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var out oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetaBody)).Decode(&out); err != nil {
		return engine.VideoMeta{}, fmt.Errorf("oembed decode: %w", err)
	}
	return engine.VideoMeta{Title: strings.TrimSpace(out.Title), Channel: strings.TrimSpace(out.AuthorName)}, nil
}

func (m *YouTubeMeta) watchPage(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	engine.IncrMetadataLookups()

	data, status, err := m.fetchPage(ctx, watchURL+videoID)
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("watch page fetch: %w", err)
	}
	if status != http.StatusOK {
		return engine.VideoMeta{}, fmt.Errorf("watch page status %d", status)
	}
	meta := parseWatchPage(string(data))
	if meta.Title == "" {
		return engine.VideoMeta{}, errors.New("watch page: no title found")
	}
	return meta, nil
}

// parseWatchPage extracts og:title and the channel name from a watch page.
func parseWatchPage(body string) engine.VideoMeta {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return engine.VideoMeta{}
	}

	var meta engine.VideoMeta
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if meta.Title == "" && attr(n, "property") == "og:title" {
					meta.Title = strings.TrimSpace(attr(n, "content"))
				}
			case "link":
				// <span itemprop="author"><link itemprop="name" content="...">
				if meta.Channel == "" && attr(n, "itemprop") == "name" && n.Parent != nil && attr(n.Parent, "itemprop") == "author" {
					meta.Channel = strings.TrimSpace(attr(n, "content"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
