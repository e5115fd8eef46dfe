package translateserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/toolutil"
)

// TranslateToolInput is the input of the youtube_translate tool.
type TranslateToolInput struct {
	URL            string `json:"youtube_url" jsonschema:"YouTube video URL (watch, youtu.be, embed or shorts)"`
	TargetLanguage string `json:"target_language,omitempty" jsonschema:"Target language: en, ko, ja, zh, es, fr (default: ko)"`
	MaxChars       int    `json:"max_chars,omitempty" jsonschema:"Truncate the translated text to this many characters (0 = no limit)"`
}

// TranslateToolOutput is a flattened TranslationResult.
type TranslateToolOutput struct {
	Status         string  `json:"status"`
	SourceURL      string  `json:"source_url"`
	VideoID        string  `json:"video_id,omitempty"`
	TargetLanguage string  `json:"target_language,omitempty"`
	Title          string  `json:"video_title,omitempty"`
	Channel        string  `json:"channel_name,omitempty"`
	Duration       string  `json:"video_duration,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	TranslatedText string  `json:"translated_text,omitempty"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	WordCount      int     `json:"word_count,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// BatchToolOutput is the output of the youtube_translate_batch tool.
type BatchToolOutput struct {
	Results   []TranslateToolOutput `json:"results"`
	Total     int                   `json:"total"`
	Completed int                   `json:"completed"`
	Failed    int                   `json:"failed"`
}

// RegisterTools registers youtube_translate and youtube_translate_batch on server.
func RegisterTools(server *mcp.Server, tr *engine.Translator, maxURLs int) {
	registerTranslate(server, tr)
	registerTranslateBatch(server, tr, maxURLs)
}

func registerTranslate(server *mcp.Server, tr *engine.Translator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_translate",
		Description: "Translate and summarize a YouTube video into a target language using Gemini. Returns the translated transcript, a summary, title, channel and duration. Results are cached per URL and language.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranslateToolInput) (*mcp.CallToolResult, TranslateToolOutput, error) {
		if input.URL == "" {
			return nil, TranslateToolOutput{}, fmt.Errorf("youtube_url is required")
		}
		res, err := tr.Translate(ctx, engine.TranslationRequest{
			URL:            strings.TrimSpace(input.URL),
			TargetLanguage: toolutil.NormLang(input.TargetLanguage, tr.DefaultLanguage()),
		})
		if errors.Is(err, engine.ErrInvalidURL) {
			return nil, TranslateToolOutput{}, fmt.Errorf("%s: %s", input.URL, engine.UserMessage(err))
		}
		return nil, toolOutput(toolutil.TruncateResult(res, input.MaxChars)), nil
	})
}

func registerTranslateBatch(server *mcp.Server, tr *engine.Translator, maxURLs int) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_translate_batch",
		Description: fmt.Sprintf("Translate up to %d YouTube videos at once. Each URL succeeds or fails independently; results keep input order.", maxURLs),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.BatchTranslationRequest) (*mcp.CallToolResult, BatchToolOutput, error) {
		if len(input.URLs) == 0 {
			return nil, BatchToolOutput{}, fmt.Errorf("youtube_urls is required")
		}
		if len(input.URLs) > maxURLs {
			return nil, BatchToolOutput{}, fmt.Errorf("youtube_urls: at most %d urls per batch, got %d", maxURLs, len(input.URLs))
		}

		lang := toolutil.NormLang(input.TargetLanguage, tr.DefaultLanguage())
		out := tr.TranslateBatch(ctx, toolutil.TrimURLs(input.URLs), lang)

		res := BatchToolOutput{
			Results:   make([]TranslateToolOutput, len(out.Results)),
			Total:     out.Total,
			Completed: out.Completed,
			Failed:    out.Failed,
		}
		for i, r := range out.Results {
			res.Results[i] = toolOutput(r)
		}
		return nil, res, nil
	})
}

func toolOutput(res *engine.TranslationResult) TranslateToolOutput {
	out := TranslateToolOutput{
		Status:         string(res.Status),
		SourceURL:      res.SourceURL,
		VideoID:        toolutil.Deref(res.VideoID, ""),
		TargetLanguage: toolutil.Deref(res.TargetLanguage, ""),
		Title:          toolutil.Deref(res.VideoTitle, ""),
		Channel:        toolutil.Deref(res.ChannelName, ""),
		Duration:       toolutil.Deref(res.VideoDuration, ""),
		Summary:        toolutil.Deref(res.Summary, ""),
		TranslatedText: toolutil.Deref(res.TranslatedText, ""),
		ThumbnailURL:   toolutil.Deref(res.ThumbnailURL, ""),
		ErrorMessage:   toolutil.Deref(res.ErrorMessage, ""),
	}
	if res.WordCount != nil {
		out.WordCount = *res.WordCount
	}
	if res.Confidence != nil {
		out.Confidence = *res.Confidence
	}
	return out
}
