package engine

import "time"

// --- Translation types ---

// TranslationStatus is the lifecycle state of a translation result.
type TranslationStatus string

const (
	StatusPending    TranslationStatus = "pending"
	StatusProcessing TranslationStatus = "processing"
	StatusCompleted  TranslationStatus = "completed"
	StatusFailed     TranslationStatus = "failed"
)

// Supported target languages.
const (
	LangEN = "en"
	LangKO = "ko"
	LangJA = "ja"
	LangZH = "zh"
	LangES = "es"
	LangFR = "fr"
)

// DefaultLanguage is used when a request omits target_language.
const DefaultLanguage = LangKO

// languageNames maps supported language codes to the name used inside prompts.
var languageNames = map[string]string{
	LangEN: "영어",
	LangKO: "한국어",
	LangJA: "일본어",
	LangZH: "중국어",
	LangES: "스페인어",
	LangFR: "프랑스어",
}

// IsSupportedLanguage reports whether code is a known target language.
func IsSupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// TranslationRequest is the input of a single translate operation.
type TranslationRequest struct {
	URL            string `json:"youtube_url" jsonschema:"YouTube video URL (watch, youtu.be, embed, shorts)"`
	TargetLanguage string `json:"target_language,omitempty" jsonschema:"Target language: en, ko, ja, zh, es, fr (default: ko)"`
}

// BatchTranslationRequest is the input of a batch translate operation.
type BatchTranslationRequest struct {
	URLs           []string `json:"youtube_urls" jsonschema:"YouTube video URLs to translate"`
	TargetLanguage string   `json:"target_language,omitempty" jsonschema:"Target language: en, ko, ja, zh, es, fr (default: ko)"`
}

// TranslationResult is the outcome of a translate operation.
// Optional fields are nil when the model response did not contain them.
type TranslationResult struct {
	Status                TranslationStatus `json:"status"`
	SourceURL             string            `json:"source_url"`
	VideoID               *string           `json:"video_id"`
	TargetLanguage        *string           `json:"target_language"`
	TranslatedText        *string           `json:"translated_text"`
	Summary               *string           `json:"summary"`
	VideoTitle            *string           `json:"video_title"`
	ChannelName           *string           `json:"channel_name"`
	VideoDuration         *string           `json:"video_duration"`
	ThumbnailURL          *string           `json:"thumbnail_url"`
	CreatedAt             time.Time         `json:"created_at"`
	ProcessingTimeSeconds *float64          `json:"processing_time_seconds"`
	WordCount             *int              `json:"word_count"`
	Confidence            *float64          `json:"confidence"`
	ErrorMessage          *string           `json:"error_message"`
}

// BatchTranslationOutput is the aggregated outcome of a batch translate operation.
type BatchTranslationOutput struct {
	Results   []*TranslationResult `json:"results"`
	Total     int                  `json:"total"`
	Completed int                  `json:"completed"`
	Failed    int                  `json:"failed"`
}

// VideoMeta is public video metadata used to fill fields the model omitted.
type VideoMeta struct {
	Title    string
	Channel  string
	Duration string // m:ss or h:mm:ss
}

// NewBatchOutput counts terminal states in results.
func NewBatchOutput(results []*TranslationResult) BatchTranslationOutput {
	out := BatchTranslationOutput{Results: results, Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusCompleted:
			out.Completed++
		case StatusFailed:
			out.Failed++
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

// optStr returns nil for empty strings.
func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ThumbnailURL returns the default thumbnail for a video id.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}
