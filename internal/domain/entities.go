package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProviderConfig  = errors.New("provider not configured")
	ErrUpstream        = errors.New("upstream provider error")
	ErrNoContent       = errors.New("no usable content")
)

// UpstreamError carries the status and a body snippet from a non-2xx provider
// response so the handler boundary can report upstream failures with detail.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %s returned status %d", e.Provider, e.Status)
}

// Is lets callers match any UpstreamError via errors.Is(err, ErrUpstream).
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Keyword record sources
const (
	SourceGoogleTrends = "google_trends"
	SourceDeepSeek     = "deepseek"
	SourceGroq         = "groq"
	SourceOpenRouter   = "openai_via_openrouter"
	SourceEstimated    = "estimated"
)

// Trend labels
const (
	TrendUp     = "up"
	TrendStable = "stable"
	TrendDown   = "down"
)

// KeywordRecord is one analyzed keyword with its metrics.
// Competition and Difficulty are on a canonical 0-100 scale; provider values
// in [0,1] are scaled up and Low/Medium/High labels are mapped on ingest.
type KeywordRecord struct {
	Keyword         string  `json:"keyword"`
	SearchVolume    int     `json:"searchVolume"`
	Competition     float64 `json:"competition"`
	Trend           string  `json:"trend"`
	Difficulty      float64 `json:"difficulty"`
	MagicScore      float64 `json:"magicScore"`
	Recommendations string  `json:"recommendations,omitempty"`
	SEOTips         string  `json:"seoTips,omitempty"`
	Source          string  `json:"source"`
}

// KeywordAnalysis is the /analyze_keyword response body.
type KeywordAnalysis struct {
	Query     string          `json:"query"`
	Keywords  []KeywordRecord `json:"keywords"`
	Timestamp time.Time       `json:"timestamp"`
}

// ScriptResult pairs an outline with slide bodies aligned by index.
// When provider output cannot be parsed as JSON the whole raw text becomes the
// single script entry and the outline stays empty; that is a degraded success,
// not an error.
type ScriptResult struct {
	Outline []string `json:"outline"`
	Script  []string `json:"script"`
}

// SocialPosts holds line-split tweet and Instagram post suggestions.
type SocialPosts struct {
	Tweets []string `json:"tweets"`
	IGs    []string `json:"igs"`
}

// ImageAnalysis is the /upload_and_query response body.
type ImageAnalysis struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
	Hashtags    string `json:"hashtags"`
}

// ModelComparison carries the same vision prompt answered by two models.
type ModelComparison struct {
	Llama string `json:"llama"`
	Llava string `json:"llava"`
}

// ChatRequest is an immutable provider chat-completion request. ImageJPEG, when
// present, is sent as a base64 data URI content block alongside the prompt.
type ChatRequest struct {
	Provider    string
	Model       string
	Task        string
	System      string
	Prompt      string
	ImageJPEG   []byte
	MaxTokens   int
	Temperature float64
}

// ChatClient (port)

type ChatClient interface {
	// Call returns the first choice's message content. Missing API keys map to
	// ErrProviderConfig, non-2xx statuses to *UpstreamError, empty choices to
	// ErrNoContent; transport failures are returned wrapped, never panicked.
	Call(ctx Context, req ChatRequest) (string, error)
}

// TrendsSource (port)

type TrendsSource interface {
	// RelatedKeywords returns up to limit related search terms for query.
	RelatedKeywords(ctx Context, query string, limit int) ([]KeywordRecord, error)
	// Interest reports average interest and a trend label for keyword.
	Interest(ctx Context, keyword string) (avg int, trend string, err error)
}

// Context is an alias to allow decoupling from std context in domain
// signatures; adapters and usecases pass context.Context through.
type Context = context.Context
