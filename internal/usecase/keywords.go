// Package usecase contains the request orchestrators: provider fallback
// chains, concurrent fan-out and degraded-mode decisions live here, behind
// the domain ports so tests can drive them with fakes.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/service/estimator"
)

const (
	keywordSystemPrompt = "You are a YouTube SEO expert. For every keyword you return the fields " +
		"keyword, searchVolume, competition (Low, Medium or High), trend (Rising, Stable or Falling), " +
		"difficulty (1-100), magicScore (1-100), recommendations and seoTips."
	groqKeywordSystemPrompt = "You are a helpful YouTube keyword research assistant."
)

// groqStopWords are generic research terms filtered out of the plain Groq
// keyword leg; the other providers return full records and are not filtered.
var groqStopWords = map[string]struct{}{
	"how to": {}, "tutorial": {}, "tips": {}, "how": {}, "to": {}, "what": {}, "why": {},
}

// Keywords orchestrates keyword analysis across LLM providers, Google Trends
// and the synthetic estimator.
type Keywords struct {
	cfg    config.Config
	chat   domain.ChatClient
	trends domain.TrendsSource
	ex     ai.Extractor
}

// NewKeywords wires the keyword orchestrator.
func NewKeywords(cfg config.Config, chat domain.ChatClient, trends domain.TrendsSource) *Keywords {
	return &Keywords{cfg: cfg, chat: chat, trends: trends, ex: ai.NewExtractor()}
}

func keywordUserPrompt(query string, count int) string {
	return fmt.Sprintf(
		"Suggest %d YouTube keyword ideas related to %q. "+
			"Respond with a pure JSON array of exactly %d objects and nothing else.",
		count, query, count)
}

// Analyze runs the provider chain for query and returns up to count records.
// Chain order: OpenRouter (with one sequential top-up call when short),
// DeepSeek, Groq, then Google Trends related queries backed by estimated
// metrics. Zero records from a leg counts as failure and moves the chain on.
func (u *Keywords) Analyze(ctx domain.Context, query string, count int) (domain.KeywordAnalysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.KeywordAnalysis{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	type leg struct {
		name string
		run  func() ([]domain.KeywordRecord, error)
	}
	legs := []leg{
		{domain.SourceOpenRouter, func() ([]domain.KeywordRecord, error) { return u.openRouterKeywords(ctx, query, count) }},
		{domain.SourceDeepSeek, func() ([]domain.KeywordRecord, error) { return u.deepSeekKeywords(ctx, query, count) }},
		{domain.SourceGroq, func() ([]domain.KeywordRecord, error) { return u.groqKeywords(ctx, query, count) }},
	}

	var lastErr error
	for i, l := range legs {
		if i > 0 {
			observability.ProviderFallbackTotal.WithLabelValues("keywords", l.name).Inc()
		}
		records, err := l.run()
		if err != nil {
			lastErr = err
			slog.Warn("keyword leg failed", slog.String("source", l.name), slog.Any("error", err))
			continue
		}
		if len(records) == 0 {
			slog.Warn("keyword leg returned nothing", slog.String("source", l.name))
			continue
		}
		if len(records) > count {
			records = records[:count]
		}
		return domain.KeywordAnalysis{Query: query, Keywords: records, Timestamp: time.Now().UTC()}, nil
	}

	// Last resort: Trends related queries with estimated metrics. Its failure
	// must not mask the provider error already collected.
	observability.ProviderFallbackTotal.WithLabelValues("keywords", domain.SourceGoogleTrends).Inc()
	records, err := u.trendsKeywords(ctx, query, count)
	if err != nil {
		slog.Warn("trends keyword fallback failed", slog.Any("error", err))
		if lastErr == nil {
			lastErr = err
		}
	}
	if len(records) > 0 {
		if len(records) > count {
			records = records[:count]
		}
		return domain.KeywordAnalysis{Query: query, Keywords: records, Timestamp: time.Now().UTC()}, nil
	}
	if lastErr != nil {
		return domain.KeywordAnalysis{}, fmt.Errorf("all keyword providers failed: %w", lastErr)
	}
	return domain.KeywordAnalysis{}, fmt.Errorf("%w: no keywords from any provider", domain.ErrNoContent)
}

// openRouterKeywords asks the primary model for count records and issues at
// most one sequential top-up call when the first response comes up short.
func (u *Keywords) openRouterKeywords(ctx domain.Context, query string, count int) ([]domain.KeywordRecord, error) {
	raw, err := u.chat.Call(ctx, domain.ChatRequest{
		Provider:    ai.ProviderOpenRouter,
		Model:       u.cfg.OpenRouterModel,
		Task:        "keywords",
		System:      keywordSystemPrompt,
		Prompt:      keywordUserPrompt(query, count),
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	records := u.ex.Keywords(raw, domain.SourceOpenRouter)
	if len(records) == 0 || len(records) >= count {
		return records, nil
	}

	missing := count - len(records)
	exclude := make([]string, 0, len(records))
	for _, r := range records {
		exclude = append(exclude, r.Keyword)
	}
	topup, err := u.chat.Call(ctx, domain.ChatRequest{
		Provider: ai.ProviderOpenRouter,
		Model:    u.cfg.OpenRouterModel,
		Task:     "keywords_topup",
		System:   keywordSystemPrompt,
		Prompt: keywordUserPrompt(query, missing) +
			" Do not repeat any of: " + strings.Join(exclude, ", ") + ".",
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		// A short first batch is still a success.
		slog.Warn("keyword top-up failed", slog.Any("error", err))
		return records, nil
	}
	merged := append(records, u.ex.Keywords(topup, domain.SourceOpenRouter)...)
	return ai.DedupKeywords(merged), nil
}

func (u *Keywords) deepSeekKeywords(ctx domain.Context, query string, count int) ([]domain.KeywordRecord, error) {
	raw, err := u.chat.Call(ctx, domain.ChatRequest{
		Provider:    ai.ProviderDeepSeek,
		Model:       u.cfg.DeepSeekModel,
		Task:        "keywords",
		System:      keywordSystemPrompt,
		Prompt:      keywordUserPrompt(query, count) + ` You may wrap the array in {"keywords": [...]}.`,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	return u.ex.Keywords(raw, domain.SourceDeepSeek), nil
}

// groqKeywords asks for a bare JSON array of keyword strings; records carry
// only keyword text and source, metrics stay zero.
func (u *Keywords) groqKeywords(ctx domain.Context, query string, count int) ([]domain.KeywordRecord, error) {
	raw, err := u.chat.Call(ctx, domain.ChatRequest{
		Provider: ai.ProviderGroq,
		Model:    u.cfg.GroqTextModel,
		Task:     "keywords",
		System:   groqKeywordSystemPrompt,
		Prompt: fmt.Sprintf("List %d YouTube search keywords related to %q as a JSON array of strings. "+
			"Respond with the array only.", count, query),
		MaxTokens:   256,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	records := make([]domain.KeywordRecord, 0, count)
	for _, kw := range u.ex.StringList(raw) {
		if _, stop := groqStopWords[strings.ToLower(kw)]; stop {
			continue
		}
		records = append(records, domain.KeywordRecord{Keyword: kw, Source: domain.SourceGroq})
	}
	return ai.DedupKeywords(records), nil
}

// trendsKeywords is the last resort: related queries from Google Trends with
// estimated metrics filled in per keyword.
func (u *Keywords) trendsKeywords(ctx domain.Context, query string, count int) ([]domain.KeywordRecord, error) {
	related, err := u.trends.RelatedKeywords(ctx, query, count)
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeywordRecord, 0, len(related))
	for _, r := range related {
		rec := estimator.Record(r.Keyword)
		rec.Source = domain.SourceGoogleTrends
		out = append(out, rec)
	}
	return out, nil
}

// MetricsResult is a keyword record plus the average interest signal.
type MetricsResult struct {
	domain.KeywordRecord
	AvgInterest int `json:"avgInterest"`
}

// Metrics estimates metrics for a single keyword, upgrading the trend and
// source with a live Google Trends interest signal when one is available.
func (u *Keywords) Metrics(ctx domain.Context, keyword string) (MetricsResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return MetricsResult{}, fmt.Errorf("%w: keyword must not be empty", domain.ErrInvalidArgument)
	}
	est := estimator.Estimate(keyword)
	res := MetricsResult{KeywordRecord: estimator.Record(keyword), AvgInterest: est.AvgInterest}
	if avg, trend, err := u.trends.Interest(ctx, keyword); err == nil {
		res.Trend = trend
		res.Source = domain.SourceGoogleTrends
		res.AvgInterest = avg
	} else {
		slog.Warn("trends interest unavailable, keeping estimate", slog.String("keyword", keyword), slog.Any("error", err))
	}
	return res, nil
}
