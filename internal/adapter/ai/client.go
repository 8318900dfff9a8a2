// Package ai implements chat-completion provider clients and tolerant
// response extraction for Groq, DeepSeek and OpenRouter.
package ai

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

// Provider ids
const (
	ProviderGroq       = "groq"
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
)

// provider bundles the per-provider connection settings resolved from config.
type provider struct {
	id      string
	baseURL string
	apiKey  string
	keyEnv  string
	referer string
	title   string
}

// Client implements domain.ChatClient against OpenAI-compatible chat
// completion endpoints. All three providers share one request shape; only
// base URL, credentials and optional attribution headers differ.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a provider client with a bounded per-call timeout.
func New(cfg config.Config) *Client {
	timeout := cfg.ChatTimeout
	if cfg.ScriptTimeout > timeout {
		// One shared client; the HTTP timeout is the outer bound, the
		// per-request context carries the task deadline.
		timeout = cfg.ScriptTimeout
	}
	return &Client{cfg: cfg, hc: &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}}
}

func (c *Client) resolve(id string) (provider, error) {
	switch id {
	case ProviderGroq:
		return provider{id: id, baseURL: c.cfg.GroqBaseURL, apiKey: c.cfg.GroqAPIKey, keyEnv: "GROQ_API_KEY"}, nil
	case ProviderDeepSeek:
		return provider{id: id, baseURL: c.cfg.DeepSeekBaseURL, apiKey: c.cfg.DeepSeekAPIKey, keyEnv: "DEEPSEEK_API_KEY"}, nil
	case ProviderOpenRouter:
		return provider{
			id: id, baseURL: c.cfg.OpenRouterBaseURL, apiKey: c.cfg.OpenRouterAPIKey, keyEnv: "OPENROUTER_API_KEY",
			referer: c.cfg.OpenRouterReferer, title: c.cfg.OpenRouterTitle,
		}, nil
	}
	return provider{}, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidArgument, id)
}

// buildBody composes the OpenAI-compatible request payload. With an image the
// user message becomes content blocks: one text part plus one image_url part
// carrying the JPEG as a base64 data URI.
func buildBody(req domain.ChatRequest) map[string]any {
	var userContent any = req.Prompt
	if len(req.ImageJPEG) > 0 {
		userContent = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]string{
				"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.ImageJPEG),
			}},
		}
	}
	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": userContent})
	body := map[string]any{
		"model":      req.Model,
		"messages":   messages,
		"max_tokens": req.MaxTokens,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	return body
}

func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}

// Call sends one chat-completion request and returns the first choice content.
func (c *Client) Call(ctx domain.Context, req domain.ChatRequest) (string, error) {
	p, err := c.resolve(req.Provider)
	if err != nil {
		return "", err
	}
	if p.apiKey == "" {
		slog.Error("provider API key missing", slog.String("provider", p.id), slog.String("env", p.keyEnv))
		return "", fmt.Errorf("%w: %s not set", domain.ErrProviderConfig, p.keyEnv)
	}

	b, _ := json.Marshal(buildBody(req))
	endpoint := p.baseURL + "/chat/completions"
	slog.Info("calling provider", slog.String("provider", p.id), slog.String("task", req.Task), slog.String("model", req.Model), slog.Int("max_tokens", req.MaxTokens))

	var out struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	var lastUpstream *domain.UpstreamError
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+p.apiKey)
		r.Header.Set("Content-Type", "application/json")
		if p.referer != "" {
			r.Header.Set("HTTP-Referer", p.referer)
		}
		if p.title != "" {
			r.Header.Set("X-Title", p.title)
		}
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues(p.id, req.Task).Inc()
		observability.AIRequestDuration.WithLabelValues(p.id, req.Task).Observe(time.Since(start).Seconds())
		if err != nil {
			slog.Warn("provider transport error", slog.String("provider", p.id), slog.String("task", req.Task), slog.Any("error", err))
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("failed to read response body", slog.String("provider", p.id), slog.Any("error", err))
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			// Retryable: let backoff handle retries
			lastUpstream = &domain.UpstreamError{Provider: p.id, Status: resp.StatusCode, Body: snippet(bodyBytes)}
			slog.Warn("provider rate limited", slog.String("provider", p.id), slog.String("task", req.Task), slog.Int("status", resp.StatusCode), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return lastUpstream
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client error: non-retryable
			lastUpstream = &domain.UpstreamError{Provider: p.id, Status: resp.StatusCode, Body: snippet(bodyBytes)}
			slog.Warn("provider 4xx", slog.String("provider", p.id), slog.String("task", req.Task), slog.Int("status", resp.StatusCode), slog.String("model", req.Model), slog.String("endpoint", endpoint), slog.String("body", lastUpstream.Body))
			return backoff.Permanent(lastUpstream)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// 5xx and others: retryable
			lastUpstream = &domain.UpstreamError{Provider: p.id, Status: resp.StatusCode, Body: snippet(bodyBytes)}
			slog.Error("provider non-2xx", slog.String("provider", p.id), slog.String("task", req.Task), slog.Int("status", resp.StatusCode), slog.String("model", req.Model), slog.String("endpoint", endpoint), slog.String("body", lastUpstream.Body))
			return lastUpstream
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("provider decode error", slog.String("provider", p.id), slog.String("task", req.Task), slog.String("model", req.Model), slog.Any("error", err))
			return err
		}
		return nil
	}
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxIvl, mult := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxIvl
	expo.Multiplier = mult
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		if lastUpstream != nil {
			return "", lastUpstream
		}
		return "", fmt.Errorf("%s api failed: %w", p.id, err)
	}

	if len(out.Choices) == 0 {
		slog.Error("provider returned empty choices", slog.String("provider", p.id), slog.String("task", req.Task))
		return "", fmt.Errorf("%w: empty choices from %s", domain.ErrNoContent, p.id)
	}
	slog.Info("provider call successful", slog.String("provider", p.id), slog.String("task", req.Task), slog.String("model", out.Model))
	return out.Choices[0].Message.Content, nil
}
