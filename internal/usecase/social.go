package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

// Social generates tweet and Instagram post suggestions from an image, a
// topic, or both.
type Social struct {
	cfg  config.Config
	chat domain.ChatClient
	ex   ai.Extractor
}

// NewSocial wires the social post generator.
func NewSocial(cfg config.Config, chat domain.ChatClient) *Social {
	return &Social{cfg: cfg, chat: chat, ex: ai.NewExtractor()}
}

func socialPrompts(topic string, hasImage bool) (tweet, ig string) {
	subject := "this image"
	if !hasImage {
		subject = "this topic"
	}
	tweet = fmt.Sprintf("Generate 3 creative, viral tweets (each max 280 chars, no hashtags) based on %s. One tweet per line.", subject)
	ig = fmt.Sprintf("Write 3 engaging Instagram posts (each max 300 chars, friendly tone, emoji ok, no hashtags) based on %s. One post per line.", subject)
	if topic != "" {
		tweet += "\nTopic: " + topic
		ig += "\nTopic: " + topic
	}
	return tweet, ig
}

// Generate runs the tweet and Instagram legs concurrently against Groq, then
// retries only the legs that produced nothing through OpenRouter. Both legs
// empty after fallback is an error; a single empty leg is a degraded success.
func (u *Social) Generate(ctx domain.Context, topic string, imageJPEG []byte) (domain.SocialPosts, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" && len(imageJPEG) == 0 {
		return domain.SocialPosts{}, fmt.Errorf("%w: provide an image or a topic", domain.ErrInvalidArgument)
	}
	tweetPrompt, igPrompt := socialPrompts(topic, len(imageJPEG) > 0)

	type legResult struct {
		lines []string
		err   error
	}
	run := func(task, prompt string, res *legResult) {
		raw, err := u.chat.Call(ctx, domain.ChatRequest{
			Provider:  ai.ProviderGroq,
			Model:     u.cfg.GroqVisionModel,
			Task:      task,
			Prompt:    prompt,
			ImageJPEG: imageJPEG,
			MaxTokens: 800,
		})
		if err != nil {
			res.err = err
			return
		}
		res.lines = u.ex.Lines(raw)
	}

	var tweets, igs legResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); run("tweets", tweetPrompt, &tweets) }()
	go func() { defer wg.Done(); run("ig_posts", igPrompt, &igs) }()
	wg.Wait()

	// Retry only the artifacts that came up empty. The fallback model has no
	// vision support, so this leg goes out text-only.
	fallback := func(task, prompt string, res *legResult) {
		observability.ProviderFallbackTotal.WithLabelValues(task, ai.ProviderOpenRouter).Inc()
		if res.err != nil {
			slog.Warn("social leg failed, falling back", slog.String("task", task), slog.Any("error", res.err))
		}
		raw, err := u.chat.Call(ctx, domain.ChatRequest{
			Provider:  ai.ProviderOpenRouter,
			Model:     u.cfg.OpenRouterSocialModel,
			Task:      task,
			Prompt:    prompt,
			MaxTokens: 800,
		})
		if err != nil {
			if res.err == nil {
				res.err = err
			}
			return
		}
		res.err = nil
		res.lines = u.ex.Lines(raw)
	}
	if len(tweets.lines) == 0 {
		fallback("tweets", tweetPrompt, &tweets)
	}
	if len(igs.lines) == 0 {
		fallback("ig_posts", igPrompt, &igs)
	}

	if len(tweets.lines) == 0 && len(igs.lines) == 0 {
		err := tweets.err
		if err == nil {
			err = igs.err
		}
		if err != nil {
			return domain.SocialPosts{}, fmt.Errorf("all social providers failed: %w", err)
		}
		return domain.SocialPosts{}, fmt.Errorf("%w: no posts from any provider", domain.ErrNoContent)
	}
	return domain.SocialPosts{Tweets: orEmpty(tweets.lines), IGs: orEmpty(igs.lines)}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
