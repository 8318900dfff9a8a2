package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

const defaultHeading = "AI Analysis"

// Vision answers image questions: the three-part analysis behind
// /upload_and_query and the two-model comparison behind /compare_models.
type Vision struct {
	cfg  config.Config
	chat domain.ChatClient
}

// NewVision wires the vision orchestrator.
func NewVision(cfg config.Config, chat domain.ChatClient) *Vision {
	return &Vision{cfg: cfg, chat: chat}
}

func visionPrompts(query string) (heading, description, hashtags string) {
	heading = fmt.Sprintf("Generate a catchy, relevant heading/title for a social media post about this image. Context: %s. Reply with only the title.", query)
	description = fmt.Sprintf("Generate a detailed, post-ready description for a social media post about this image. Context: %s.", query)
	hashtags = fmt.Sprintf("Generate up to 10 highly relevant social media hashtags for this image. Context: %s. Reply with a single line, separated by spaces, each starting with the # symbol.", query)
	return heading, description, hashtags
}

// Analyze issues the heading, description and hashtag prompts concurrently
// and waits for all three. A failed leg degrades to its default value; only
// three failed legs make the whole call fail.
func (u *Vision) Analyze(ctx domain.Context, query string, imageJPEG []byte) (domain.ImageAnalysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ImageAnalysis{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if len(imageJPEG) == 0 {
		return domain.ImageAnalysis{}, fmt.Errorf("%w: image is required", domain.ErrInvalidArgument)
	}
	headingPrompt, descPrompt, tagsPrompt := visionPrompts(query)

	type leg struct {
		task    string
		prompt  string
		deflt   string
		content string
		err     error
	}
	legs := []*leg{
		{task: "heading", prompt: headingPrompt, deflt: defaultHeading},
		{task: "description", prompt: descPrompt},
		{task: "hashtags", prompt: tagsPrompt},
	}
	var wg sync.WaitGroup
	for _, l := range legs {
		wg.Add(1)
		go func(l *leg) {
			defer wg.Done()
			raw, err := u.chat.Call(ctx, domain.ChatRequest{
				Provider:  ai.ProviderGroq,
				Model:     u.cfg.GroqVisionModel,
				Task:      "vision_" + l.task,
				Prompt:    l.prompt,
				ImageJPEG: imageJPEG,
				MaxTokens: 1000,
			})
			if err != nil {
				l.err = err
				return
			}
			l.content = strings.TrimSpace(raw)
		}(l)
	}
	wg.Wait()

	failed := 0
	for _, l := range legs {
		if l.err != nil || l.content == "" {
			if l.err != nil {
				failed++
				slog.Warn("vision leg failed", slog.String("task", l.task), slog.Any("error", l.err))
			}
			l.content = l.deflt
		}
	}
	if failed == len(legs) {
		return domain.ImageAnalysis{}, fmt.Errorf("image analysis failed: %w", legs[0].err)
	}
	return domain.ImageAnalysis{
		Heading:     legs[0].content,
		Description: legs[1].content,
		Hashtags:    legs[2].content,
	}, nil
}

// Compare sends the same question and image to both vision models
// concurrently. One failed model degrades to an error note in its slot; both
// failing fails the call.
func (u *Vision) Compare(ctx domain.Context, query string, imageJPEG []byte) (domain.ModelComparison, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ModelComparison{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if len(imageJPEG) == 0 {
		return domain.ModelComparison{}, fmt.Errorf("%w: image is required", domain.ErrInvalidArgument)
	}

	models := [2]string{u.cfg.GroqVisionModel, u.cfg.GroqLlavaModel}
	tasks := [2]string{"compare_llama", "compare_llava"}
	var answers [2]string
	var errs [2]error
	var wg sync.WaitGroup
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := u.chat.Call(ctx, domain.ChatRequest{
				Provider:  ai.ProviderGroq,
				Model:     models[i],
				Task:      tasks[i],
				Prompt:    query,
				ImageJPEG: imageJPEG,
				MaxTokens: 1000,
			})
			if err != nil {
				errs[i] = err
				return
			}
			answers[i] = strings.TrimSpace(raw)
		}(i)
	}
	wg.Wait()

	if errs[0] != nil && errs[1] != nil {
		return domain.ModelComparison{}, fmt.Errorf("model comparison failed: %w", errs[0])
	}
	for i := range answers {
		if errs[i] != nil {
			slog.Warn("comparison model failed", slog.String("model", models[i]), slog.Any("error", errs[i]))
			answers[i] = "model unavailable"
		}
	}
	return domain.ModelComparison{Llama: answers[0], Llava: answers[1]}, nil
}
