package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

// ScriptInput are the knobs for video script generation. Tone is 0-100;
// 50 is balanced, above leans professional, below conversational.
type ScriptInput struct {
	Topic           string   `json:"topic" validate:"required"`
	Format          string   `json:"format"`
	Tone            int      `json:"tone"`
	Keywords        []string `json:"keywords"`
	IncludeHooks    bool     `json:"includeHooks"`
	AddCTA          bool     `json:"addCTA"`
	SEOOptimization bool     `json:"seoOptimization"`
}

// Script generates a structured video script through the Groq vision model.
type Script struct {
	cfg  config.Config
	chat domain.ChatClient
	ex   ai.Extractor
}

// NewScript wires the script generator.
func NewScript(cfg config.Config, chat domain.ChatClient) *Script {
	return &Script{cfg: cfg, chat: chat, ex: ai.NewExtractor()}
}

func toneInstruction(tone int) string {
	switch {
	case tone > 50:
		return "Use a professional, authoritative tone."
	case tone < 50:
		return "Use a conversational, friendly tone."
	default:
		return "Use a balanced tone."
	}
}

func sections(in ScriptInput) []string {
	out := []string{"Introduction"}
	if in.IncludeHooks {
		out = append(out, "Hook")
	}
	out = append(out, "Main Content")
	if in.SEOOptimization {
		out = append(out, "SEO Tips")
	}
	if in.AddCTA {
		out = append(out, "Call to Action")
	}
	out = append(out, "Conclusion")
	return out
}

func scriptPrompt(in ScriptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a YouTube video script about %q.", in.Topic)
	if in.Format != "" {
		fmt.Fprintf(&b, " Format: %s.", in.Format)
	}
	b.WriteString(" " + toneInstruction(in.Tone))
	if len(in.Keywords) > 0 {
		fmt.Fprintf(&b, " Work in these keywords naturally: %s.", strings.Join(in.Keywords, ", "))
	}
	fmt.Fprintf(&b, " Structure the script with these sections: %s.", strings.Join(sections(in), ", "))
	b.WriteString(` Respond in JSON: {"outline": [section names], "script": [slide content for each section]}. Do not include any other text.`)
	return b.String()
}

// Generate produces an outline plus per-slide script text. Unparseable
// provider output degrades to the raw text as a single script entry.
func (u *Script) Generate(ctx domain.Context, in ScriptInput) (domain.ScriptResult, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return domain.ScriptResult{}, fmt.Errorf("%w: topic must not be empty", domain.ErrInvalidArgument)
	}
	raw, err := u.chat.Call(ctx, domain.ChatRequest{
		Provider:  ai.ProviderGroq,
		Model:     u.cfg.GroqVisionModel,
		Task:      "script",
		Prompt:    scriptPrompt(in),
		MaxTokens: 1200,
	})
	if err != nil {
		return domain.ScriptResult{}, err
	}
	return u.ex.Script(raw), nil
}
