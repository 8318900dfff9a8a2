package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

var testImage = []byte{0xff, 0xd8, 0xff, 0xe0}

func TestVisionAnalyzeValidation(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(domain.ChatRequest) (string, error) { return "", nil }}
	u := NewVision(testCfg(), chat)

	_, err := u.Analyze(context.Background(), "", testImage)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = u.Analyze(context.Background(), "what is this", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Zero(t, chat.callCount())
}

func TestVisionAnalyzeSuccess(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		require.Equal(t, ai.ProviderGroq, req.Provider)
		require.Equal(t, "groq-vision", req.Model)
		require.Equal(t, testImage, req.ImageJPEG)
		switch req.Task {
		case "vision_heading":
			return " Catchy Title ", nil
		case "vision_description":
			return "A long description.", nil
		case "vision_hashtags":
			return "#go #golang", nil
		}
		return "", nil
	}}
	u := NewVision(testCfg(), chat)
	res, err := u.Analyze(context.Background(), "what is this", testImage)
	require.NoError(t, err)
	assert.Equal(t, "Catchy Title", res.Heading)
	assert.Equal(t, "A long description.", res.Description)
	assert.Equal(t, "#go #golang", res.Hashtags)
	assert.Equal(t, 3, chat.callCount())
}

func TestVisionAnalyzeDegradedLeg(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		if req.Task == "vision_heading" {
			return "", &domain.UpstreamError{Provider: "groq", Status: 500}
		}
		return "content", nil
	}}
	u := NewVision(testCfg(), chat)
	res, err := u.Analyze(context.Background(), "what is this", testImage)
	require.NoError(t, err)
	assert.Equal(t, "AI Analysis", res.Heading, "failed heading falls back to the default")
	assert.Equal(t, "content", res.Description)
	assert.Equal(t, "content", res.Hashtags)
}

func TestVisionAnalyzeAllLegsFail(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		return "", &domain.UpstreamError{Provider: "groq", Status: 503}
	}}
	u := NewVision(testCfg(), chat)
	_, err := u.Analyze(context.Background(), "what is this", testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestVisionPrompts(t *testing.T) {
	t.Parallel()
	h, d, g := visionPrompts("my product")
	assert.Contains(t, h, "Reply with only the title")
	assert.Contains(t, h, "my product")
	assert.Contains(t, d, "description")
	assert.Contains(t, g, "# symbol")
	assert.True(t, strings.Contains(g, "10"), "hashtag prompt caps the count")
}

func TestVisionCompare(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		switch req.Model {
		case "groq-vision":
			return "llama says hi", nil
		case "groq-llava":
			return "llava says hi", nil
		}
		return "", nil
	}}
	u := NewVision(testCfg(), chat)
	res, err := u.Compare(context.Background(), "what is this", testImage)
	require.NoError(t, err)
	assert.Equal(t, "llama says hi", res.Llama)
	assert.Equal(t, "llava says hi", res.Llava)
	assert.Equal(t, 2, chat.callCount())
}

func TestVisionCompareOneModelDown(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		if req.Model == "groq-llava" {
			return "", &domain.UpstreamError{Provider: "groq", Status: 500}
		}
		return "llama answer", nil
	}}
	u := NewVision(testCfg(), chat)
	res, err := u.Compare(context.Background(), "what is this", testImage)
	require.NoError(t, err)
	assert.Equal(t, "llama answer", res.Llama)
	assert.Equal(t, "model unavailable", res.Llava)
}

func TestVisionCompareBothDown(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		return "", &domain.UpstreamError{Provider: "groq", Status: 500}
	}}
	u := NewVision(testCfg(), chat)
	_, err := u.Compare(context.Background(), "what is this", testImage)
	require.ErrorIs(t, err, domain.ErrUpstream)
}
