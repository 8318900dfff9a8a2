package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

func TestSocialRequiresImageOrTopic(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(domain.ChatRequest) (string, error) { return "", nil }}
	u := NewSocial(testCfg(), chat)
	_, err := u.Generate(context.Background(), "  ", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Zero(t, chat.callCount())
}

func TestSocialBothLegsSucceed(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		require.Equal(t, ai.ProviderGroq, req.Provider)
		if req.Task == "tweets" {
			return "t1\nt2\nt3", nil
		}
		return "p1\np2", nil
	}}
	u := NewSocial(testCfg(), chat)
	res, err := u.Generate(context.Background(), "golang", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, res.Tweets)
	assert.Equal(t, []string{"p1", "p2"}, res.IGs)
	assert.Equal(t, 2, chat.callCount(), "no fallback when both legs succeed")
}

func TestSocialTopicInPrompt(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		assert.Contains(t, req.Prompt, "Topic: golang")
		return "line", nil
	}}
	u := NewSocial(testCfg(), chat)
	_, err := u.Generate(context.Background(), "golang", nil)
	require.NoError(t, err)
}

func TestSocialImageAttached(t *testing.T) {
	t.Parallel()
	img := []byte{0xff, 0xd8, 0xff}
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		assert.Equal(t, img, req.ImageJPEG)
		assert.Contains(t, req.Prompt, "this image")
		return "line", nil
	}}
	u := NewSocial(testCfg(), chat)
	_, err := u.Generate(context.Background(), "", img)
	require.NoError(t, err)
}

func TestSocialSelectiveFallback(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{}
	chat.fn = func(req domain.ChatRequest) (string, error) {
		if req.Provider == ai.ProviderGroq {
			if req.Task == "tweets" {
				return "", &domain.UpstreamError{Provider: "groq", Status: 500}
			}
			return "ig1\nig2", nil
		}
		// fallback serves only the failed artifact
		require.Equal(t, ai.ProviderOpenRouter, req.Provider)
		require.Equal(t, "tweets", req.Task)
		assert.Equal(t, "or-social", req.Model)
		assert.Empty(t, req.ImageJPEG, "fallback model has no vision support")
		return "fb1\nfb2\nfb3", nil
	}
	u := NewSocial(testCfg(), chat)
	res, err := u.Generate(context.Background(), "golang", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"fb1", "fb2", "fb3"}, res.Tweets)
	assert.Equal(t, []string{"ig1", "ig2"}, res.IGs)
	assert.Len(t, chat.callsFor(ai.ProviderOpenRouter), 1)
}

func TestSocialPartialResultIsSuccess(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		if req.Task == "tweets" {
			return "t1", nil
		}
		return "", &domain.UpstreamError{Provider: req.Provider, Status: 500}
	}}
	u := NewSocial(testCfg(), chat)
	res, err := u.Generate(context.Background(), "golang", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, res.Tweets)
	assert.Empty(t, res.IGs)
	assert.NotNil(t, res.IGs, "degraded field stays an empty list, not null")
}

func TestSocialAllFail(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{fn: func(req domain.ChatRequest) (string, error) {
		return "", &domain.UpstreamError{Provider: req.Provider, Status: 503}
	}}
	u := NewSocial(testCfg(), chat)
	_, err := u.Generate(context.Background(), "golang", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	// groq tweets + groq igs + openrouter tweets + openrouter igs
	assert.Equal(t, 4, chat.callCount())
}
