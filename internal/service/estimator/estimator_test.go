package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()
	a := Estimate("golang tutorial")
	b := Estimate("golang tutorial")
	assert.Equal(t, a, b)
}

func TestEstimateDiffersByKeyword(t *testing.T) {
	t.Parallel()
	keywords := []string{"golang", "python basics", "how to edit thumbnails fast", "cats"}
	distinct := map[Metrics]struct{}{}
	for _, kw := range keywords {
		distinct[Estimate(kw)] = struct{}{}
	}
	assert.Greater(t, len(distinct), 1)
}

func TestEstimateBounds(t *testing.T) {
	t.Parallel()
	keywords := []string{
		"go", "golang", "golang tutorial", "golang tutorial for beginners 2024",
		"x", "a b c d e f", "thumbnails", "youtube seo keyword research guide",
	}
	for _, kw := range keywords {
		m := Estimate(kw)
		assert.GreaterOrEqual(t, m.SearchVolume, 100, kw)
		assert.LessOrEqual(t, m.SearchVolume, 50000, kw)
		assert.GreaterOrEqual(t, m.Competition, float64(10), kw)
		assert.LessOrEqual(t, m.Competition, float64(95), kw)
		assert.Contains(t, []string{domain.TrendUp, domain.TrendStable, domain.TrendDown}, m.Trend, kw)
		assert.Contains(t, []string{"easy", "medium", "hard"}, m.Difficulty, kw)
		assert.GreaterOrEqual(t, m.MagicScore, float64(5), kw)
		assert.LessOrEqual(t, m.MagicScore, float64(95), kw)
		assert.GreaterOrEqual(t, m.AvgInterest, 0, kw)
	}
}

func TestEstimateDifficultyBuckets(t *testing.T) {
	t.Parallel()
	// The bucket must follow the overall score, whatever the keyword.
	for _, kw := range []string{"alpha", "beta tips", "gamma delta epsilon zeta eta"} {
		m := Estimate(kw)
		switch {
		case m.OverallScore > 70:
			assert.Equal(t, "easy", m.Difficulty, kw)
		case m.OverallScore > 40:
			assert.Equal(t, "medium", m.Difficulty, kw)
		default:
			assert.Equal(t, "hard", m.Difficulty, kw)
		}
	}
}

func TestEstimateAvgInterestFollowsOverall(t *testing.T) {
	t.Parallel()
	m := Estimate("stream setup")
	assert.Equal(t, int(m.OverallScore*0.8), m.AvgInterest)
}

func TestRecord(t *testing.T) {
	t.Parallel()
	rec := Record("  golang tutorial  ")
	m := Estimate("  golang tutorial  ")

	assert.Equal(t, "golang tutorial", rec.Keyword)
	assert.Equal(t, m.SearchVolume, rec.SearchVolume)
	assert.Equal(t, m.Competition, rec.Competition)
	assert.Equal(t, m.Trend, rec.Trend)
	assert.Equal(t, domain.SourceEstimated, rec.Source)

	require.GreaterOrEqual(t, rec.Difficulty, float64(1))
	require.LessOrEqual(t, rec.Difficulty, float64(100))
	// Numeric difficulty inverts the overall score, clamped to [1, 100].
	want := 100 - m.OverallScore
	if want < 1 {
		want = 1
	}
	if want > 100 {
		want = 100
	}
	assert.InDelta(t, want, rec.Difficulty, 0.001)
}
