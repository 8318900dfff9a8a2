package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelay(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		last     time.Time
		cooldown time.Duration
		want     time.Duration
	}{
		{"zero last", time.Time{}, time.Second, 0},
		{"zero cooldown", now.Add(-time.Millisecond), 0, 0},
		{"negative cooldown", now.Add(-time.Millisecond), -time.Second, 0},
		{"cooldown elapsed", now.Add(-2 * time.Second), time.Second, 0},
		{"exactly elapsed", now.Add(-time.Second), time.Second, 0},
		{"mid cooldown", now.Add(-300 * time.Millisecond), time.Second, 700 * time.Millisecond},
		{"just called", now, time.Second, time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Delay(now, tc.last, tc.cooldown))
		})
	}
}

func TestPacerWaitSpacing(t *testing.T) {
	t.Parallel()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration
	p := New(time.Second)
	p.now = func() time.Time { return current }
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.NoError(t, p.Wait(context.Background()))
	assert.Empty(t, slept, "first call never waits")

	require.NoError(t, p.Wait(context.Background()))
	require.Len(t, slept, 1)
	assert.Equal(t, time.Second, slept[0])

	current = current.Add(3 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	assert.Len(t, slept, 1, "cooldown already elapsed")
}

func TestPacerWaitCancelled(t *testing.T) {
	t.Parallel()
	p := New(time.Minute)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
