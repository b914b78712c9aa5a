package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-base/config"
)

func TestQuotaLimiter_DailyLimitResetsNextDay(t *testing.T) {
	now := time.Date(2025, 5, 1, 23, 0, 0, 0, time.UTC)
	l := NewQuotaLimiter(config.AIQuotaConfig{RequestsPerDay: 2})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	assert.Equal(t, 2, l.Remaining())
	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Remaining())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 2, l.Remaining())
	ok, err = l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaLimiter_Unlimited(t *testing.T) {
	l := NewQuotaLimiter(config.AIQuotaConfig{})
	assert.Equal(t, -1, l.Remaining())
	for i := 0; i < 10; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}

	var nilLimiter *QuotaLimiter
	ok, err := nilLimiter.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuotaLimiter_PacingHonoursContext(t *testing.T) {
	l := NewQuotaLimiter(config.AIQuotaConfig{RequestsPerMinute: 1})
	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.False(t, ok)
	assert.Error(t, err)
}
