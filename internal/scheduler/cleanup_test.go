package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("30 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("0 30 3 * * *"), "seconds field is not accepted")
}

func TestCleanupScheduler_StartStop(t *testing.T) {
	s := NewCleanupScheduler("30 3 * * *", func(context.Context) error { return nil }, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 30, next.Minute())

	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestCleanupScheduler_EmptyScheduleDisables(t *testing.T) {
	s := NewCleanupScheduler("", func(context.Context) error { return nil }, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewCleanupScheduler("every night", func(context.Context) error { return nil }, zerolog.Nop())

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestCleanupScheduler_StopsWithContext(t *testing.T) {
	s := NewCleanupScheduler("30 3 * * *", func(context.Context) error { return nil }, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestCleanupScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	s := NewCleanupScheduler("30 3 * * *", func(context.Context) error {
		calls.Add(1)
		return errors.New("queue unavailable")
	}, zerolog.Nop())

	s.RunNow()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}
