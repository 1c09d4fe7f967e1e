package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	done := make(chan string, 1)
	q := NewQueue("invalidate", func(_ context.Context, key string) error {
		if calls.Add(1) < 3 {
			return errors.New("redis down")
		}
		done <- key
		return nil
	}, QueueConfig{RetryDelay: time.Millisecond, MaxRetries: 5})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("XOO_P1"))
	select {
	case key := <-done:
		assert.Equal(t, "XOO_P1", key)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	q := NewQueue("invalidate", func(context.Context, string) error {
		calls.Add(1)
		return errors.New("redis down")
	}, QueueConfig{RetryDelay: time.Millisecond, MaxRetries: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("XOO_P1"))
	assert.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueRejectsWhenNotRunningOrFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("invalidate", func(ctx context.Context, _ string) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{BufferSize: 1})

	assert.ErrorIs(t, q.Enqueue("a"), ErrNotStarted)

	q.Start(context.Background())
	require.NoError(t, q.Enqueue("a"))
	assert.Eventually(t, func() bool { return len(q.tasks) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue("b"))
	assert.ErrorIs(t, q.Enqueue("c"), ErrFull)

	close(block)
	q.Stop()
	assert.ErrorIs(t, q.Enqueue("d"), ErrNotStarted)
}
