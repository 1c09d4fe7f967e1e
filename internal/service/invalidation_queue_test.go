package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyInvalidator struct {
	mu       sync.Mutex
	failures int
	keys     []string
}

func (f *flakyInvalidator) Invalidate(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	if f.failures > 0 {
		f.failures--
		return errors.New("redis timeout")
	}
	return nil
}

func (f *flakyInvalidator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

func TestInvalidationQueueImmediate(t *testing.T) {
	target := &flakyInvalidator{}
	q := NewInvalidationQueue(target, time.Millisecond, nil)
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Invalidate(context.Background(), "XOO_P1"))
	assert.Equal(t, 1, target.calls())
}

func TestInvalidationQueueRetriesInBackground(t *testing.T) {
	target := &flakyInvalidator{failures: 2}
	q := NewInvalidationQueue(target, time.Millisecond, nil)
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Invalidate(context.Background(), "XOO_P1"))
	assert.Eventually(t, func() bool { return target.calls() == 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestInvalidationQueueNotStarted(t *testing.T) {
	target := &flakyInvalidator{failures: 1}
	q := NewInvalidationQueue(target, time.Millisecond, nil)

	assert.EqualError(t, q.Invalidate(context.Background(), "XOO_P1"), "redis timeout")
}
