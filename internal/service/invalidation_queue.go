package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/pkg/jobs"
)

// InvalidationQueue drops cached changelog pages of a profile and retries in the background
// when the cache does not answer.
type InvalidationQueue struct {
	target changelogInvalidator
	queue  *jobs.Queue[string]
	logger *zap.Logger
}

// NewInvalidationQueue wraps target. Call Start before serving writes and Stop on shutdown.
func NewInvalidationQueue(target changelogInvalidator, retryDelay time.Duration, logger *zap.Logger) *InvalidationQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &InvalidationQueue{target: target, logger: logger}
	q.queue = jobs.NewQueue("changelog-invalidation", target.Invalidate, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 5,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	return q
}

// Start launches the retry worker.
func (q *InvalidationQueue) Start(ctx context.Context) { q.queue.Start(ctx) }

// Stop halts the retry worker; pending retries are dropped.
func (q *InvalidationQueue) Stop() { q.queue.Stop() }

// Invalidate drops the cached pages of profileKey now, or hands the key to the retry worker.
// An error is returned only when neither succeeded.
func (q *InvalidationQueue) Invalidate(ctx context.Context, profileKey string) error {
	err := q.target.Invalidate(ctx, profileKey)
	if err == nil {
		return nil
	}
	if qerr := q.queue.Enqueue(profileKey); qerr != nil {
		q.logger.Warn("changelog invalidation not queued", zap.String("profile", profileKey), zap.Error(qerr))
		return err
	}
	q.logger.Info("changelog invalidation deferred", zap.String("profile", profileKey), zap.Error(err))
	return nil
}
