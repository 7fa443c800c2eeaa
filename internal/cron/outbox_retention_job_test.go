package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOutboxRetentionJobDeletesExpiredRows(t *testing.T) {
	now := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{pending: 3}
	job := newOutboxRetentionJob(t, repo, 7*24*time.Hour, 10)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.lastCutoff)
	assert.Equal(t, 10, repo.minAttempts)
	assert.Equal(t, 10, repo.lastLimit)
	assert.Equal(t, 1, repo.called)
}

func TestOutboxRetentionJobDrainsInBatches(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{pending: 25}
	job := newOutboxRetentionJob(t, repo, time.Hour, 10)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, repo.called, "10 + 10 + 5")
	assert.Zero(t, repo.pending)
}

func TestOutboxRetentionJobStopsOnExactMultiple(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{pending: 20}
	job := newOutboxRetentionJob(t, repo, time.Hour, 10)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, repo.called, "a final empty batch confirms the backlog is drained")
}

func TestOutboxRetentionJobDefaults(t *testing.T) {
	now := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, 0, 0)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-defaultOutboxRetention), repo.lastCutoff)
	assert.Equal(t, defaultRetentionBatch, repo.lastLimit)
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo, time.Hour, 10)

	assert.Error(t, job.Run(context.Background()))
}

func TestOutboxRetentionJobHonoursCancellation(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{pending: 100}
	job := newOutboxRetentionJob(t, repo, time.Hour, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Zero(t, repo.called)
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, retention time.Duration, batch int) *outboxRetentionJob {
	t.Helper()
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      testLogger(),
		DB:          passthroughTx{},
		Repository:  repo,
		Retention:   retention,
		MaxAttempts: 10,
		BatchSize:   batch,
	})
	require.NoError(t, err)
	job, ok := jobIface.(*outboxRetentionJob)
	require.True(t, ok, "expected outboxRetentionJob, got %T", jobIface)
	return job
}

type fakeOutboxRetentionRepo struct {
	pending     int64
	lastCutoff  time.Time
	minAttempts int
	lastLimit   int
	called      int
	err         error
}

func (f *fakeOutboxRetentionRepo) DeleteExpiredBatch(_ context.Context, _ *gorm.DB, cutoff time.Time, minAttemptCount, limit int) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	f.minAttempts = minAttemptCount
	f.lastLimit = limit
	if f.err != nil {
		return 0, f.err
	}
	n := min(f.pending, int64(limit))
	f.pending -= n
	return n, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
