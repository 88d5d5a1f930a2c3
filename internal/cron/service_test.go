package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/internal/notifications"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type heldLock struct{}

func (heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (heldLock) Release(context.Context) error         { return nil }

type memoryLockStore struct {
	data map[string]string
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	after := &testJob{name: "after"}
	reg := prometheus.NewRegistry()

	svc, err := NewService(ServiceParams{
		Logger:  logger.Nop(),
		Jobs:    []Job{ok, nil, failing, after},
		Metrics: metrics.NewJobMetrics(reg),
	})
	require.NoError(t, err)
	require.Len(t, svc.Jobs(), 3)

	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, after.runs)

	// the local lock is released after each cycle
	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Equal(t, 2, after.runs)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Jobs: []Job{job}, Lock: heldLock{}})
	require.NoError(t, err)

	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Zero(t, job.runs)
}

func TestNewServiceRequiresLogger(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestRedisLockOwnership(t *testing.T) {
	ctx := context.Background()
	store := &memoryLockStore{data: map[string]string{}}
	first, err := NewRedisLock(store, "bo:lock:housekeeping", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "bo:lock:housekeeping", time.Minute)
	require.NoError(t, err)

	got, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, got)

	// a replica that never held the lock must not free it
	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.data, "bo:lock:housekeeping")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.data, "bo:lock:housekeeping")

	got, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = NewRedisLock(nil, "k", 0)
	assert.Error(t, err)
}

func TestHousekeepingJobsAgainstLedger(t *testing.T) {
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	store := ledger.New(ledger.Options{Clock: clk})
	for _, item := range []models.InventoryItem{
		{ID: "A", Name: "Tote", Category: "bags", WholesalePrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(10), Quantity: 2},
		{ID: "B", Name: "Scarf", Category: "accessories", WholesalePrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(10), Quantity: 0},
		{ID: "C", Name: "Belt", Category: "accessories", WholesalePrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(10), Quantity: 50},
	} {
		_, err := store.UpsertInventoryItem(item)
		require.NoError(t, err)
	}
	svc, err := backoffice.NewService(backoffice.Deps{Store: store, Logger: logger.Nop()})
	require.NoError(t, err)

	digest, err := NewStockDigestJob(logger.Nop(), svc)
	require.NoError(t, err)
	retention, err := NewNotificationRetentionJob(logger.Nop(), svc.Notifications(), 24*time.Hour, clk)
	require.NoError(t, err)

	housekeeping, err := NewService(ServiceParams{Logger: logger.Nop(), Jobs: []Job{digest, retention}})
	require.NoError(t, err)
	require.NoError(t, housekeeping.RunCycle(context.Background()))

	feed, err := svc.Notifications().List(context.Background(), notifications.ListParams{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Reorder needed", feed.Items[0].Title)
	assert.Equal(t, "1 item(s) low on stock, 1 out of stock.", feed.Items[0].Message)

	_, err = svc.Notifications().MarkAllRead(context.Background())
	require.NoError(t, err)
	clk.Advance(48 * time.Hour)
	require.NoError(t, retention.Run(context.Background()))

	feed, err = svc.Notifications().List(context.Background(), notifications.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}
