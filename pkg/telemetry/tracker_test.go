package telemetry_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/telemetry"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func expectTrack(mock redismock.ClientMock, key string, now time.Time, window time.Duration, count int, total int64) {
	windowStart := now.Add(-window).UnixNano()

	mock.ExpectTxPipeline()
	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(windowStart, 10)).SetVal(0)
	for i := 0; i < count; i++ {
		mock.ExpectZAdd(key, &redis.Z{
			Score:  float64(now.UnixNano()),
			Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.Itoa(i),
		}).SetVal(1)
	}
	mock.ExpectZCard(key).SetVal(total)
	mock.ExpectExpire(key, window).SetVal(true)
	mock.ExpectTxPipelineExec()
}

func TestViolationTrackerBelowThreshold(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1756200000, 0)
	window := time.Minute

	expectTrack(mock, "contentguard:violations:user-1", now, window, 2, 2)

	tracker := telemetry.NewViolationTracker(client, testLogger(), 5, window, &telemetry.ViolationTrackerOpts{
		TimeProvider: fixedClock(now),
	})

	total, exceeded := tracker.Track(context.Background(), "user-1", 2)

	assert.Equal(t, int64(2), total)
	assert.False(t, exceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationTrackerThresholdExceeded(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1756200000, 0)
	window := time.Minute

	expectTrack(mock, "contentguard:violations:user-1", now, window, 1, 5)

	tracker := telemetry.NewViolationTracker(client, testLogger(), 5, window, &telemetry.ViolationTrackerOpts{
		TimeProvider: fixedClock(now),
	})

	total, exceeded := tracker.Track(context.Background(), "user-1", 1)

	assert.Equal(t, int64(5), total)
	assert.True(t, exceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationTrackerDegradesWhenRedisFails(t *testing.T) {
	client, _ := redismock.NewClientMock()

	tracker := telemetry.NewViolationTracker(client, testLogger(), 5, time.Minute, nil)

	// No expectations registered, so the pipeline errors out.
	total, exceeded := tracker.Track(context.Background(), "user-1", 1)

	assert.Equal(t, int64(0), total)
	assert.False(t, exceeded)
}

func TestViolationTrackerSkipsUntrackableCalls(t *testing.T) {
	tracker := telemetry.NewViolationTracker(nil, testLogger(), 5, time.Minute, nil)

	total, exceeded := tracker.Track(context.Background(), "user-1", 3)
	assert.Zero(t, total)
	assert.False(t, exceeded)

	client, _ := redismock.NewClientMock()
	tracker = telemetry.NewViolationTracker(client, testLogger(), 5, time.Minute, nil)

	total, exceeded = tracker.Track(context.Background(), "", 3)
	assert.Zero(t, total)
	assert.False(t, exceeded)

	total, exceeded = tracker.Track(context.Background(), "user-1", 0)
	assert.Zero(t, total)
	assert.False(t, exceeded)
}

func TestViolationTrackerAccessors(t *testing.T) {
	tracker := telemetry.NewViolationTracker(nil, testLogger(), 7, 90*time.Second, nil)
	assert.Equal(t, 7, tracker.Threshold())
	assert.Equal(t, 90*time.Second, tracker.Window())
}
