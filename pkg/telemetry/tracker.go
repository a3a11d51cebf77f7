package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const violationKeyPattern = "contentguard:violations:%s"

// ViolationTracker keeps a sliding-window count of violations per user
// so repeated offenders can be reported to the monitoring collaborator.
// Redis unavailability degrades to no tracking; it never affects
// sanitization.
type ViolationTracker struct {
	redis        *redis.Client
	logger       *logrus.Logger
	threshold    int
	window       time.Duration
	timeProvider func() time.Time
}

type ViolationTrackerOpts struct {
	TimeProvider func() time.Time
}

func NewViolationTracker(
	redisClient *redis.Client,
	logger *logrus.Logger,
	threshold int,
	window time.Duration,
	opts *ViolationTrackerOpts,
) *ViolationTracker {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &ViolationTracker{
		redis:        redisClient,
		logger:       logger,
		threshold:    threshold,
		window:       window,
		timeProvider: timeProvider,
	}
}

// Track records count new violations for userID and returns the total in
// the current window and whether the configured threshold was exceeded.
func (t *ViolationTracker) Track(ctx context.Context, userID string, count int) (int64, bool) {
	if t.redis == nil || userID == "" || count <= 0 {
		return 0, false
	}

	now := t.timeProvider()
	key := fmt.Sprintf(violationKeyPattern, userID)
	windowStart := now.Add(-t.window).UnixNano()

	pipe := t.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	for i := 0; i < count; i++ {
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  float64(now.UnixNano()),
			Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.Itoa(i),
		})
	}
	cardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, t.window)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.WithError(err).WithField("user_id", userID).Warn("violation tracking unavailable")
		return 0, false
	}

	total := cardCmd.Val()
	return total, total >= int64(t.threshold)
}

func (t *ViolationTracker) Threshold() int {
	return t.threshold
}

func (t *ViolationTracker) Window() time.Duration {
	return t.window
}
