package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pawcraft/contentguard/pkg/infra/prometheus"
	"github.com/pawcraft/contentguard/pkg/types"
)

// Reporter is the outbound contract to the observability collaborator.
// Calls are fire-and-forget: delivery failures are logged and swallowed,
// never surfaced to sanitization callers.
type Reporter interface {
	ReportSecurityViolations(ctx context.Context, violations []types.SecurityViolation, rctx ReportContext)
	ReportPerformanceIssue(ctx context.Context, duration time.Duration, rctx ReportContext)
	ReportRateLimitExceeded(ctx context.Context, userID string, violationCount int, window time.Duration, rctx ReportContext)
	Shutdown()
}

type asyncReporter struct {
	logger   *logrus.Logger
	exporter Exporter
	breaker  *gobreaker.CircuitBreaker
	taskChan chan func()
	wg       sync.WaitGroup
	closed   atomic.Bool
}

// NewReporter wraps the exporter in a worker pool and a circuit breaker
// so a degraded backend cannot slow down or break the request path.
func NewReporter(logger *logrus.Logger, exporter Exporter, workers int) Reporter {
	if workers <= 0 {
		workers = 2
	}
	r := &asyncReporter{
		logger:   logger,
		exporter: exporter,
		taskChan: make(chan func(), 1000),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "security-event-reporting",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

func (r *asyncReporter) ReportSecurityViolations(_ context.Context, violations []types.SecurityViolation, rctx ReportContext) {
	if len(violations) == 0 {
		return
	}
	evt := NewSecurityEvent(EventTypeSecurityViolation, rctx)
	evt.Violations = append([]types.SecurityViolation(nil), violations...)
	evt.ViolationCount = len(violations)
	r.enqueue(evt)
}

func (r *asyncReporter) ReportPerformanceIssue(_ context.Context, duration time.Duration, rctx ReportContext) {
	evt := NewSecurityEvent(EventTypePerformanceIssue, rctx)
	evt.DurationMs = duration.Milliseconds()
	r.enqueue(evt)
}

func (r *asyncReporter) ReportRateLimitExceeded(_ context.Context, userID string, violationCount int, window time.Duration, rctx ReportContext) {
	rctx.UserID = userID
	evt := NewSecurityEvent(EventTypeRateLimitExceeded, rctx)
	evt.ViolationCount = violationCount
	evt.WindowMs = window.Milliseconds()
	r.enqueue(evt)
}

func (r *asyncReporter) Shutdown() {
	if r.closed.Swap(true) {
		return
	}
	close(r.taskChan)
	r.wg.Wait()
	r.exporter.Close()
}

func (r *asyncReporter) enqueue(evt *SecurityEvent) {
	if r.closed.Load() {
		return
	}
	task := func() { r.deliver(evt) }
	select {
	case r.taskChan <- task:
	default:
		// A full queue means the backend is already struggling; dropping
		// the event is preferable to blocking the request path.
		r.logger.WithField("event_type", evt.Type).Debug("reporting queue full, event dropped")
	}
}

func (r *asyncReporter) work() {
	defer r.wg.Done()
	for task := range r.taskChan {
		task()
	}
}

func (r *asyncReporter) deliver(evt *SecurityEvent) {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return nil, r.exporter.Handle(ctx, evt)
	})
	if err != nil {
		prometheus.ReportFailuresTotal.WithLabelValues(r.exporter.Name()).Inc()
		r.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": evt.Type,
			"exporter":   r.exporter.Name(),
		}).Warn("failed to deliver security event")
	}
}
