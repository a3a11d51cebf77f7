package telemetry_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcraft/contentguard/pkg/telemetry"
	"github.com/pawcraft/contentguard/pkg/types"
)

type captureExporter struct {
	mu     sync.Mutex
	events []*telemetry.SecurityEvent
	err    error
	closed bool
}

func (e *captureExporter) Name() string { return "capture" }

func (e *captureExporter) Handle(_ context.Context, evt *telemetry.SecurityEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, evt)
	return nil
}

func (e *captureExporter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *captureExporter) captured() []*telemetry.SecurityEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*telemetry.SecurityEvent, len(e.events))
	copy(out, e.events)
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestReporterDeliversSecurityViolations(t *testing.T) {
	exporter := &captureExporter{}
	reporter := telemetry.NewReporter(testLogger(), exporter, 1)
	defer reporter.Shutdown()

	violations := []types.SecurityViolation{
		{ID: "v1", Kind: types.ViolationScriptTag, Severity: types.SeverityCritical},
	}
	reporter.ReportSecurityViolations(context.Background(), violations, telemetry.ReportContext{
		UserID:      "user-1",
		ContentType: types.ContentTypeUserProfile,
		Source:      "api",
	})

	assert.Eventually(t, func() bool {
		return len(exporter.captured()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	evt := exporter.captured()[0]
	assert.Equal(t, telemetry.EventTypeSecurityViolation, evt.Type)
	assert.Equal(t, "user-1", evt.Context.UserID)
	assert.Equal(t, 1, evt.ViolationCount)
	require.Len(t, evt.Violations, 1)
	assert.Equal(t, "v1", evt.Violations[0].ID)
	assert.NotEmpty(t, evt.EventID)
}

func TestReporterIgnoresEmptyViolationList(t *testing.T) {
	exporter := &captureExporter{}
	reporter := telemetry.NewReporter(testLogger(), exporter, 1)

	reporter.ReportSecurityViolations(context.Background(), nil, telemetry.ReportContext{})
	reporter.Shutdown()

	assert.Empty(t, exporter.captured())
}

func TestReporterDeliversRateLimitEvents(t *testing.T) {
	exporter := &captureExporter{}
	reporter := telemetry.NewReporter(testLogger(), exporter, 1)
	defer reporter.Shutdown()

	reporter.ReportRateLimitExceeded(context.Background(), "user-2", 12, time.Minute, telemetry.ReportContext{Source: "api"})

	assert.Eventually(t, func() bool {
		return len(exporter.captured()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	evt := exporter.captured()[0]
	assert.Equal(t, telemetry.EventTypeRateLimitExceeded, evt.Type)
	assert.Equal(t, "user-2", evt.Context.UserID)
	assert.Equal(t, 12, evt.ViolationCount)
	assert.Equal(t, time.Minute.Milliseconds(), evt.WindowMs)
}

func TestReporterDeliversPerformanceIssues(t *testing.T) {
	exporter := &captureExporter{}
	reporter := telemetry.NewReporter(testLogger(), exporter, 1)
	defer reporter.Shutdown()

	reporter.ReportPerformanceIssue(context.Background(), 1500*time.Millisecond, telemetry.ReportContext{Source: "sanitizer"})

	assert.Eventually(t, func() bool {
		return len(exporter.captured()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1500), exporter.captured()[0].DurationMs)
}

func TestReporterSwallowsExporterFailures(t *testing.T) {
	exporter := &captureExporter{err: errors.New("backend down")}
	reporter := telemetry.NewReporter(testLogger(), exporter, 2)

	for i := 0; i < 20; i++ {
		reporter.ReportSecurityViolations(context.Background(), []types.SecurityViolation{
			{ID: "v1", Kind: types.ViolationScriptTag, Severity: types.SeverityCritical},
		}, telemetry.ReportContext{})
	}
	reporter.Shutdown()

	assert.Empty(t, exporter.captured())
	assert.True(t, exporter.closed)
}

func TestReporterIsSafeAfterShutdown(t *testing.T) {
	exporter := &captureExporter{}
	reporter := telemetry.NewReporter(testLogger(), exporter, 1)

	reporter.Shutdown()
	reporter.Shutdown()

	assert.NotPanics(t, func() {
		reporter.ReportPerformanceIssue(context.Background(), time.Second, telemetry.ReportContext{})
	})
	assert.True(t, exporter.closed)
}
