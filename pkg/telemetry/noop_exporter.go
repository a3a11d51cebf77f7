package telemetry

import (
	"context"
)

const NoopExporterName = "noop"

// NoopExporter discards every event. Used when reporting is disabled
// and in tests.
type NoopExporter struct{}

func NewNoopExporter() *NoopExporter {
	return &NoopExporter{}
}

func (e *NoopExporter) Name() string {
	return NoopExporterName
}

func (e *NoopExporter) Handle(context.Context, *SecurityEvent) error {
	return nil
}

func (e *NoopExporter) Close() {}
