package telemetry

import (
	"context"
)

// Exporter delivers security events to one observability backend.
// Implementations must be safe to call from the reporter workers.
type Exporter interface {
	Name() string
	Handle(ctx context.Context, evt *SecurityEvent) error
	Close()
}
