package telemetry

import (
	"time"

	"github.com/google/uuid"

	"github.com/pawcraft/contentguard/pkg/types"
)

const (
	EventTypeSecurityViolation = "security_violation"
	EventTypePerformanceIssue  = "performance_issue"
	EventTypeRateLimitExceeded = "rate_limit_exceeded"
)

// ReportContext identifies where a reported event came from.
type ReportContext struct {
	UserID      string            `json:"user_id,omitempty"`
	ContentType types.ContentType `json:"content_type,omitempty"`
	Source      string            `json:"source,omitempty"`
	RemoteIP    string            `json:"remote_ip,omitempty"`
}

// SecurityEvent is the wire format pushed to the observability
// collaborator. The engine is the sole producer.
type SecurityEvent struct {
	EventID   string        `json:"event_id"`
	Type      string        `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Context   ReportContext `json:"context"`

	Violations     []types.SecurityViolation `json:"violations,omitempty"`
	DurationMs     int64                     `json:"duration_ms,omitempty"`
	ViolationCount int                       `json:"violation_count,omitempty"`
	WindowMs       int64                     `json:"window_ms,omitempty"`
}

func NewSecurityEvent(eventType string, rctx ReportContext) *SecurityEvent {
	return &SecurityEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Context:   rctx,
	}
}
