package detectors

import (
	"regexp"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

const DangerousAttributeDetectorName = "dangerous_attribute"

var (
	openTagPattern = regexp.MustCompile(`(?i)<[a-z][^>]*>?`)

	// Event-handler attributes in any quoting style, with or without
	// whitespace around the equals sign.
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
)

// DangerousAttributeDetector flags on* event-handler attributes inside
// element tags. The attribute is stripped; the host element and its safe
// attributes and content are preserved.
type DangerousAttributeDetector struct{}

func NewDangerousAttributeDetector() Detector {
	return &DangerousAttributeDetector{}
}

func (d *DangerousAttributeDetector) Name() string {
	return DangerousAttributeDetectorName
}

func (d *DangerousAttributeDetector) Detect(content string, _ policy.Policy) []types.SecurityViolation {
	var violations []types.SecurityViolation
	for _, tag := range openTagPattern.FindAllString(content, -1) {
		for _, attr := range eventHandlerPattern.FindAllString(tag, -1) {
			violations = append(violations, newViolation(
				types.ViolationDangerousAttribute,
				types.SeverityHigh,
				attr,
				"",
				"event handler attribute stripped",
			))
		}
	}
	return violations
}
