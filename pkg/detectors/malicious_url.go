package detectors

import (
	"regexp"
	"strings"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

const MaliciousURLDetectorName = "malicious_url"

var (
	urlAttributePattern = regexp.MustCompile(`(?i)\b(?:href|src|action|formaction|poster|background|data)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)

	cssURLPattern = regexp.MustCompile(`(?i)url\(\s*["']?([^"')]+)["']?\s*\)`)
)

// MaliciousURLDetector flags attribute values whose scheme executes code
// rather than navigating: javascript:, vbscript:, and data:text/html
// payloads, in href/src/action attributes and CSS url() values. A scheme
// that only becomes dangerous after stripping embedded whitespace or
// control characters is reported as a suspicious pattern instead.
type MaliciousURLDetector struct{}

func NewMaliciousURLDetector() Detector {
	return &MaliciousURLDetector{}
}

func (d *MaliciousURLDetector) Name() string {
	return MaliciousURLDetectorName
}

func (d *MaliciousURLDetector) Detect(content string, _ policy.Policy) []types.SecurityViolation {
	var violations []types.SecurityViolation

	for _, tag := range openTagPattern.FindAllString(content, -1) {
		for _, m := range urlAttributePattern.FindAllStringSubmatch(tag, -1) {
			value := firstNonEmpty(m[1], m[2], m[3])
			if v, ok := classifyURL(m[0], value); ok {
				violations = append(violations, v)
			}
		}
	}

	for _, m := range cssURLPattern.FindAllStringSubmatch(content, -1) {
		if v, ok := classifyURL(m[0], m[1]); ok {
			violations = append(violations, v)
		}
	}
	return violations
}

func classifyURL(snippet, value string) (types.SecurityViolation, bool) {
	direct := strings.ToLower(strings.TrimSpace(value))
	compacted := compactScheme(direct)

	switch {
	case hasExecutableScheme(direct):
		return newViolation(
			types.ViolationMaliciousURL,
			types.SeverityHigh,
			snippet,
			"",
			"pseudo-protocol URL dropped",
		), true
	case hasExecutableScheme(compacted):
		// Dangerous only after squeezing out embedded whitespace or
		// control characters; the scheme is ambiguous, not proven.
		return newViolation(
			types.ViolationSuspiciousPattern,
			types.SeverityHigh,
			snippet,
			"",
			"URL with obscured pseudo-protocol scheme dropped",
		), true
	}
	return types.SecurityViolation{}, false
}

func hasExecutableScheme(value string) bool {
	if strings.HasPrefix(value, "javascript:") || strings.HasPrefix(value, "vbscript:") {
		return true
	}
	if strings.HasPrefix(value, "data:") {
		payload := strings.TrimPrefix(value, "data:")
		payload = strings.TrimLeft(payload, " \t")
		return strings.HasPrefix(payload, "text/html") || strings.HasPrefix(payload, "text/javascript")
	}
	return false
}

// compactScheme removes whitespace and control characters so schemes like
// "java\tscript:" are recognized.
func compactScheme(value string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
