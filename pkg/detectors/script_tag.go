package detectors

import (
	"regexp"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

const ScriptTagDetectorName = "script_tag"

var (
	// A complete script element, tolerating attributes, nested markup,
	// comments and CDATA in the body, and an unterminated closing tag.
	scriptElementPattern = regexp.MustCompile(`(?is)<\s*script\b[^>]*>.*?(?:<\s*/\s*script\b[^>]*>|$)`)

	// Stray opening or closing script tags left over from malformed
	// payloads (duplicated opens, truncated closes).
	scriptFragmentPattern = regexp.MustCompile(`(?i)<\s*/?\s*script\b[^>]*>?`)
)

// ScriptTagDetector flags script elements in any casing or nesting,
// including common malformed variants. The whole element is removed from
// output; its contents are never preserved.
type ScriptTagDetector struct{}

func NewScriptTagDetector() Detector {
	return &ScriptTagDetector{}
}

func (d *ScriptTagDetector) Name() string {
	return ScriptTagDetectorName
}

func (d *ScriptTagDetector) Detect(content string, _ policy.Policy) []types.SecurityViolation {
	var violations []types.SecurityViolation

	matched := make([][2]int, 0)
	for _, m := range scriptElementPattern.FindAllStringIndex(content, -1) {
		matched = append(matched, [2]int{m[0], m[1]})
		violations = append(violations, newViolation(
			types.ViolationScriptTag,
			types.SeverityCritical,
			content[m[0]:m[1]],
			"",
			"script element removed",
		))
	}

	for _, m := range scriptFragmentPattern.FindAllStringIndex(content, -1) {
		if coveredBy(matched, m[0]) {
			continue
		}
		violations = append(violations, newViolation(
			types.ViolationScriptTag,
			types.SeverityCritical,
			content[m[0]:m[1]],
			"",
			"malformed script tag removed",
		))
	}
	return violations
}

func coveredBy(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
