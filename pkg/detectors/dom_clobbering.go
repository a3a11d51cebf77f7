package detectors

import (
	"regexp"
	"strings"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

const DomClobberingDetectorName = "dom_clobbering"

// clobberTargets are globally meaningful identifiers that attacker
// controlled id/name attributes can shadow.
var clobberTargets = map[string]bool{
	"location":    true,
	"document":    true,
	"window":      true,
	"top":         true,
	"self":        true,
	"parent":      true,
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

var idNamePattern = regexp.MustCompile(`(?i)\b(id|name)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)

// DomClobberingDetector flags id/name attributes that collide with global
// identifiers, and duplicated ids that could shadow a DOM collection.
// Pattern matching cannot catch every clobbering vector; findings from
// this detector are weighted with lower confidence by risk assessment.
type DomClobberingDetector struct{}

func NewDomClobberingDetector() Detector {
	return &DomClobberingDetector{}
}

func (d *DomClobberingDetector) Name() string {
	return DomClobberingDetectorName
}

func (d *DomClobberingDetector) Detect(content string, _ policy.Policy) []types.SecurityViolation {
	var violations []types.SecurityViolation
	idCounts := make(map[string]int)

	for _, tag := range openTagPattern.FindAllString(content, -1) {
		for _, m := range idNamePattern.FindAllStringSubmatch(tag, -1) {
			attr := strings.ToLower(m[1])
			value := strings.ToLower(strings.TrimSpace(firstNonEmpty(m[2], m[3], m[4])))
			if value == "" {
				continue
			}
			if attr == "id" {
				idCounts[value]++
			}
			if clobberTargets[value] {
				violations = append(violations, newViolation(
					types.ViolationDomClobbering,
					types.SeverityMedium,
					m[0],
					"",
					"element "+attr+" collides with global identifier "+value,
				))
			}
		}
	}

	for value, count := range idCounts {
		if count > 1 && !clobberTargets[value] {
			violations = append(violations, newViolation(
				types.ViolationDomClobbering,
				types.SeverityMedium,
				`id="`+value+`"`,
				"",
				"duplicate element id may shadow a DOM collection",
			))
		}
	}
	return violations
}
