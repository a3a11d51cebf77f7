package detectors

import (
	"html"
	"regexp"
	"strconv"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

const ObfuscationDetectorName = "obfuscation"

var (
	percentEscapePattern = regexp.MustCompile(`%[0-9a-fA-F]{2}`)
	unicodeEscapePattern = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
	hexEscapePattern     = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
)

// ObfuscationDetector decodes one layer of HTML-entity, URL-percent, and
// escape-sequence encoding, then re-runs the base detectors over the
// decoded content. Findings are reported under their underlying kind with
// the description noting the obfuscation.
type ObfuscationDetector struct {
	inner []Detector
}

func NewObfuscationDetector(inner []Detector) Detector {
	return &ObfuscationDetector{inner: inner}
}

func (d *ObfuscationDetector) Name() string {
	return ObfuscationDetectorName
}

func (d *ObfuscationDetector) Detect(content string, pol policy.Policy) []types.SecurityViolation {
	decoded := DecodeOneLayer(content)
	if decoded == content {
		return nil
	}

	var violations []types.SecurityViolation
	for _, inner := range d.inner {
		for _, v := range inner.Detect(decoded, pol) {
			v.Obfuscated = true
			v.Description += " (found after decoding one obfuscation layer)"
			violations = append(violations, v)
		}
	}
	return violations
}

// DecodeOneLayer applies a single pass of entity, percent, and escape
// sequence decoding. It never fails; undecodable sequences pass through.
func DecodeOneLayer(s string) string {
	out := html.UnescapeString(s)
	out = percentEscapePattern.ReplaceAllStringFunc(out, func(m string) string {
		b, err := strconv.ParseUint(m[1:], 16, 8)
		if err != nil {
			return m
		}
		return string([]byte{byte(b)})
	})
	out = unicodeEscapePattern.ReplaceAllStringFunc(out, func(m string) string {
		r, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(r))
	})
	out = hexEscapePattern.ReplaceAllStringFunc(out, func(m string) string {
		b, err := strconv.ParseUint(m[2:], 16, 8)
		if err != nil {
			return m
		}
		return string([]byte{byte(b)})
	})
	return out
}
