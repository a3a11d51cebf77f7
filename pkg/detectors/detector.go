package detectors

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

// Detector recognizes one family of dangerous constructs. Implementations
// must be pure and independent of each other; the pipeline unions their
// outputs, so detection order never matters.
type Detector interface {
	Name() string
	Detect(content string, pol policy.Policy) []types.SecurityViolation
}

// Registry holds the registered detectors. New attack-pattern families
// are added by registration, not by editing pipeline control flow.
type Registry struct {
	logger    *logrus.Logger
	detectors []Detector
	byName    map[string]Detector
}

func NewRegistry(logger *logrus.Logger) *Registry {
	r := &Registry{
		logger: logger,
		byName: make(map[string]Detector),
	}

	base := []Detector{
		NewScriptTagDetector(),
		NewDangerousAttributeDetector(),
		NewMaliciousURLDetector(),
		NewDomClobberingDetector(),
	}
	for _, d := range base {
		if err := r.Register(d); err != nil {
			logger.WithError(err).WithField("detector", d.Name()).Error("failed to register detector")
		}
	}
	// The obfuscation pass re-runs the base detectors over a decoded copy
	// of the content, so it is registered last with a snapshot of them.
	if err := r.Register(NewObfuscationDetector(base)); err != nil {
		logger.WithError(err).Error("failed to register obfuscation detector")
	}
	return r
}

func (r *Registry) Register(d Detector) error {
	if _, exists := r.byName[d.Name()]; exists {
		return fmt.Errorf("detector %s is already registered", d.Name())
	}
	r.byName[d.Name()] = d
	r.detectors = append(r.detectors, d)
	return nil
}

func (r *Registry) Detectors() []Detector {
	out := make([]Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Detect runs every registered detector over content and returns the
// union of their findings, deduplicated by (kind, original snippet) and
// deterministically ordered.
func (r *Registry) Detect(content string, pol policy.Policy) []types.SecurityViolation {
	var all []types.SecurityViolation
	for _, d := range r.detectors {
		all = append(all, d.Detect(content, pol)...)
	}
	return Dedupe(all)
}

// Dedupe removes duplicate findings by (kind, original snippet), keeping
// the first occurrence, and orders the rest by severity then kind.
func Dedupe(violations []types.SecurityViolation) []types.SecurityViolation {
	seen := make(map[string]bool, len(violations))
	out := violations[:0:0]
	for _, v := range violations {
		key := string(v.Kind) + "\x00" + v.OriginalSnippet
		if v.OriginalSnippet == "" {
			// Structural violations carry no snippet; the description is
			// what distinguishes them.
			key = string(v.Kind) + "\x00" + v.Description
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].OriginalSnippet < out[j].OriginalSnippet
	})
	return out
}

// violationNamespace seeds deterministic violation IDs so repeated runs
// over the same content produce identical results (required for cache
// transparency).
var violationNamespace = uuid.MustParse("9f2c1a76-54d3-4c8e-8a5f-3b0de2c9a411")

func newViolation(
	kind types.ViolationKind,
	severity types.Severity,
	snippet string,
	sanitized string,
	description string,
) types.SecurityViolation {
	snippet = truncateSnippet(snippet)
	return types.SecurityViolation{
		ID:               uuid.NewSHA1(violationNamespace, []byte(string(kind)+"|"+snippet+"|"+description)).String(),
		Kind:             kind,
		OriginalSnippet:  snippet,
		SanitizedSnippet: sanitized,
		Severity:         severity,
		Description:      description,
		Timestamp:        time.Now().UTC(),
	}
}

// NewMalformedMarkupViolation records a structural problem the pipeline
// corrected itself, such as cap truncation. Severity is medium: the
// content was degraded, not proven hostile.
func NewMalformedMarkupViolation(description string) types.SecurityViolation {
	return newViolation(
		types.ViolationMalformedMarkup,
		types.SeverityMedium,
		"",
		"",
		description,
	)
}

const maxSnippetLen = 100

func truncateSnippet(s string) string {
	if len(s) <= maxSnippetLen {
		return s
	}
	return s[:maxSnippetLen-3] + "..."
}
