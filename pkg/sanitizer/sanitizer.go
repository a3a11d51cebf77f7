package sanitizer

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/pawcraft/contentguard/pkg/detectors"
	"github.com/pawcraft/contentguard/pkg/infra/prometheus"
	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/risk"
	"github.com/pawcraft/contentguard/pkg/telemetry"
	"github.com/pawcraft/contentguard/pkg/types"
)

const (
	DefaultMaxContentBytes   = 64 * 1024
	DefaultMaxNestingDepth   = 64
	DefaultPerformanceBudget = time.Second
)

// Config carries the resource caps that bound worst-case latency for
// adversarial input.
type Config struct {
	MaxContentBytes   int
	MaxNestingDepth   int
	PerformanceBudget time.Duration
	CacheCapacity     int
}

func (c Config) withDefaults() Config {
	if c.MaxContentBytes <= 0 {
		c.MaxContentBytes = DefaultMaxContentBytes
	}
	if c.MaxNestingDepth <= 0 {
		c.MaxNestingDepth = DefaultMaxNestingDepth
	}
	if c.PerformanceBudget <= 0 {
		c.PerformanceBudget = DefaultPerformanceBudget
	}
	return c
}

// Sanitizer orchestrates the pipeline: input guard, resource caps,
// policy-driven walk, detector union, result assembly. It never returns
// an error; hostile input is the expected operating condition and is
// represented as violations in the result.
type Sanitizer struct {
	logger   *logrus.Logger
	registry *detectors.Registry
	cache    *ResultCache
	reporter telemetry.Reporter
	group    singleflight.Group
	cfg      Config
}

func New(logger *logrus.Logger, registry *detectors.Registry, cache *ResultCache, reporter telemetry.Reporter, cfg Config) *Sanitizer {
	return &Sanitizer{
		logger:   logger,
		registry: registry,
		cache:    cache,
		reporter: reporter,
		cfg:      cfg.withDefaults(),
	}
}

// Sanitize cleans raw according to the content type's policy and returns
// the result together with the violations found. Empty input yields an
// empty valid result. The call is idempotent on sanitized content.
func (s *Sanitizer) Sanitize(ctx context.Context, raw string, contentType types.ContentType, opts *types.Options) types.SanitizationResult {
	if raw == "" {
		return emptyResult()
	}

	resolved := s.resolveOptions(opts)
	key := CacheKey(policy.Version, contentType, resolved, raw)

	if cached, ok := s.cache.Get(key); ok {
		prometheus.CacheEventsTotal.WithLabelValues("hit").Inc()
		return cached
	}
	prometheus.CacheEventsTotal.WithLabelValues("miss").Inc()

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		result := s.run(ctx, raw, contentType, resolved)
		s.cache.Put(key, result)
		return result, nil
	})
	result, ok := v.(types.SanitizationResult)
	if !ok {
		return emptyResult()
	}
	return copyResult(result)
}

// ValidateContent sanitizes under the most restrictive policy and
// returns only the derived risk verdict. It exists for callers that
// gate on risk without using the cleaned content.
func (s *Sanitizer) ValidateContent(ctx context.Context, raw string, opts *types.Options) types.RiskAssessment {
	result := s.Sanitize(ctx, raw, "", opts)
	return risk.Assess(result, policy.MostRestrictive().Strictness)
}

func (s *Sanitizer) ClearCache() {
	s.cache.Clear()
}

func (s *Sanitizer) run(ctx context.Context, raw string, contentType types.ContentType, opts types.Options) types.SanitizationResult {
	start := time.Now()
	pol := policy.For(contentType)

	var violations []types.SecurityViolation

	content := raw
	if len(content) > opts.MaxContentBytes {
		content = truncateRunes(content, opts.MaxContentBytes)
		violations = append(violations, detectors.NewMalformedMarkupViolation(
			"content exceeded the size cap and was truncated before sanitization",
		))
	}

	outcome := applyPolicy(content, pol, opts.MaxNestingDepth)
	if outcome.depthExceeded {
		violations = append(violations, detectors.NewMalformedMarkupViolation(
			"nesting depth cap exceeded; deeper elements were removed",
		))
	}

	// Detectors run over both the capped raw input and the re-serialized
	// structure; the union catches constructs the parser normalizes away.
	violations = append(violations, s.registry.Detect(content, pol)...)
	violations = append(violations, s.registry.Detect(outcome.output, pol)...)
	violations = detectors.Dedupe(violations)

	result := types.SanitizationResult{
		SanitizedContent:   outcome.output,
		IsValid:            len(violations) == 0,
		SecurityViolations: violations,
		RemovedElements:    sortedKeys(outcome.removedElements),
		RemovedAttributes:  sortedKeys(outcome.removedAttributes),
	}

	s.observe(ctx, contentType, result, time.Since(start))
	return result
}

func (s *Sanitizer) observe(ctx context.Context, contentType types.ContentType, result types.SanitizationResult, elapsed time.Duration) {
	prometheus.SanitizationsTotal.WithLabelValues(string(contentType), boolLabel(result.IsValid)).Inc()
	prometheus.SanitizeDuration.WithLabelValues(string(contentType)).Observe(float64(elapsed.Milliseconds()))
	for _, v := range result.SecurityViolations {
		prometheus.ViolationsTotal.WithLabelValues(string(v.Kind), string(v.Severity)).Inc()
	}

	if elapsed > s.cfg.PerformanceBudget {
		s.logger.WithFields(logrus.Fields{
			"content_type": contentType,
			"elapsed_ms":   elapsed.Milliseconds(),
		}).Warn("sanitization exceeded performance budget")
		if s.reporter != nil {
			s.reporter.ReportPerformanceIssue(ctx, elapsed, telemetry.ReportContext{
				ContentType: contentType,
				Source:      "sanitizer",
			})
		}
	}
}

func (s *Sanitizer) resolveOptions(opts *types.Options) types.Options {
	resolved := types.Options{
		MaxContentBytes: s.cfg.MaxContentBytes,
		MaxNestingDepth: s.cfg.MaxNestingDepth,
	}
	if opts == nil {
		return resolved
	}
	if opts.MaxContentBytes > 0 && opts.MaxContentBytes < resolved.MaxContentBytes {
		resolved.MaxContentBytes = opts.MaxContentBytes
	}
	if opts.MaxNestingDepth > 0 && opts.MaxNestingDepth < resolved.MaxNestingDepth {
		resolved.MaxNestingDepth = opts.MaxNestingDepth
	}
	return resolved
}

func emptyResult() types.SanitizationResult {
	return types.SanitizationResult{
		SanitizedContent:   "",
		IsValid:            true,
		SecurityViolations: []types.SecurityViolation{},
		RemovedElements:    []string{},
		RemovedAttributes:  []string{},
	}
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
