package types

import (
	"time"
)

// ContentType selects which sanitization policy applies to a piece of
// user-supplied text.
type ContentType string

const (
	ContentTypePetCardMetadata  ContentType = "pet_card_metadata"
	ContentTypeUserProfile      ContentType = "user_profile"
	ContentTypeSocialSharing    ContentType = "social_sharing"
	ContentTypeGenerationPrompt ContentType = "generation_prompt"
)

// AllContentTypes returns the closed set of content types. New types must
// be added here and to the policy registry together; the registry
// completeness test enforces it.
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentTypePetCardMetadata,
		ContentTypeUserProfile,
		ContentTypeSocialSharing,
		ContentTypeGenerationPrompt,
	}
}

func (c ContentType) Valid() bool {
	switch c {
	case ContentTypePetCardMetadata, ContentTypeUserProfile, ContentTypeSocialSharing, ContentTypeGenerationPrompt:
		return true
	}
	return false
}

type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ViolationKind is the closed set of dangerous construct classes the
// detectors recognize.
type ViolationKind string

const (
	ViolationScriptTag          ViolationKind = "script_tag"
	ViolationDangerousAttribute ViolationKind = "dangerous_attribute"
	ViolationSuspiciousPattern  ViolationKind = "suspicious_pattern"
	ViolationDomClobbering      ViolationKind = "dom_clobbering"
	ViolationMaliciousURL       ViolationKind = "malicious_url"
	ViolationMalformedMarkup    ViolationKind = "malformed_markup"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for comparison; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// SecurityViolation records one detected dangerous construct. Immutable
// once produced; owned by the SanitizationResult that contains it.
type SecurityViolation struct {
	ID               string        `json:"id"`
	Kind             ViolationKind `json:"kind"`
	OriginalSnippet  string        `json:"original_snippet"`
	SanitizedSnippet string        `json:"sanitized_snippet"`
	Severity         Severity      `json:"severity"`
	Description      string        `json:"description"`
	Obfuscated       bool          `json:"obfuscated,omitempty"`
	Timestamp        time.Time     `json:"timestamp"`
}

// SanitizationResult is the outcome of one pipeline run. IsValid is true
// iff SecurityViolations is empty. RemovedElements and RemovedAttributes
// are reporting aids, not authoritative security state.
type SanitizationResult struct {
	SanitizedContent   string              `json:"sanitized_content"`
	IsValid            bool                `json:"is_valid"`
	SecurityViolations []SecurityViolation `json:"security_violations"`
	RemovedElements    []string            `json:"removed_elements"`
	RemovedAttributes  []string            `json:"removed_attributes"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type RecommendedAction string

const (
	ActionAllow    RecommendedAction = "allow"
	ActionSanitize RecommendedAction = "sanitize"
	ActionFlag     RecommendedAction = "flag"
	ActionBlock    RecommendedAction = "block"
)

// RiskAssessment is derived from a SanitizationResult; it is never
// persisted and can be recomputed at any time.
type RiskAssessment struct {
	RiskLevel         RiskLevel         `json:"risk_level"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	Confidence        float64           `json:"confidence"`
}

// Options tunes a single sanitization call. Zero values fall back to the
// configured defaults.
type Options struct {
	MaxContentBytes int `json:"max_content_bytes,omitempty" mapstructure:"max_content_bytes"`
	MaxNestingDepth int `json:"max_nesting_depth,omitempty" mapstructure:"max_nesting_depth"`
}
