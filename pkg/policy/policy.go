package policy

import (
	"github.com/pawcraft/contentguard/pkg/types"
)

// Version tags the current registry contents. It is folded into result
// cache keys so a registry change invalidates stale entries on deploy.
const Version = "2026-08-01"

// Policy is the allow-list applied to content of a given type. Looked up
// at call time, never mutated.
type Policy struct {
	ContentType types.ContentType
	Strictness  types.Strictness

	// AllowedTags are kept in output; everything else is stripped or
	// unwrapped depending on strictness.
	AllowedTags map[string]bool

	// AllowedAttributes maps tag names to permitted attribute names.
	// The "*" key applies to every allowed tag.
	AllowedAttributes map[string][]string

	// AllowedSchemes lists URL schemes permitted in href/src/action
	// values. Relative URLs are always allowed.
	AllowedSchemes map[string]bool

	// UnwrapTags are flattened (tag dropped, children kept) instead of
	// stripped when the strictness permits unwrapping.
	UnwrapTags map[string]bool
}

// UnwrapsDisallowed reports whether disallowed-but-unwrappable tags are
// flattened rather than stripped with their subtree. Strict policies
// always strip.
func (p Policy) UnwrapsDisallowed() bool {
	return p.Strictness != types.StrictnessStrict
}

// TagAllowed reports whether the element tag survives sanitization.
func (p Policy) TagAllowed(tag string) bool {
	return p.AllowedTags[tag]
}

// AttrAllowed reports whether attr is permitted on tag.
func (p Policy) AttrAllowed(tag, attr string) bool {
	for _, a := range p.AllowedAttributes["*"] {
		if a == attr {
			return true
		}
	}
	for _, a := range p.AllowedAttributes[tag] {
		if a == attr {
			return true
		}
	}
	return false
}

var defaultUnwrapTags = map[string]bool{
	"div":     true,
	"span":    true,
	"section": true,
	"article": true,
	"font":    true,
	"center":  true,
}

var registry = map[types.ContentType]Policy{
	// Pet names, breed labels, card captions. Inline formatting only.
	types.ContentTypePetCardMetadata: {
		ContentType:       types.ContentTypePetCardMetadata,
		Strictness:        types.StrictnessStandard,
		AllowedTags:       tagSet("b", "i", "em", "strong", "br"),
		AllowedAttributes: map[string][]string{},
		AllowedSchemes:    schemeSet("https"),
		UnwrapTags:        defaultUnwrapTags,
	},

	// Owner bios. Basic rich text with links.
	types.ContentTypeUserProfile: {
		ContentType: types.ContentTypeUserProfile,
		Strictness:  types.StrictnessLenient,
		AllowedTags: tagSet(
			"p", "br", "b", "i", "em", "strong", "u", "s",
			"ul", "ol", "li", "a", "blockquote", "code", "pre",
			"div", "span",
		),
		AllowedAttributes: map[string][]string{
			"a": {"href", "title", "rel"},
		},
		AllowedSchemes: schemeSet("http", "https", "mailto"),
		UnwrapTags:     defaultUnwrapTags,
	},

	// Share captions rendered on third-party surfaces.
	types.ContentTypeSocialSharing: {
		ContentType:       types.ContentTypeSocialSharing,
		Strictness:        types.StrictnessStandard,
		AllowedTags:       tagSet("b", "i", "em", "strong", "br", "p"),
		AllowedAttributes: map[string][]string{},
		AllowedSchemes:    schemeSet("https"),
		UnwrapTags:        defaultUnwrapTags,
	},

	// Text fed to the card-generation model. Plain text only; any markup
	// is stripped with its subtree.
	types.ContentTypeGenerationPrompt: {
		ContentType:       types.ContentTypeGenerationPrompt,
		Strictness:        types.StrictnessStrict,
		AllowedTags:       map[string]bool{},
		AllowedAttributes: map[string][]string{},
		AllowedSchemes:    map[string]bool{},
		UnwrapTags:        map[string]bool{},
	},
}

// For returns the policy for the given content type. Unknown or empty
// content types resolve to the most restrictive policy; a missing mapping
// for a declared content type is a programming error caught by the
// registry completeness test and the startup check.
func For(contentType types.ContentType) Policy {
	if p, ok := registry[contentType]; ok {
		return p
	}
	return MostRestrictive()
}

// MostRestrictive is the fallback policy for unknown content types.
func MostRestrictive() Policy {
	return registry[types.ContentTypeGenerationPrompt]
}

// Registered reports whether the content type has an explicit mapping.
func Registered(contentType types.ContentType) bool {
	_, ok := registry[contentType]
	return ok
}

func tagSet(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

func schemeSet(schemes ...string) map[string]bool {
	m := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		m[s] = true
	}
	return m
}
