package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

func TestEveryContentTypeHasAPolicy(t *testing.T) {
	for _, ct := range types.AllContentTypes() {
		assert.True(t, policy.Registered(ct), "content type %q has no policy", ct)
		assert.Equal(t, ct, policy.For(ct).ContentType)
	}
}

func TestForUnknownContentTypeFallsBackToMostRestrictive(t *testing.T) {
	fallback := policy.MostRestrictive()

	assert.Equal(t, fallback, policy.For("comment_thread"))
	assert.Equal(t, fallback, policy.For(""))
	assert.Equal(t, types.StrictnessStrict, fallback.Strictness)
	assert.Empty(t, fallback.AllowedTags)
}

func TestTagAllowed(t *testing.T) {
	profile := policy.For(types.ContentTypeUserProfile)
	assert.True(t, profile.TagAllowed("p"))
	assert.True(t, profile.TagAllowed("a"))
	assert.False(t, profile.TagAllowed("script"))
	assert.False(t, profile.TagAllowed("iframe"))

	metadata := policy.For(types.ContentTypePetCardMetadata)
	assert.True(t, metadata.TagAllowed("b"))
	assert.False(t, metadata.TagAllowed("a"))
}

func TestAttrAllowed(t *testing.T) {
	profile := policy.For(types.ContentTypeUserProfile)
	assert.True(t, profile.AttrAllowed("a", "href"))
	assert.True(t, profile.AttrAllowed("a", "title"))
	assert.False(t, profile.AttrAllowed("a", "onclick"))
	assert.False(t, profile.AttrAllowed("p", "href"))
	assert.False(t, profile.AttrAllowed("p", "style"))
}

func TestUnwrapsDisallowed(t *testing.T) {
	assert.True(t, policy.For(types.ContentTypeUserProfile).UnwrapsDisallowed())
	assert.True(t, policy.For(types.ContentTypeSocialSharing).UnwrapsDisallowed())
	assert.False(t, policy.For(types.ContentTypeGenerationPrompt).UnwrapsDisallowed())
}

func TestGenerationPromptAllowsNoMarkup(t *testing.T) {
	prompt := policy.For(types.ContentTypeGenerationPrompt)
	for _, tag := range []string{"p", "b", "i", "a", "div", "span", "br"} {
		assert.False(t, prompt.TagAllowed(tag), "tag %q must not be allowed in prompts", tag)
	}
	assert.Empty(t, prompt.AllowedSchemes)
}
