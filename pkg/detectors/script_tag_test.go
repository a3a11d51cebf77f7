package detectors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/detectors"
	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

func TestScriptTagDetector_Detect(t *testing.T) {
	detector := detectors.NewScriptTagDetector()
	pol := policy.For(types.ContentTypeUserProfile)

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "plain script element",
			content: `<script>alert("XSS")</script>`,
			want:    1,
		},
		{
			name:    "uppercase with attributes",
			content: `<SCRIPT SRC="https://evil.example/x.js"></SCRIPT>`,
			want:    1,
		},
		{
			name:    "whitespace inside the tag",
			content: `< script >alert(1)</ script >`,
			want:    1,
		},
		{
			name:    "unterminated element",
			content: `<script>alert(1)`,
			want:    1,
		},
		{
			name:    "stray closing tag",
			content: `hello</script>world`,
			want:    1,
		},
		{
			name:    "script buried in markup",
			content: `<div><p>hi</p><script>steal()</script></div>`,
			want:    1,
		},
		{
			name:    "two separate elements",
			content: `<script>a()</script><p>x</p><script>b()</script>`,
			want:    2,
		},
		{
			name:    "no markup at all",
			content: `my script of the play`,
			want:    0,
		},
		{
			name:    "safe markup",
			content: `<p>describe your pet</p>`,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := detector.Detect(tt.content, pol)
			assert.Len(t, violations, tt.want)
			for _, v := range violations {
				assert.Equal(t, types.ViolationScriptTag, v.Kind)
				assert.Equal(t, types.SeverityCritical, v.Severity)
				assert.NotEmpty(t, v.OriginalSnippet)
				assert.NotEmpty(t, v.ID)
			}
		})
	}
}

func TestScriptTagDetector_DuplicatedOpensCountOnce(t *testing.T) {
	detector := detectors.NewScriptTagDetector()
	pol := policy.For(types.ContentTypeUserProfile)

	violations := detector.Detect(`<script><script>alert(1)</script>`, pol)

	assert.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, types.SeverityCritical, v.Severity)
	}
}

func TestScriptTagDetector_DeterministicIDs(t *testing.T) {
	detector := detectors.NewScriptTagDetector()
	pol := policy.For(types.ContentTypeUserProfile)
	content := `<script>alert(1)</script>`

	first := detector.Detect(content, pol)
	second := detector.Detect(content, pol)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}
