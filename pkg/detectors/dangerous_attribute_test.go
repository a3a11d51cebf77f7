package detectors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/detectors"
	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

func TestDangerousAttributeDetector_Detect(t *testing.T) {
	detector := detectors.NewDangerousAttributeDetector()
	pol := policy.For(types.ContentTypeUserProfile)

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "double quoted handler",
			content: `<div onclick="alert(1)">Click me</div>`,
			want:    1,
		},
		{
			name:    "single quoted with spaces around equals",
			content: `<img onerror = 'steal()' src="x">`,
			want:    1,
		},
		{
			name:    "unquoted uppercase handler",
			content: `<body ONLOAD=doEvil()>`,
			want:    1,
		},
		{
			name:    "two handlers on one element",
			content: `<a onmouseover="a()" onfocus="b()">link</a>`,
			want:    2,
		},
		{
			name:    "handlers on separate elements",
			content: `<p onclick="a()">one</p><p onclick="b()">two</p>`,
			want:    2,
		},
		{
			name:    "handler-looking text outside any tag",
			content: `onion = tasty, onions = tastier`,
			want:    0,
		},
		{
			name:    "safe attributes",
			content: `<a href="https://example.com" title="pets">my pets</a>`,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := detector.Detect(tt.content, pol)
			assert.Len(t, violations, tt.want)
			for _, v := range violations {
				assert.Equal(t, types.ViolationDangerousAttribute, v.Kind)
				assert.Equal(t, types.SeverityHigh, v.Severity)
			}
		})
	}
}
