package detectors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/detectors"
	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/types"
)

func TestDomClobberingDetector_Detect(t *testing.T) {
	detector := detectors.NewDomClobberingDetector()
	pol := policy.For(types.ContentTypeUserProfile)

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "id shadows location",
			content: `<img id="location" src="x">`,
			want:    1,
		},
		{
			name:    "name shadows document",
			content: `<a name="document">x</a>`,
			want:    1,
		},
		{
			name:    "proto pollution id",
			content: `<div id="__proto__">x</div>`,
			want:    1,
		},
		{
			name:    "unquoted name",
			content: `<img name=window src=x>`,
			want:    1,
		},
		{
			name:    "duplicate ids",
			content: `<div id="cards">a</div><div id="cards">b</div>`,
			want:    1,
		},
		{
			name:    "benign id",
			content: `<div id="profile-bio">about my cat</div>`,
			want:    0,
		},
		{
			name:    "id mentioned in text",
			content: `set id="location" in the form`,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := detector.Detect(tt.content, pol)
			assert.Len(t, violations, tt.want)
			for _, v := range violations {
				assert.Equal(t, types.ViolationDomClobbering, v.Kind)
				assert.Equal(t, types.SeverityMedium, v.Severity)
			}
		})
	}
}
