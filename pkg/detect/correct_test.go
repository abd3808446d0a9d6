package detect_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/detect"
	"github.com/m-mizutani/veracity/pkg/model"
)

func TestRewriteMemoryClaims(t *testing.T) {
	c := detect.NewCorrector()
	flags := []*model.HallucinationFlag{
		{Type: model.FlagFalseContinuity, Severity: model.SeverityCritical},
	}

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "continuity claim",
			input: "As we discussed, your anxiety has improved.",
			want:  "It sounds like your anxiety has improved.",
		},
		{
			name:  "session reference removed",
			input: "Since we last spoke things changed.",
			want:  "Things changed.",
		},
		{
			name:  "clean text untouched",
			input: "That sounds really difficult.",
			want:  "That sounds really difficult.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, c.Correct(tc.input, flags), tc.want)
		})
	}
}

func TestDeduplicateSentences(t *testing.T) {
	c := detect.NewCorrector()

	out := c.DeduplicateSentences(
		"I hear you're dealing with stress. I hear you're dealing with stress. What helps you cope?")
	gt.Equal(t, out, "I hear you're dealing with stress. What helps you cope?")

	// No duplicates means no change.
	clean := "First thought here. A second different idea."
	gt.Equal(t, c.DeduplicateSentences(clean), clean)
}
