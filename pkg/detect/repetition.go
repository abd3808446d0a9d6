package detect

import (
	"fmt"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

const (
	// Sentence pairs above this overlap are repetition
	repetitionThreshold = 0.7

	// Length of the repeated phrase window
	repeatedGramSize = 4
)

// RepetitionScanner flags responses that restate themselves: near-identical
// sentence pairs or any repeated four-word phrase.
type RepetitionScanner struct{}

func (s *RepetitionScanner) Name() string { return "repetition" }

func (s *RepetitionScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	var flags []*model.HallucinationFlag

	sentences := textutil.SplitSentences(text)
	for i := 0; i < len(sentences); i++ {
		for j := i + 1; j < len(sentences); j++ {
			if sim := textutil.OverlapRatio(sentences[i], sentences[j]); sim > repetitionThreshold {
				flags = append(flags, &model.HallucinationFlag{
					Type:        model.FlagRepetition,
					Severity:    model.SeverityHigh,
					Description: fmt.Sprintf("near-duplicate sentences (similarity %.2f): %q", sim, sentences[j]),
					Confidence:  sim,
				})
			}
		}
	}

	// Repeated phrases inside one sentence escape the pairwise check.
	if len(flags) == 0 {
		seen := map[string]bool{}
		for _, gram := range textutil.NGrams(text, repeatedGramSize) {
			if seen[gram] {
				flags = append(flags, &model.HallucinationFlag{
					Type:        model.FlagRepetition,
					Severity:    model.SeverityMedium,
					Description: fmt.Sprintf("repeated phrase %q", gram),
				})
				break
			}
			seen[gram] = true
		}
	}

	return flags
}
