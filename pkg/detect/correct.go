package detect

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// Corrector rewrites flagged responses: memory and continuity claims become
// present-tense acknowledgments, timeline references disappear, repeated
// sentences collapse to the first occurrence. Running detection again on a
// corrected response must not re-raise the same flags.
type Corrector struct{}

func NewCorrector() *Corrector {
	return &Corrector{}
}

// Correct applies the rewrites appropriate for the given flags
func (c *Corrector) Correct(text string, flags []*model.HallucinationFlag) string {
	var fixMemory, fixRepetition bool
	for _, flag := range flags {
		switch flag.Type {
		case model.FlagFalseMemory, model.FlagFalseContinuity:
			fixMemory = true
		case model.FlagRepetition:
			fixRepetition = true
		}
	}

	out := text
	if fixMemory {
		out = c.rewriteMemoryClaims(out)
	}
	if fixRepetition {
		out = c.DeduplicateSentences(out)
	}

	return strings.TrimSpace(out)
}

func (c *Corrector) rewriteMemoryClaims(text string) string {
	out := text

	for _, phrase := range continuityPhrases {
		out = phrase.pattern.ReplaceAllString(out, phrase.rewrite)
	}
	for _, phrase := range memoryPhrases {
		out = phrase.pattern.ReplaceAllString(out, phrase.rewrite)
	}
	for _, pattern := range timelinePhrases {
		out = pattern.ReplaceAllString(out, "")
	}

	return fixCapitalization(collapseSpaces(out))
}

// DeduplicateSentences drops each sentence whose overlap with an earlier
// one exceeds the repetition threshold, keeping first occurrences.
func (c *Corrector) DeduplicateSentences(text string) string {
	sentences := textutil.SplitSentences(text)
	if len(sentences) < 2 {
		return text
	}

	var kept []string
	for _, s := range sentences {
		dup := false
		for _, prev := range kept {
			if textutil.OverlapRatio(s, prev) > repetitionThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}

	return strings.Join(kept, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fixCapitalization repairs sentence starts broken by phrase removal
func fixCapitalization(s string) string {
	sentences := textutil.SplitSentences(s)
	for i, sentence := range sentences {
		runes := []rune(sentence)
		if len(runes) > 0 && unicode.IsLower(runes[0]) {
			runes[0] = unicode.ToUpper(runes[0])
			sentences[i] = string(runes)
		}
	}
	return strings.Join(sentences, " ")
}
