package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// claimPattern marks sentences that assert something checkable: references
// to earlier conversation, numeric specifics, or calendar anchors. Generic
// empathy ("that sounds hard") never matches and is never touched.
var claimPattern = regexp.MustCompile(`(?i)\b(you (said|told|mentioned)|we (discussed|talked)|i remember|recall|last (time|week|session|month)|\d+|monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|may|june|july|august|september|october|november|december)\b`)

// verifyClaims runs the reasoning stage: every claim sentence is scored by
// lexical support against the conversation so far. Claims below the
// entailment threshold are dropped from the response; claims between the
// two thresholds survive but are reported as issues.
func (p *Pipeline) verifyClaims(text, input string, history []string) (string, []string) {
	context := strings.Join(history, " ") + " " + input

	sentences := textutil.SplitSentences(text)
	kept := make([]string, 0, len(sentences))
	var issues []string

	for _, sentence := range sentences {
		if !claimPattern.MatchString(sentence) {
			kept = append(kept, sentence)
			continue
		}

		support := textutil.OverlapRatio(sentence, context)
		switch {
		case support < p.config.EntailmentThreshold:
			issues = append(issues, fmt.Sprintf("dropped unsupported claim %q (support %.2f)", sentence, support))
		case support < p.config.ReasoningThreshold:
			issues = append(issues, fmt.Sprintf("weakly supported claim %q (support %.2f)", sentence, support))
			kept = append(kept, sentence)
		default:
			kept = append(kept, sentence)
		}
	}

	// Never empty the reply: if every sentence was a dropped claim the
	// original text stands and only the issues are reported.
	if len(kept) == 0 {
		return text, issues
	}

	return strings.Join(kept, " "), issues
}
