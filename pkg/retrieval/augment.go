package retrieval

import (
	"strings"

	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// keyTermMinLength filters trivial words out of the mention check
const keyTermMinLength = 5

// Augment inserts the passage into the response: prepended when the
// response is two sentences or fewer, otherwise spliced in after the second
// sentence. When the response already mentions the passage's key terms the
// text comes back unchanged, which also makes augmentation idempotent.
func Augment(response string, passage *Passage) string {
	if passage == nil || strings.TrimSpace(passage.Record.Text) == "" {
		return response
	}

	if mentionsKeyTerms(response, passage.Record.Text) {
		return response
	}

	insertion := strings.TrimSpace(passage.Record.Text)
	if !strings.HasSuffix(insertion, ".") && !strings.HasSuffix(insertion, "!") && !strings.HasSuffix(insertion, "?") {
		insertion += "."
	}

	sentences := textutil.SplitSentences(response)
	if len(sentences) <= 2 {
		return insertion + " " + strings.TrimSpace(response)
	}

	head := strings.Join(sentences[:2], " ")
	tail := strings.Join(sentences[2:], " ")
	return head + " " + insertion + " " + tail
}

// mentionsKeyTerms reports whether the response already covers most of the
// passage's substantial vocabulary.
func mentionsKeyTerms(response, passage string) bool {
	responseTokens := textutil.TokenSet(response)

	total := 0
	present := 0
	for tok := range textutil.TokenSet(passage) {
		if len(tok) < keyTermMinLength {
			continue
		}
		total++
		if responseTokens[tok] {
			present++
		}
	}
	if total == 0 {
		return true
	}

	return float64(present)/float64(total) >= 0.6
}
