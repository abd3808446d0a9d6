package detect

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

var rememberPhrase = regexp.MustCompile(`(?i)\bi remember\b`)

// prefixLength is the number of leading tokens compared between sentences
const prefixLength = 5

// quickCheck is the cheap pre-filter: it looks only for surface anomalies
// and decides whether the full scanner battery needs to run. New
// conversations always get the full scan; callers handle that case.
func quickCheck(text string) bool {
	// Recall language piling up is the classic false-memory surface.
	if len(rememberPhrase.FindAllString(text, -1)) >= 2 {
		return true
	}

	// Two sentences opening with the same words suggest repetition.
	sentences := textutil.SplitSentences(text)
	prefixes := map[string]bool{}
	for _, s := range sentences {
		tokens := textutil.Tokenize(s)
		if len(tokens) > prefixLength {
			tokens = tokens[:prefixLength]
		}
		prefix := strings.Join(tokens, " ")
		if prefix == "" {
			continue
		}
		if prefixes[prefix] {
			return true
		}
		prefixes[prefix] = true
	}

	// Crisis content always warrants the full scan; the protocol-mix
	// invariant must never be skipped for speed.
	return crisisTerms.MatchString(text)
}
