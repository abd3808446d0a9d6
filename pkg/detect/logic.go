package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// negations recognized when comparing sentence pairs for contradiction
var negationPattern = regexp.MustCompile(`(?i)\b(not|never|no longer|n't|cannot)\b`)

// LogicScanner flags direct self-contradictions within a single response:
// one sentence affirming what another negates.
type LogicScanner struct{}

func (s *LogicScanner) Name() string { return "logical_error" }

func (s *LogicScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	sentences := textutil.SplitSentences(text)
	if len(sentences) < 2 {
		return nil
	}

	var flags []*model.HallucinationFlag
	for i := 0; i < len(sentences); i++ {
		for j := i + 1; j < len(sentences); j++ {
			if contradicts(sentences[i], sentences[j]) {
				flags = append(flags, &model.HallucinationFlag{
					Type:        model.FlagLogicalError,
					Severity:    model.SeverityMedium,
					Description: fmt.Sprintf("contradictory statements: %q vs %q", sentences[i], sentences[j]),
				})
			}
		}
	}
	return flags
}

// contradicts reports whether one sentence negates the other while sharing
// nearly all of its remaining content.
func contradicts(a, b string) bool {
	negA := negationPattern.MatchString(a)
	negB := negationPattern.MatchString(b)
	if negA == negB {
		return false
	}

	stripped := func(s string) string {
		return strings.TrimSpace(negationPattern.ReplaceAllString(s, ""))
	}

	return textutil.OverlapRatio(stripped(a), stripped(b)) > 0.8
}
