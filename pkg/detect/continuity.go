package detect

import (
	"fmt"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// ContinuityScanner flags claims of ongoing topic continuity that the
// history's content does not support.
type ContinuityScanner struct{}

func (s *ContinuityScanner) Name() string { return "false_continuity" }

func (s *ContinuityScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	var flags []*model.HallucinationFlag

	for _, phrase := range continuityPhrases {
		matched := phrase.pattern.FindString(text)
		if matched == "" {
			continue
		}

		if sctx.NewConversation() {
			flags = append(flags, &model.HallucinationFlag{
				Type:        model.FlagFalseContinuity,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("continuity claim %q in a new conversation", matched),
			})
			continue
		}

		// Established conversation: the response must still share ground
		// with what was actually said.
		if textutil.OverlapRatio(text, sctx.HistoryText()) < 0.2 {
			flags = append(flags, &model.HallucinationFlag{
				Type:        model.FlagFalseContinuity,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("continuity claim %q without content overlap with history", matched),
			})
		}
	}

	return flags
}
