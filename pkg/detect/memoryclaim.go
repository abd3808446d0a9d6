package detect

import (
	"fmt"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// MemoryClaimScanner flags phrases that reference prior discussion when the
// conversation is new or the claimed topic never appeared in history.
type MemoryClaimScanner struct{}

func (s *MemoryClaimScanner) Name() string { return "false_memory" }

func (s *MemoryClaimScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	var flags []*model.HallucinationFlag

	for _, phrase := range memoryPhrases {
		loc := phrase.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		matched := text[loc[0]:loc[1]]

		if sctx.NewConversation() {
			flags = append(flags, &model.HallucinationFlag{
				Type:        model.FlagFalseMemory,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("memory claim %q in a new conversation", matched),
			})
			continue
		}

		// The claim is only sound if the topic following the phrase shows
		// up somewhere in history.
		topic := claimTopic(text[loc[1]:])
		if topic != "" && !topicInHistory(topic, sctx) {
			flags = append(flags, &model.HallucinationFlag{
				Type:        model.FlagFalseMemory,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("memory claim %q about %q has no support in history", matched, topic),
			})
		}
	}

	return flags
}

// claimTopic extracts the handful of words following a memory phrase
func claimTopic(tail string) string {
	tokens := textutil.Tokenize(tail)
	if len(tokens) > 5 {
		tokens = tokens[:5]
	}
	out := ""
	for _, tok := range tokens {
		if out != "" {
			out += " "
		}
		out += tok
	}
	return out
}

func topicInHistory(topic string, sctx *Context) bool {
	history := sctx.HistoryText()
	if history == "" {
		return false
	}
	return textutil.OverlapRatio(topic, history) >= 0.5
}
