package detect

import (
	"github.com/m-mizutani/veracity/pkg/model"
)

// ProtocolScanner guards a safety invariant rather than a quality one: a
// response must never mix crisis-protocol content with unrelated casual
// content in the same utterance.
type ProtocolScanner struct{}

func (s *ProtocolScanner) Name() string { return "protocol_mix" }

func (s *ProtocolScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	if !crisisTerms.MatchString(text) {
		return nil
	}
	if !casualTerms.MatchString(text) {
		return nil
	}

	return []*model.HallucinationFlag{{
		Type:        model.FlagProtocolMix,
		Severity:    model.SeverityCritical,
		Description: "crisis-protocol content mixed with casual content in one utterance",
	}}
}
