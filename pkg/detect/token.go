package detect

import (
	"fmt"
	"regexp"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

var (
	numericToken = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	dateToken    = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|may|june|july|august|september|october|november|december|yesterday|tomorrow)$`)
)

// Specific-sounding tokens raise fabrication risk: concrete numbers, dates,
// and recall verbs are exactly what an ungrounded response invents.
var riskyTriggers = map[string]float64{
	"remember":  0.10,
	"mentioned": 0.08,
	"said":      0.06,
	"told":      0.06,
	"discussed": 0.08,
	"recall":    0.10,
}

// TokenScanner estimates fabrication risk from the response's tokens alone.
// The per-response confidence starts at 1.0 and each risky token subtracts
// its weight; dropping below the threshold raises a flag.
type TokenScanner struct {
	// Threshold below which the token-level confidence raises a flag
	Threshold float64
}

func (s *TokenScanner) Name() string { return "token_risk" }

func (s *TokenScanner) Scan(text string, sctx *Context) []*model.HallucinationFlag {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = 0.75
	}

	confidence := 1.0
	risky := 0
	for _, tok := range textutil.Tokenize(text) {
		switch {
		case numericToken.MatchString(tok):
			confidence -= 0.05
			risky++
		case dateToken.MatchString(tok):
			confidence -= 0.07
			risky++
		default:
			if penalty, ok := riskyTriggers[tok]; ok {
				confidence -= penalty
				risky++
			}
		}
	}
	if confidence < 0 {
		confidence = 0
	}

	if confidence >= threshold {
		return nil
	}

	severity := model.SeverityLow
	if confidence < threshold/2 {
		severity = model.SeverityMedium
	}

	return []*model.HallucinationFlag{{
		Type:        model.FlagTokenRisk,
		Severity:    severity,
		Description: fmt.Sprintf("%d specificity-risk tokens lowered token confidence to %.2f", risky, confidence),
		Confidence:  confidence,
	}}
}
