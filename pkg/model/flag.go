package model

type FlagType string

const (
	FlagFalseMemory     FlagType = "false_memory"
	FlagFalseContinuity FlagType = "false_continuity"
	FlagLogicalError    FlagType = "logical_error"
	FlagRepetition      FlagType = "repetition"
	FlagTokenRisk       FlagType = "token_risk"
	FlagProtocolMix     FlagType = "protocol_mix"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AtLeast reports whether s ranks equal to or above other
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// HallucinationFlag is a single issue raised by a detector scanner.
// Flags are transient: they live only inside a CheckResult.
type HallucinationFlag struct {
	Type        FlagType `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence,omitempty"`
}

// CheckResult is the outcome of one detector run
type CheckResult struct {
	Confidence      float64              `json:"confidence"`
	IsHallucination bool                 `json:"is_hallucination"`
	Flags           []*HallucinationFlag `json:"flags"`
	Corrected       string               `json:"corrected,omitempty"`
}

// HasSeverity reports whether any flag reaches the given severity
func (r *CheckResult) HasSeverity(min Severity) bool {
	for _, f := range r.Flags {
		if f.Severity.AtLeast(min) {
			return true
		}
	}
	return false
}
