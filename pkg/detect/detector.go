package detect

import (
	"context"

	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
)

// Weights are the per-flag confidence penalties. Empirically tuned, not
// derived; override through config when the defaults misbehave.
type Weights struct {
	FalseMemory     float64
	LogicalError    float64
	FalseContinuity float64
	TokenRisk       float64
	Repetition      float64
	ProtocolMix     float64
}

func DefaultWeights() Weights {
	return Weights{
		FalseMemory:     0.25,
		LogicalError:    0.20,
		FalseContinuity: 0.30,
		TokenRisk:       0.15,
		Repetition:      0.35,
		ProtocolMix:     0.85,
	}
}

func (w *Weights) penalty(t model.FlagType) float64 {
	switch t {
	case model.FlagFalseMemory:
		return w.FalseMemory
	case model.FlagLogicalError:
		return w.LogicalError
	case model.FlagFalseContinuity:
		return w.FalseContinuity
	case model.FlagTokenRisk:
		return w.TokenRisk
	case model.FlagRepetition:
		return w.Repetition
	case model.FlagProtocolMix:
		return w.ProtocolMix
	}
	return 0.1
}

// hallucinationFloor is the confidence below which a response counts as a
// hallucination even without a high-severity flag
const hallucinationFloor = 0.6

func severityFactor(s model.Severity) float64 {
	switch s {
	case model.SeverityLow:
		return 0.5
	case model.SeverityCritical:
		return 2.0
	default:
		return 1.0
	}
}

// Detector runs the scanner battery over a response and aggregates the
// flags into a confidence score and classification.
type Detector struct {
	scanners  []Scanner
	weights   Weights
	corrector *Corrector
}

type Option func(*Detector)

// WithWeights overrides the default penalty weights
func WithWeights(w Weights) Option {
	return func(d *Detector) {
		d.weights = w
	}
}

// WithScanners replaces the default scanner battery
func WithScanners(scanners ...Scanner) Option {
	return func(d *Detector) {
		d.scanners = scanners
	}
}

// WithTokenThreshold tunes the token-level scanner
func WithTokenThreshold(threshold float64) Option {
	return func(d *Detector) {
		for _, s := range d.scanners {
			if ts, ok := s.(*TokenScanner); ok {
				ts.Threshold = threshold
			}
		}
	}
}

func New(opts ...Option) *Detector {
	d := &Detector{
		scanners: []Scanner{
			&MemoryClaimScanner{},
			&ContinuityScanner{},
			&LogicScanner{},
			&RepetitionScanner{},
			&TokenScanner{},
			&ProtocolScanner{},
		},
		weights:   DefaultWeights(),
		corrector: NewCorrector(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Check scans the response and, when it classifies as a hallucination,
// attaches corrected text to the result.
func (d *Detector) Check(ctx context.Context, text string, sctx *Context) *model.CheckResult {
	result := &model.CheckResult{Confidence: 1.0}

	// The full battery only runs when the conversation is new or the
	// quick check finds a surface anomaly.
	if !sctx.NewConversation() && !quickCheck(text) {
		return result
	}

	for _, scanner := range d.scanners {
		flags := d.runScanner(ctx, scanner, text, sctx)
		result.Flags = append(result.Flags, flags...)
	}

	for _, flag := range result.Flags {
		p := d.weights.penalty(flag.Type)
		// Protocol flags subtract their weight directly; everything else
		// scales with severity.
		if flag.Type != model.FlagProtocolMix {
			p *= severityFactor(flag.Severity)
		}
		result.Confidence -= p
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	result.IsHallucination = result.Confidence < hallucinationFloor || result.HasSeverity(model.SeverityHigh)

	if result.IsHallucination {
		result.Corrected = d.corrector.Correct(text, result.Flags)
	}

	return result
}

// runScanner isolates scanner failures: a panicking scanner contributes no
// flags and the rest of the battery still runs.
func (d *Detector) runScanner(ctx context.Context, scanner Scanner, text string, sctx *Context) (flags []*model.HallucinationFlag) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Warn("scanner panicked, skipping", "scanner", scanner.Name(), "panic", r)
			flags = nil
		}
	}()

	return scanner.Scan(text, sctx)
}
