package pipeline

import "time"

// Config controls which verification stages run and how strict they are.
type Config struct {
	EnableRAG       bool
	EnableReasoning bool
	EnableDetection bool
	EnableReranking bool

	// ReasoningThreshold is the minimum per-claim support score; claims
	// scoring below it are reported as step issues.
	ReasoningThreshold float64

	// DetectionSensitivity scales the detector's confidence floor.
	DetectionSensitivity float64

	// TokenThreshold is forwarded to the token-level scanner.
	TokenThreshold float64

	// EntailmentThreshold is the support score below which a claim
	// sentence is dropped from the response entirely.
	EntailmentThreshold float64

	// Timeout caps a single Process call. Zero means no limit.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		EnableRAG:            true,
		EnableReasoning:      true,
		EnableDetection:      true,
		EnableReranking:      true,
		ReasoningThreshold:   0.5,
		DetectionSensitivity: 1.0,
		TokenThreshold:       0.75,
		EntailmentThreshold:  0.25,
		Timeout:              5 * time.Second,
	}
}
