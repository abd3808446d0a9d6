package cache

import (
	"slices"
	"time"
)

// Policy bounds the persisted footprint. The share and threshold values are
// tunable; defaults follow observed behavior, not derived constants.
type Policy struct {
	// MaxTotal caps the persisted record count across all collections
	MaxTotal int

	// MaxPerCollection caps the records accepted from one Persist call
	MaxPerCollection int

	// Expiration drops persisted records older than this window
	Expiration time.Duration

	// PriorityCollections always pass the quality gate and reserve a share
	// of the global cap
	PriorityCollections []string

	// PriorityMinShare is the slot share guaranteed to priority collections
	// when their demand is high (0.5 = half the cap)
	PriorityMinShare float64

	// PriorityMaxShare caps how much of the global cap priority collections
	// may claim
	PriorityMaxShare float64

	// MinTextLength drops records whose text is shorter
	MinTextLength int

	// QualityThreshold gates non-priority records: quality or importance
	// must exceed it
	QualityThreshold float64
}

// DefaultPolicy returns the standard retention policy
func DefaultPolicy() Policy {
	return Policy{
		MaxTotal:            250,
		MaxPerCollection:    100,
		Expiration:          7 * 24 * time.Hour,
		PriorityCollections: []string{"knowledge_base"},
		PriorityMinShare:    0.5,
		PriorityMaxShare:    0.8,
		MinTextLength:       10,
		QualityThreshold:    0.7,
	}
}

// IsPriority reports whether the collection is on the priority allowlist
func (p *Policy) IsPriority(collection string) bool {
	return slices.Contains(p.PriorityCollections, collection)
}
