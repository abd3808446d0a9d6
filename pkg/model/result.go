package model

import "time"

// StagesApplied records which pipeline stages actually ran and altered state
type StagesApplied struct {
	RAG       bool `json:"rag"`
	Reasoning bool `json:"reasoning"`
	Detection bool `json:"detection"`
}

// PipelineResult is returned to the conversation component for every
// processed response. It is not retained by the pipeline itself.
type PipelineResult struct {
	ProcessedResponse string        `json:"processed_response"`
	WasRevised        bool          `json:"was_revised"`
	Stages            StagesApplied `json:"stages_applied"`
	Confidence        float64       `json:"confidence"`
	ProcessingTime    time.Duration `json:"processing_time_ms"`
	IssueDetails      []string      `json:"issue_details,omitempty"`
}

// StoreStats is the aggregate persisted-store bookkeeping written on every
// successful persistence merge.
type StoreStats struct {
	TotalRecords  int            `json:"total_records"`
	PerCollection map[string]int `json:"per_collection"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
