package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini gemini-embedding-001 is configured to emit 768 dimensions.
const EmbeddingDimension = 768

var (
	ErrInvalidRecord = goerr.New("invalid vector record")
)

type RecordID string

// NewRecordID generates a new unique RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

type RecordKind string

const (
	RecordKindKnowledge  RecordKind = "knowledge"
	RecordKindTurn       RecordKind = "turn"
	RecordKindEvaluation RecordKind = "evaluation"
)

// KnowledgeMeta describes a knowledge-base entry loaded from an external source.
type KnowledgeMeta struct {
	Category   string  `json:"category"`
	Importance float64 `json:"importance"`
	Quality    float64 `json:"quality"`
}

// TurnMeta describes a conversational turn captured during a session.
type TurnMeta struct {
	Role     Role   `json:"role"`
	Session  string `json:"session"`
	Sequence int    `json:"sequence"`
}

// EvaluationMeta describes a stored verification outcome.
type EvaluationMeta struct {
	Confidence float64 `json:"confidence"`
	FlagCount  int     `json:"flag_count"`
}

// VectorRecord is one entry of a vector collection. Exactly one of the
// Kind-matching meta fields is set; the others stay nil.
type VectorRecord struct {
	ID        RecordID   `json:"id"`
	Text      string     `json:"text"`
	Embedding []float32  `json:"embedding"`
	Kind      RecordKind `json:"kind"`

	Knowledge  *KnowledgeMeta  `json:"knowledge,omitempty"`
	Turn       *TurnMeta       `json:"turn,omitempty"`
	Evaluation *EvaluationMeta `json:"evaluation,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record is well formed and its meta matches the kind
func (r *VectorRecord) Validate() error {
	if r.ID == "" {
		return goerr.Wrap(ErrInvalidRecord, "record ID is empty")
	}
	if r.Text == "" {
		return goerr.Wrap(ErrInvalidRecord, "record text is empty", goerr.V("id", r.ID))
	}

	switch r.Kind {
	case RecordKindKnowledge:
		if r.Knowledge == nil {
			return goerr.Wrap(ErrInvalidRecord, "knowledge meta is missing", goerr.V("id", r.ID))
		}
	case RecordKindTurn:
		if r.Turn == nil {
			return goerr.Wrap(ErrInvalidRecord, "turn meta is missing", goerr.V("id", r.ID))
		}
	case RecordKindEvaluation:
		if r.Evaluation == nil {
			return goerr.Wrap(ErrInvalidRecord, "evaluation meta is missing", goerr.V("id", r.ID))
		}
	default:
		return goerr.Wrap(ErrInvalidRecord, "unknown record kind", goerr.V("kind", r.Kind))
	}

	return nil
}

// Importance returns the retention weight of the record regardless of kind.
// Knowledge records carry an explicit importance; turns and evaluations use
// a fixed baseline.
func (r *VectorRecord) Importance() float64 {
	switch r.Kind {
	case RecordKindKnowledge:
		if r.Knowledge != nil {
			return r.Knowledge.Importance
		}
	case RecordKindEvaluation:
		if r.Evaluation != nil {
			return r.Evaluation.Confidence
		}
	}
	return 0.5
}

// Quality returns the content quality score used by the persistence gate
func (r *VectorRecord) Quality() float64 {
	if r.Kind == RecordKindKnowledge && r.Knowledge != nil {
		return r.Knowledge.Quality
	}
	return 0.5
}

// PersistedVectorRecord wraps a VectorRecord with the persistence envelope
type PersistedVectorRecord struct {
	VectorRecord `json:",inline"`

	Collection  string    `json:"collection"`
	PersistedAt time.Time `json:"persisted_at"`
}

// KnowledgeEntry is the ingestion shape for bulk knowledge loading
type KnowledgeEntry struct {
	Content    string  `json:"content" yaml:"content"`
	Category   string  `json:"category" yaml:"category"`
	Importance float64 `json:"importance" yaml:"importance"`
}

// Validate checks the entry can be turned into a record
func (e *KnowledgeEntry) Validate() error {
	if e.Content == "" {
		return goerr.New("knowledge entry content is empty")
	}
	if e.Importance < 0 || e.Importance > 1 {
		return goerr.New("knowledge entry importance is out of range", goerr.V("importance", e.Importance))
	}
	return nil
}
