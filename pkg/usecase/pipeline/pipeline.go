package pipeline

import (
	"context"
	"time"

	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/cache"
	"github.com/m-mizutani/veracity/pkg/detect"
	"github.com/m-mizutani/veracity/pkg/memory"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/retrieval"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
	"github.com/m-mizutani/veracity/pkg/vector"
)

// TurnCollection holds vectorized conversation turns for retrieval support.
const TurnCollection = "conversation_turns"

// Pipeline sequences the verification stages over a candidate response:
// retrieval augmentation, claim verification, hallucination detection with
// correction, and a final repetition fix. Every stage fails open. A reply
// always comes back, revised or not.
type Pipeline struct {
	config    Config
	store     *vector.Store
	embedder  adapter.Embedder
	engine    *retrieval.Engine
	detector  *detect.Detector
	corrector *detect.Corrector
	buffer    *memory.Buffer
	persister *cache.Persister
}

// Option is a functional option for Pipeline
type Option func(*Pipeline)

// WithConfig replaces the default stage configuration
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		p.config = cfg
	}
}

// WithPersister enables durable persistence of the vector store
func WithPersister(persister *cache.Persister) Option {
	return func(p *Pipeline) {
		p.persister = persister
	}
}

// WithDetector replaces the default detector battery
func WithDetector(d *detect.Detector) Option {
	return func(p *Pipeline) {
		p.detector = d
	}
}

// WithBufferCapacity sets the rolling memory size
func WithBufferCapacity(n int) Option {
	return func(p *Pipeline) {
		p.buffer = memory.NewBuffer(n)
	}
}

// New creates a pipeline over the given vector store and embedder
func New(store *vector.Store, embedder adapter.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    DefaultConfig(),
		store:     store,
		embedder:  embedder,
		corrector: detect.NewCorrector(),
		buffer:    memory.NewBuffer(0),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.engine = retrieval.New(store, embedder)
	if p.detector == nil {
		p.detector = detect.New(detect.WithTokenThreshold(p.config.TokenThreshold))
	}

	return p
}

// Init warms the vector store from the durable backend and returns the
// number of records restored.
func (p *Pipeline) Init(ctx context.Context) int {
	if p.persister == nil {
		return 0
	}
	return p.persister.Warm(ctx, p.store)
}

// Flush persists every in-memory collection through the eviction policy
func (p *Pipeline) Flush(ctx context.Context) {
	if p.persister == nil {
		return
	}
	for _, name := range p.store.Names() {
		p.persister.Persist(ctx, name, p.store.Collection(name).All())
	}
}

// Shutdown flushes pending state. The repository itself is closed by the
// caller that opened it.
func (p *Pipeline) Shutdown(ctx context.Context) {
	p.Flush(ctx)
}

// Process runs the enabled stages over a candidate response and returns the
// final text with verification metadata. It never returns an error: a stage
// that fails internally is skipped and the text carries forward unmodified.
func (p *Pipeline) Process(ctx context.Context, response, input string, history []string) *model.PipelineResult {
	started := time.Now()

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	result := &model.PipelineResult{
		ProcessedResponse: response,
		Confidence:        1.0,
	}

	if p.buffer.IsNewConversation(input) {
		p.buffer.Reset()
		p.store.Collection(TurnCollection).Clear()
	}

	text := response

	if p.config.EnableRAG && ctx.Err() == nil {
		p.runStage(ctx, "rag", func() error {
			passages, err := p.engine.Retrieve(ctx, input, history, retrieval.Options{
				Rerank: p.config.EnableReranking,
			})
			if err != nil {
				return err
			}
			if len(passages) == 0 {
				return nil
			}
			if augmented := retrieval.Augment(text, passages[0]); augmented != text {
				text = augmented
				result.Stages.RAG = true
			}
			return nil
		})
	}

	if p.config.EnableReasoning && ctx.Err() == nil {
		p.runStage(ctx, "reasoning", func() error {
			verified, issues := p.verifyClaims(text, input, history)
			if len(issues) == 0 {
				return nil
			}
			result.IssueDetails = append(result.IssueDetails, issues...)
			result.Confidence *= 0.8
			result.Stages.Reasoning = true
			text = verified
			return nil
		})
	}

	if p.config.EnableDetection && ctx.Err() == nil {
		p.runStage(ctx, "detection", func() error {
			check := p.detector.Check(ctx, text, &detect.Context{
				UserInput: input,
				History:   history,
				Turns:     p.buffer.Turns(),
			})
			result.Stages.Detection = true

			if check.IsHallucination {
				for _, flag := range check.Flags {
					result.IssueDetails = append(result.IssueDetails, flag.Description)
				}
				if check.Corrected != "" {
					text = check.Corrected
				}
				result.Confidence *= 1 - (1-check.Confidence)*p.config.DetectionSensitivity
				return nil
			}

			// Critical safety flags surface even when the text stands.
			for _, flag := range check.Flags {
				if flag.Severity.AtLeast(model.SeverityCritical) {
					result.IssueDetails = append(result.IssueDetails, flag.Description)
				}
			}
			return nil
		})
	}

	// Repetition fix runs regardless of stage toggles.
	if deduped := p.corrector.DeduplicateSentences(text); deduped != text {
		text = deduped
		result.Confidence *= 0.9
	}

	p.recordTurns(ctx, input, text)

	if result.Confidence < 0 {
		result.Confidence = 0
	}

	result.ProcessedResponse = text
	result.WasRevised = text != response
	result.ProcessingTime = time.Since(started)
	return result
}

// Memory exposes the rolling buffer for callers that render history
func (p *Pipeline) Memory() *memory.Buffer {
	return p.buffer
}

// runStage isolates one stage: an error or panic is logged and the pipeline
// continues with whatever text it had before the stage.
func (p *Pipeline) runStage(ctx context.Context, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("pipeline stage panicked",
				"stage", name,
				"panic", r,
			)
		}
	}()

	if err := fn(); err != nil {
		logging.From(ctx).Warn("pipeline stage failed, keeping current text",
			"stage", name,
			"error", err,
		)
	}
}

// recordTurns appends the exchange to the rolling memory and vectorizes it
// into the turn collection. Embedding failures drop the vector copy only.
func (p *Pipeline) recordTurns(ctx context.Context, input, response string) {
	p.buffer.Add(model.RolePatient, input)
	p.buffer.Add(model.RoleAgent, response)

	turns := p.buffer.Turns()
	if len(turns) < 2 {
		return
	}

	coll := p.store.Collection(TurnCollection)
	for _, turn := range turns[len(turns)-2:] {
		embedding, err := p.embedder.Embed(ctx, turn.Content)
		if err != nil {
			logging.From(ctx).Warn("failed to vectorize turn", "error", err)
			continue
		}
		coll.Insert(&model.VectorRecord{
			ID:        model.NewRecordID(),
			Text:      turn.Content,
			Embedding: embedding,
			Kind:      model.RecordKindTurn,
			Turn: &model.TurnMeta{
				Role:     turn.Role,
				Sequence: turn.Sequence,
			},
			CreatedAt: time.Now(),
		})
	}
}
