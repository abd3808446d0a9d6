// Package memory holds the rolling conversational memory: a small, bounded
// window of recent turns used as ground truth for hallucination checks.
package memory

import (
	"strings"
	"sync"

	"github.com/m-mizutani/veracity/pkg/model"
)

// DefaultCapacity is the number of (patient, agent) turns retained
const DefaultCapacity = 5

// Buffer is a fixed-capacity FIFO ring of conversation turns. The oldest
// turn is evicted on overflow; eviction order is deterministic given
// insertion order.
type Buffer struct {
	mu       sync.RWMutex
	turns    []*model.MemoryTurn
	capacity int
	sequence int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Add appends a turn, evicting the oldest when full
func (b *Buffer) Add(role model.Role, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sequence++
	turn := &model.MemoryTurn{
		Role:     role,
		Content:  content,
		Sequence: b.sequence,
	}

	b.turns = append(b.turns, turn)
	if len(b.turns) > b.capacity {
		b.turns = b.turns[len(b.turns)-b.capacity:]
	}
}

// Turns returns the retained turns, oldest first
func (b *Buffer) Turns() []*model.MemoryTurn {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*model.MemoryTurn, len(b.turns))
	copy(out, b.turns)
	return out
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}

// Reset empties the buffer. The sequence counter keeps running so turn
// ordering stays comparable across conversation boundaries.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
}

// greetingPhrases reset the conversation when they open an input
var greetingPhrases = []string{
	"hello",
	"hi there",
	"good morning",
	"good afternoon",
	"good evening",
	"let's start over",
	"new conversation",
	"start again",
}

// IsNewConversation reports whether the input opens a fresh conversation:
// the buffer is empty, the input carries an explicit greeting or reset
// phrase, or it shares almost no vocabulary with the last two turns.
func (b *Buffer) IsNewConversation(input string) bool {
	if b.Len() == 0 {
		return true
	}

	lowered := strings.ToLower(strings.TrimSpace(input))
	for _, phrase := range greetingPhrases {
		if strings.HasPrefix(lowered, phrase) {
			return true
		}
	}

	return b.topicDiscontinuity(lowered)
}

// topicDiscontinuity fires when the input's lexical overlap with the last
// two turns is negligible. Very short inputs are ambiguous and never count
// as a discontinuity.
func (b *Buffer) topicDiscontinuity(input string) bool {
	inputTokens := tokenSet(input)
	if len(inputTokens) < 4 {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	recent := b.turns
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}

	var recentTokens map[string]bool
	for _, turn := range recent {
		if recentTokens == nil {
			recentTokens = tokenSet(turn.Content)
			continue
		}
		for tok := range tokenSet(turn.Content) {
			recentTokens[tok] = true
		}
	}
	if len(recentTokens) == 0 {
		return false
	}

	overlap := 0
	for tok := range inputTokens {
		if recentTokens[tok] {
			overlap++
		}
	}

	return float64(overlap)/float64(len(inputTokens)) < 0.05
}

// stopwords excluded from overlap comparison; they match any topic
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"i": true, "you": true, "it": true, "is": true, "am": true,
	"are": true, "was": true, "to": true, "of": true, "in": true,
	"my": true, "me": true, "that": true, "this": true, "for": true,
}

func tokenSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:'\"()")
		if tok == "" || stopwords[tok] {
			continue
		}
		set[tok] = true
	}
	return set
}
