// Package detect implements the multi-signal hallucination detector: a set
// of independent scanners over a candidate response, confidence scoring,
// and an idempotent correction generator.
package detect

import (
	"github.com/m-mizutani/veracity/pkg/model"
)

// Context carries the ground truth a scanner may check a response against
type Context struct {
	// UserInput is the utterance the response answers
	UserInput string

	// History is the rolling conversation, oldest first. Two turns or
	// fewer means the conversation is effectively new.
	History []string

	// Turns is the memory buffer's view of the conversation, when available
	Turns []*model.MemoryTurn
}

// NewConversation reports whether the history is too short to support any
// claim about prior discussion.
func (c *Context) NewConversation() bool {
	return len(c.History) <= 2
}

// HistoryText joins the history for lexical comparisons
func (c *Context) HistoryText() string {
	out := ""
	for _, h := range c.History {
		if out != "" {
			out += " "
		}
		out += h
	}
	return out
}

// Scanner inspects a response and returns zero or more flags. Scanners are
// independent: each runs in isolation and a failing scanner never blocks
// the others.
type Scanner interface {
	Name() string
	Scan(text string, sctx *Context) []*model.HallucinationFlag
}
