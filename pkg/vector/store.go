// Package vector provides the in-memory vector collection index. It holds
// no persistence logic; durability is layered on top by pkg/cache.
package vector

import (
	"sort"
	"sync"

	"github.com/m-mizutani/veracity/pkg/model"
)

// Store owns named collections of vector records. It is shared across
// conversation sessions in a process and safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func NewStore() *Store {
	return &Store{
		collections: map[string]*Collection{},
	}
}

// Collection returns the named collection, creating it if absent
func (s *Store) Collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}

	c := &Collection{
		name:  name,
		index: map[model.RecordID]int{},
	}
	s.collections[name] = c
	return c
}

// Names returns all collection names currently held by the store
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection is an insertion-ordered set of vector records with similarity
// search. Size is bounded by the persistence layer's caps, not here.
type Collection struct {
	mu      sync.RWMutex
	name    string
	records []*model.VectorRecord
	index   map[model.RecordID]int
}

func (c *Collection) Name() string {
	return c.name
}

// Insert appends a record. A duplicate ID overwrites the existing record in
// place, keeping its original insertion position.
func (c *Collection) Insert(record *model.VectorRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[record.ID]; ok {
		c.records[pos] = record
		return
	}

	c.index[record.ID] = len(c.records)
	c.records = append(c.records, record)
}

func (c *Collection) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// All returns the records in insertion order
func (c *Collection) All() []*model.VectorRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.VectorRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Clear removes every record from the collection
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = nil
	c.index = map[model.RecordID]int{}
}

// Match is one similarity search hit
type Match struct {
	Record *model.VectorRecord
	Score  float64
}

// SearchOptions controls FindSimilar
type SearchOptions struct {
	// ScoreThreshold drops matches scoring below it. Zero keeps everything.
	ScoreThreshold float64
	// Limit caps the number of returned matches. Zero means no cap.
	Limit int
}

// FindSimilar ranks records by cosine similarity against the query vector.
// Ties keep insertion order (stable sort).
func (c *Collection) FindSimilar(query []float32, opts SearchOptions) []*Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]*Match, 0, len(c.records))
	for _, r := range c.records {
		score := CosineSimilarity(query, r.Embedding)
		if score < opts.ScoreThreshold {
			continue
		}
		matches = append(matches, &Match{Record: r, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}
