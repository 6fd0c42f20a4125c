package ner

import "sync"

// Cached wraps a Recognizer with a bounded memo table. Directory pages
// repeat street phrases constantly, so the same candidate text recurs many
// times within a run.
type Cached struct {
	inner *Recognizer

	mu      sync.Mutex
	entries map[string][]Entity
	max     int
}

// NewCached wraps r with a memo table of at most max entries. max <= 0
// selects a default of 4096.
func NewCached(r *Recognizer, max int) *Cached {
	if max <= 0 {
		max = 4096
	}
	return &Cached{
		inner:   r,
		entries: make(map[string][]Entity),
		max:     max,
	}
}

// Recognize returns the memoized result for s, computing it on first use.
// When the table is full it is dropped wholesale; per-run reuse matters,
// not long-lived residency.
func (c *Cached) Recognize(s string) []Entity {
	c.mu.Lock()
	if ents, ok := c.entries[s]; ok {
		c.mu.Unlock()
		return ents
	}
	c.mu.Unlock()

	ents := c.inner.Recognize(s)

	c.mu.Lock()
	if len(c.entries) >= c.max {
		c.entries = make(map[string][]Entity)
	}
	c.entries[s] = ents
	c.mu.Unlock()
	return ents
}
