package corpus

import (
	"sync/atomic"
)

// Holder publishes the current corpus. Readers load the pointer once per query
// and keep using that snapshot even if a reload swaps in a new one.
type Holder struct {
	current atomic.Pointer[Corpus]
	gen     atomic.Uint64
}

// NewHolder creates a holder, optionally with an initial corpus
func NewHolder(initial *Corpus) *Holder {
	h := &Holder{}
	if initial != nil {
		h.Swap(initial)
	}
	return h
}

// Load returns the current corpus, or nil if none has been published
func (h *Holder) Load() *Corpus {
	return h.current.Load()
}

// Swap publishes c and returns the previous corpus. c must not be shared with
// another holder.
func (h *Holder) Swap(c *Corpus) *Corpus {
	c.generation = h.gen.Add(1)
	return h.current.Swap(c)
}
