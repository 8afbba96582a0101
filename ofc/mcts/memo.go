package mcts

import (
	"sync"

	lru "github.com/opencoff/golang-lru"
)

// Memo is an optional bounded transposition table keyed by a canonical
// hash of (Arrangement, unseen, dealt). It is a value cache, not a shared
// subtree: a hit short-circuits a playout with a remembered mean value
// instead of reusing any tree structure, trading fidelity for speed.
// Eviction is oldest-first via the underlying LRU.
type Memo struct {
	mu    sync.Mutex
	cache *lru.Cache
}

type memoEntry struct {
	n int64
	w float64
}

// NewMemo builds a memo with room for capacity entries. A non-positive
// capacity disables the memo (Lookup always misses, Record is a no-op).
func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		return nil
	}
	c, err := lru.New(capacity)
	if err != nil {
		return nil
	}
	return &Memo{cache: c}
}

// Lookup returns the memoized mean value and sample count for s, if any.
func (m *Memo) Lookup(s State) (value float64, n int64, ok bool) {
	if m == nil {
		return 0, 0, false
	}
	m.mu.Lock()
	v, found := m.cache.Get(canonicalKey(s))
	m.mu.Unlock()
	if !found {
		return 0, 0, false
	}
	e := v.(*memoEntry)
	return e.w / float64(e.n), e.n, true
}

// Record folds a fresh playout value into s's memo entry.
func (m *Memo) Record(s State, value float64) {
	if m == nil {
		return
	}
	key := canonicalKey(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.cache.Get(key); ok {
		e := v.(*memoEntry)
		e.n++
		e.w += value
		return
	}
	m.cache.Add(key, &memoEntry{n: 1, w: value})
}

// canonicalKey combines the arrangement's three row masks, the unseen set,
// the street, and the dealt cards into a single FNV-1a-style hash.
func canonicalKey(s State) uint64 {
	const offset = uint64(14695981039346656037)
	h := offset
	h = combine(h, uint64(s.Arrangement.Top.Set()))
	h = combine(h, uint64(s.Arrangement.Middle.Set()))
	h = combine(h, uint64(s.Arrangement.Bottom.Set()))
	h = combine(h, uint64(s.Unseen))
	h = combine(h, uint64(s.Street))
	for _, c := range s.Dealt {
		h = combine(h, uint64(c))
	}
	return h
}

func combine(h, v uint64) uint64 {
	const prime = uint64(1099511628211)
	h ^= v
	h *= prime
	return h
}
