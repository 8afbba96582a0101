// Package rng provides the deterministic, seedable randomness used
// throughout the solver. A fixed PCG-XSH-RR generator keeps search traces
// reproducible across runs and platforms given the same (seed, worker
// count); callers never reach for math/rand's global source.
package rng

import "github.com/ofcsolver/ofcsolver/ofc/card"

// Stream is a fast, small, statistically good RNG based on PCG-XSH-RR with
// 64-bit state and 32-bit output.
type Stream struct {
	state uint64
}

// New creates a Stream seeded deterministically from seed.
func New(seed int64) *Stream {
	return &Stream{state: uint64(seed)*2 + 1}
}

// Reseed reinitializes the stream in place, avoiding an allocation.
func (r *Stream) Reseed(seed int64) {
	r.state = uint64(seed)*2 + 1
}

// Uint32 returns the next pseudo-random uint32.
func (r *Stream) Uint32() uint32 {
	oldstate := r.state
	r.state = oldstate*6364136223846793005 + 1442695040888963407
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Intn returns a pseudo-random int in [0, n).
func (r *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint32() % uint32(n))
}

// Int63 returns a pseudo-random non-negative int64, for seeding derived
// streams.
func (r *Stream) Int63() int64 {
	return int64(r.Uint32())<<31 | int64(r.Uint32())
}

// DeriveWorker produces an independent stream for worker index idx from a
// root stream, so that identical (seed, worker-count) pairs reproduce the
// same set of per-worker streams across runs.
func DeriveWorker(root *Stream, idx int) *Stream {
	seed := root.Int63() ^ int64(uint64(idx)*0x9E3779B97F4A7C15+1)
	return New(seed)
}

// Sample draws n distinct cards uniformly without replacement from set and
// returns them in the order they were drawn.
func (r *Stream) Sample(set card.Set, n int) []card.Card {
	pool := set.Slice()
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := append([]card.Card(nil), pool[:n]...)
	return out
}
