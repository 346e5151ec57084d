// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math/bits"
	"sync/atomic"
)

// Ring is a single-producer/single-consumer FIFO of canonical samples.
//
// Exactly one goroutine may call Write and exactly one other goroutine may
// call Read. Neither side blocks or takes a lock: the write position is
// published by the producer and the read position by the consumer, each with
// an atomic store that the other side observes with an atomic load.
// Writes and reads move whole frames only. When the ring is full the producer
// drops what does not fit.
type Ring struct {
	buf      []float32
	mask     uint64
	channels uint64

	// written and read are monotonically increasing sample counters.
	written atomic.Uint64
	read    atomic.Uint64
	dropped atomic.Uint64
}

// NewRing allocates a ring of interleaved frames able to hold at least
// capacity samples. The capacity is rounded up to a power of two.
func NewRing(capacity, channels int) *Ring {
	channels = max(channels, 1)
	capacity = max(capacity, 2*channels)
	size := uint64(1) << bits.Len64(uint64(capacity-1))
	return &Ring{
		buf:      make([]float32, size),
		mask:     size - 1,
		channels: uint64(channels),
	}
}

// Channels is the frame width of the ring.
func (r *Ring) Channels() int { return int(r.channels) }

// Cap is the number of samples the ring can hold.
func (r *Ring) Cap() int { return len(r.buf) }

// Len is the number of samples available to the consumer.
func (r *Ring) Len() int {
	return int(r.written.Load() - r.read.Load())
}

// Dropped is the total number of samples discarded because the ring was full.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }

// Write appends as many samples from src as fit and returns that count.
// Producer side only.
func (r *Ring) Write(src []float32) int {
	w := r.written.Load()
	free := uint64(len(r.buf)) - (w - r.read.Load())
	n := min(uint64(len(src)), free)
	n -= n % r.channels
	if n < uint64(len(src)) {
		r.dropped.Add(uint64(len(src)) - n)
	}
	if n == 0 {
		return 0
	}

	start := w & r.mask
	first := min(n, uint64(len(r.buf))-start)
	copy(r.buf[start:start+first], src[:first])
	copy(r.buf[:n-first], src[first:n])

	r.written.Store(w + n)
	return int(n)
}

// Read moves up to len(dst) samples into dst and returns that count.
// Consumer side only.
func (r *Ring) Read(dst []float32) int {
	rd := r.read.Load()
	avail := r.written.Load() - rd
	n := min(uint64(len(dst)), avail)
	n -= n % r.channels
	if n == 0 {
		return 0
	}

	start := rd & r.mask
	first := min(n, uint64(len(r.buf))-start)
	copy(dst[:first], r.buf[start:start+first])
	copy(dst[first:n], r.buf[:n-first])

	r.read.Store(rd + n)
	return int(n)
}

// Discard drops up to n buffered samples from the consumer side.
func (r *Ring) Discard(n int) int {
	rd := r.read.Load()
	avail := r.written.Load() - rd
	k := min(uint64(max(n, 0)), avail)
	k -= k % r.channels
	r.read.Store(rd + k)
	return int(k)
}
