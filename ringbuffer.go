// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"code.hybscloud.com/atomix"
)

// RingBuffer is a single-producer single-consumer lock-free bounded queue
// of fixed-size elements.
//
// Based on Lamport's ring buffer with cached index optimization: the
// producer caches the consumer's dequeue index, and vice versa, to reduce
// cross-core cache line traffic. Exactly one goroutine may call Push;
// exactly one distinct goroutine may call Pop. Concurrent Push/Pop from
// their respective single owners is safe without locks; calling Push from
// two goroutines (or Pop from two) is not.
//
// Capacity requested at construction rounds up to the next power of two
// so index wrap can use a bitmask instead of a modulo. One slot of the
// rounded capacity is always held back: Full reports true once
// capacity-1 elements are queued, matching the reserved-slot convention
// the native ring buffer uses to distinguish empty from full.
type RingBuffer[T any] struct {
	_          pad
	head       atomix.Uint64 // consumer reads from here
	_          pad
	cachedTail uint64 // consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // producer writes here
	_          pad
	cachedHead uint64 // producer's cached view of head
	_          pad
	buffer     []T
	mask       uint64
}

// NewRingBuffer creates a ring buffer of the requested capacity, rounded
// up to the next power of two. Panics if capacity < 2, matching
// code.hybscloud.com/lfq's SPSC constructor.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 2 {
		panic("sidecore: ring buffer capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &RingBuffer[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Push adds an element to the buffer. Producer-only.
// Returns ErrFull if the buffer has no free slot.
func (b *RingBuffer[T]) Push(elem *T) error {
	tail := b.tail.LoadRelaxed()
	if tail-b.cachedHead >= b.mask {
		b.cachedHead = b.head.LoadAcquire()
		if tail-b.cachedHead >= b.mask {
			return ErrFull
		}
	}

	b.buffer[tail&b.mask] = *elem
	b.tail.StoreRelease(tail + 1)
	return nil
}

// Pop removes and returns the oldest element. Consumer-only.
// Returns (zero-value, ErrEmpty) if the buffer has nothing to pop.
func (b *RingBuffer[T]) Pop() (T, error) {
	head := b.head.LoadRelaxed()
	if head >= b.cachedTail {
		b.cachedTail = b.tail.LoadAcquire()
		if head >= b.cachedTail {
			var zero T
			return zero, ErrEmpty
		}
	}

	elem := b.buffer[head&b.mask]
	var zero T
	b.buffer[head&b.mask] = zero
	b.head.StoreRelease(head + 1)
	return elem, nil
}

// Cap returns the buffer's actual capacity (rounded up to a power of two).
func (b *RingBuffer[T]) Cap() int {
	return int(b.mask + 1)
}

// Len returns an instantaneous snapshot of the number of queued elements.
// head and tail are monotonically increasing counters (they wrap only on
// uint64 overflow, not per slot), so their raw difference is unambiguous
// between empty and full, unlike a wrapped-index comparison. Consistent
// only at the moment both indices are sampled; callers must treat it as
// approximate under concurrent Push/Pop.
func (b *RingBuffer[T]) Len() int {
	head := b.head.LoadAcquire()
	tail := b.tail.LoadAcquire()
	return int(tail - head)
}

// Empty reports whether the buffer currently holds no elements.
func (b *RingBuffer[T]) Empty() bool {
	return b.head.LoadAcquire() == b.tail.LoadAcquire()
}

// Full reports whether the buffer currently has no free slot, i.e. holds
// Cap()-1 elements — one slot is always held back.
func (b *RingBuffer[T]) Full() bool {
	head := b.head.LoadAcquire()
	tail := b.tail.LoadAcquire()
	return tail-head >= b.mask
}

// Destroy releases the backing storage. The buffer must not be used
// afterward.
func (b *RingBuffer[T]) Destroy() {
	b.buffer = nil
}
