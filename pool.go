// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"sync"
	"unsafe"
)

// blockHeader is the intrusive free-list link threaded through every
// block, slab-resident or overflow. It occupies the first 8 bytes of
// each block's stride; Alloc hands the caller the address just past it.
type blockHeader struct {
	next *blockHeader
}

var headerSize = unsafe.Sizeof(blockHeader{})

// PoolConfig configures a BlockPool.
type PoolConfig struct {
	// BlockSize is the caller-visible payload size of each block.
	BlockSize int
	// InitialBlocks is the number of blocks carved from the pool's single
	// initial slab. Defaults to 64 if <= 0.
	InitialBlocks int
	// MaxBlocks caps the total number of blocks (slab + overflow). 0 means
	// unlimited.
	MaxBlocks int
	// ThreadSafe gates a mutex around every mutating operation and Stats.
	ThreadSafe bool
}

// PoolStats reports a BlockPool's current accounting.
type PoolStats struct {
	TotalBlocks uint64
	UsedBlocks  uint64
	FreeBlocks  uint64
	TotalBytes  uint64
	UsedBytes   uint64
	AllocCount  uint64
	FreeCount   uint64
}

// BlockPool is a fixed-block allocator that amortizes allocation for
// same-sized records. A single slab is carved into InitialBlocks blocks at
// construction; once its free list is exhausted, Alloc grows the pool one
// block at a time (an "overflow" block, allocated outside the slab) until
// MaxBlocks is reached. Free never validates that a pointer originated
// from this pool — passing a foreign pointer is undefined behavior.
type BlockPool struct {
	blockSize     uintptr
	stride        uintptr // aligned header + payload size
	initialBlocks int
	maxBlocks     int

	mu       sync.Mutex
	threadSafe bool

	slab     []uint64 // owned initial slab; kept alive for its lifetime
	freeList *blockHeader

	totalBlocks int
	usedBlocks  int
	allocCount  uint64
	freeCount   uint64
}

// NewBlockPool creates a pool per cfg. Returns ErrInvalid if BlockSize <= 0.
func NewBlockPool(cfg PoolConfig) (*BlockPool, error) {
	if cfg.BlockSize <= 0 {
		return nil, ErrInvalid
	}

	initial := cfg.InitialBlocks
	if initial <= 0 {
		initial = 64
	}

	p := &BlockPool{
		blockSize:     uintptr(cfg.BlockSize),
		stride:        alignUp8(uintptr(cfg.BlockSize) + headerSize),
		initialBlocks: initial,
		maxBlocks:     cfg.MaxBlocks,
		threadSafe:    cfg.ThreadSafe,
	}

	slabBytes := p.stride * uintptr(initial)
	p.slab = make([]uint64, (slabBytes+7)/8)
	p.buildFreeListFromSlab()
	p.totalBlocks = initial

	return p, nil
}

// buildFreeListFromSlab threads every block in the owned slab onto the
// free list, in slab order reversed (the first block carved ends up at
// the list's tail, matching the native carve-then-push loop).
func (p *BlockPool) buildFreeListFromSlab() {
	base := unsafe.Pointer(unsafe.SliceData(p.slab))
	p.freeList = nil
	for i := 0; i < p.initialBlocks; i++ {
		block := (*blockHeader)(unsafe.Add(base, uintptr(i)*p.stride))
		block.next = p.freeList
		p.freeList = block
	}
}

func (p *BlockPool) lock() {
	if p.threadSafe {
		p.mu.Lock()
	}
}

func (p *BlockPool) unlock() {
	if p.threadSafe {
		p.mu.Unlock()
	}
}

// Alloc returns a pointer to a block's payload, or ErrNoMem if the pool
// has reached MaxBlocks and its free list is empty. A block handed out
// again after Free keeps whatever its previous user wrote; it is not
// cleared.
func (p *BlockPool) Alloc() (unsafe.Pointer, error) {
	p.lock()
	defer p.unlock()

	if p.freeList == nil {
		if p.maxBlocks > 0 && p.totalBlocks >= p.maxBlocks {
			return nil, ErrNoMem
		}

		// Overflow block: allocated outside the slab, leaked at Reset and
		// only reclaimed (by the GC) once no longer reachable after Free
		// is never called for it — the same tradeoff the native pool makes
		// by never freeing overflow blocks back to the system allocator.
		words := make([]uint64, (p.stride+7)/8)
		block := (*blockHeader)(unsafe.Pointer(unsafe.SliceData(words)))
		block.next = nil
		p.freeList = block
		p.totalBlocks++
	}

	block := p.freeList
	p.freeList = block.next
	p.usedBlocks++
	p.allocCount++

	return unsafe.Add(unsafe.Pointer(block), headerSize), nil
}

// Free returns ptr to the pool's free list. ptr must have been returned by
// a prior Alloc on this pool and must not be freed more than once.
func (p *BlockPool) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	block := (*blockHeader)(unsafe.Add(ptr, -int(headerSize)))

	p.lock()
	defer p.unlock()

	block.next = p.freeList
	p.freeList = block
	p.usedBlocks--
	p.freeCount++
}

// Stats reports the pool's current accounting.
func (p *BlockPool) Stats() PoolStats {
	p.lock()
	defer p.unlock()

	return PoolStats{
		TotalBlocks: uint64(p.totalBlocks),
		UsedBlocks:  uint64(p.usedBlocks),
		FreeBlocks:  uint64(p.totalBlocks - p.usedBlocks),
		TotalBytes:  uint64(p.totalBlocks) * uint64(p.blockSize),
		UsedBytes:   uint64(p.usedBlocks) * uint64(p.blockSize),
		AllocCount:  p.allocCount,
		FreeCount:   p.freeCount,
	}
}

// Reset rebuilds the free list from the original slab, restoring
// TotalBlocks to InitialBlocks and UsedBlocks to 0. Overflow blocks
// allocated since creation (or since the last Reset) are leaked — this is
// a deliberate performance tradeoff; drain the pool before calling Reset
// if that leak is undesirable.
func (p *BlockPool) Reset() {
	p.lock()
	defer p.unlock()

	p.buildFreeListFromSlab()
	p.totalBlocks = p.initialBlocks
	p.usedBlocks = 0
}

// Destroy releases the pool's owned slab. The pool must not be used
// afterward.
func (p *BlockPool) Destroy() {
	p.lock()
	defer p.unlock()

	p.slab = nil
	p.freeList = nil
}
