// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"bytes"
	"sync"
)

const defaultShardSize = 4096

// IndexerConfig configures an Indexer.
type IndexerConfig struct {
	// ShardSize is the buffer occupancy at which Add implicitly calls
	// Flush. 0 uses defaultShardSize.
	ShardSize int
}

// Query filters Search over an Indexer's buffered entries.
type Query struct {
	Offset   int
	MinLevel LogLevel
	HasTimeRange bool
	StartTime    uint64
	EndTime      uint64
	Substring    string
	Limit        int
}

// Result is the outcome of a Search.
type Result struct {
	Entries      []Entry
	TotalMatches int
}

// Indexer is a placeholder log index: an append-only growable buffer with
// linear-scan search, matching the native source's unfinished state (the
// inverted index it leaves as a TODO is out of scope — see spec §1/§9).
//
// Entries passed to Add/AddBatch are deep-copied: Message/Source/Raw are
// duplicated into Indexer-owned storage rather than aliasing the
// Parser's scratch buffer, resolving the shallow-copy dangling-view
// hazard spec.md §9 documents as a design note rather than carrying it
// forward (see DESIGN.md).
type Indexer struct {
	mu        sync.Mutex
	shardSize int
	buffer    []Entry
}

// NewIndexer creates an empty Indexer per cfg.
func NewIndexer(cfg IndexerConfig) (*Indexer, error) {
	shardSize := cfg.ShardSize
	if shardSize <= 0 {
		shardSize = defaultShardSize
	}
	return &Indexer{shardSize: shardSize}, nil
}

func copyEntry(e Entry) Entry {
	out := e
	out.Message = append([]byte(nil), e.Message...)
	out.Source = append([]byte(nil), e.Source...)
	out.Raw = append([]byte(nil), e.Raw...)
	return out
}

// Add appends a deep copy of entry to the buffer, growing it by doubling
// when it must. If the buffer's occupancy reaches ShardSize afterward,
// Flush is invoked implicitly.
func (idx *Indexer) Add(entry Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.buffer = append(idx.buffer, copyEntry(entry))
	if len(idx.buffer) >= idx.shardSize {
		idx.flushLocked()
	}
	return nil
}

// AddBatch appends deep copies of every entry in entries, in order.
func (idx *Indexer) AddBatch(entries []Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, e := range entries {
		idx.buffer = append(idx.buffer, copyEntry(e))
		if len(idx.buffer) >= idx.shardSize {
			idx.flushLocked()
		}
	}
	return nil
}

// Search performs a linear scan over the buffer starting at query.Offset,
// filtering by MinLevel, an optional [StartTime, EndTime] range, and a
// substring match of query.Substring against each entry's Message. It
// stops scanning once Limit matches have been found (default 100 when
// Limit <= 0); TotalMatches is simply len(Entries) — there is no separate
// aggregate beyond what is returned.
func (idx *Indexer) Search(query Query) (Result, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	var result Result
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	for i := offset; i < len(idx.buffer) && len(result.Entries) < limit; i++ {
		e := idx.buffer[i]
		if e.Level < query.MinLevel {
			continue
		}
		if query.HasTimeRange && (e.Timestamp < query.StartTime || e.Timestamp > query.EndTime) {
			continue
		}
		if query.Substring != "" && !bytes.Contains(e.Message, []byte(query.Substring)) {
			continue
		}

		result.Entries = append(result.Entries, e)
	}
	result.TotalMatches = len(result.Entries)

	return result, nil
}

// Flush clears the buffer. Persisting it to durable storage is out of
// scope (see Non-goals).
func (idx *Indexer) Flush() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushLocked()
}

func (idx *Indexer) flushLocked() {
	idx.buffer = idx.buffer[:0]
}

// Compact is a no-op, matching the native indexer's unfinished contract.
func (idx *Indexer) Compact() {}

// Destroy discards the buffer. The Indexer must not be used afterward.
func (idx *Indexer) Destroy() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.buffer = nil
}
