// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sidecore provides the runtime primitives of a high-throughput
// telemetry sidecar: a fixed-block memory pool, a lock-free SPSC ring
// buffer, a bounded-queue worker pool, an in-process metrics registry,
// and a log line parser paired with a placeholder (buffer + linear scan)
// indexer.
//
// # Memory pool
//
// BlockPool hands out fixed-size blocks from a free list carved from one
// slab at construction, growing by one overflow block at a time once the
// slab is exhausted:
//
//	pool, err := sidecore.NewBlockPool(sidecore.PoolConfig{
//	    BlockSize:     64,
//	    InitialBlocks: 1024,
//	    ThreadSafe:    true,
//	})
//	ptr, err := pool.Alloc()
//	pool.Free(ptr)
//
// # Ring buffer
//
// RingBuffer is a single-producer single-consumer lock-free queue. Exactly
// one goroutine may call Push; exactly one (possibly different) goroutine
// may call Pop:
//
//	rb := sidecore.NewRingBuffer[Event](1024)
//	go func() {
//	    for ev := range events {
//	        for rb.Push(&ev) != nil {
//	            // back off and retry
//	        }
//	    }
//	}()
//	for {
//	    ev, err := rb.Pop()
//	    if err == nil {
//	        process(ev)
//	    }
//	}
//
// # Thread pool
//
// ThreadPool runs submitted work on a fixed set of goroutines backed by a
// bounded task queue:
//
//	tp, err := sidecore.NewThreadPool(sidecore.ThreadPoolConfig{NumThreads: 4, QueueCapacity: 16})
//	for range 100 {
//	    tp.Submit(func() { counter.Add(1) })
//	}
//	tp.WaitAll()
//	tp.Destroy()
//
// SubmitWait returns a Handle for tasks the caller needs to wait on
// individually, with an optional timeout:
//
//	h, _ := tp.SubmitWait(func() { time.Sleep(100 * time.Millisecond) })
//	if err := h.Wait(50 * time.Millisecond); sidecore.IsTimeout(err) {
//	    // still running
//	}
//
// # Metrics
//
// MetricsCollector is a name-indexed registry of counter, gauge, and
// histogram metrics with a Prometheus-compatible text export:
//
//	m := sidecore.NewMetricsCollector()
//	m.Register(sidecore.MetricConfig{Name: "http_requests", Description: "n", Type: sidecore.MetricCounter})
//	m.CounterInc("http_requests", nil, 1)
//	m.ExportPrometheus(os.Stdout)
//
// # Log parsing and indexing
//
// Parser recognizes JSON, syslog, and plain text lines (auto-detected
// from the first non-space byte) and produces Entry values whose string
// fields alias the input — they are valid only until the next Parse call
// on the same Parser:
//
//	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
//	entry, err := p.Parse([]byte(`{"level":"error","msg":"disk full"}`))
//
// Indexer buffers parsed entries (deep-copying them, unlike Parser's
// aliasing views) for linear-scan search. It is deliberately not an
// inverted index — see its doc comment.
//
// # Dependencies
//
// This package builds on [code.hybscloud.com/atomix] for atomic
// primitives with explicit memory ordering, [code.hybscloud.com/spin] for
// CPU pause instructions, [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/iobuf] for pooled scratch buffers, and
// [github.com/agilira/go-timecache] for a syscall-free timestamp source.
package sidecore
