// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"runtime"
	"sync"
	"time"
)

const defaultQueueCapacity = 1024

// ThreadPoolConfig configures a ThreadPool.
type ThreadPoolConfig struct {
	// NumThreads is the number of worker goroutines. 0 uses runtime.NumCPU().
	NumThreads int
	// QueueCapacity bounds the number of tasks awaiting a worker.
	// 0 uses defaultQueueCapacity.
	QueueCapacity int
}

// Handle tracks completion of a task submitted via SubmitWait.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait reports completion of the task. timeout < 0 blocks indefinitely.
// timeout == 0 polls once: it returns ErrTimeout immediately if the task
// has not yet completed, without waiting. timeout > 0 blocks up to that
// duration and returns ErrTimeout if it elapses first.
func (h *Handle) Wait(timeout time.Duration) error {
	if timeout < 0 {
		<-h.done
		return h.err
	}
	if timeout == 0 {
		select {
		case <-h.done:
			return h.err
		default:
			return ErrTimeout
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return h.err
	case <-timer.C:
		return ErrTimeout
	}
}

// Free releases h. Provided for symmetry with the pool's other lifecycle
// methods; a Handle holds no resources beyond a closed channel.
func (h *Handle) Free() {}

type task struct {
	fn     func()
	handle *Handle
}

// ThreadPoolStats reports a ThreadPool's current accounting.
type ThreadPoolStats struct {
	NumThreads  int
	QueueLength int
	Submitted   uint64
	Completed   uint64
	Rejected    uint64
}

// ThreadPool runs submitted work on a fixed set of worker goroutines,
// backed by a bounded task queue. Submit blocks the caller when the queue
// is full, and workers block when it is empty; both block via sync.Cond
// layered over taskQueue's lock-free fast path, matching how the native
// pool pairs its ring buffer with a mutex and two condition variables.
type ThreadPool struct {
	queue      *taskQueue[task]
	numThreads int

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	allDone  *sync.Cond
	closed   bool
	wg       sync.WaitGroup

	submitted uint64
	completed uint64
	rejected  uint64
}

// NewThreadPool creates a pool per cfg and starts its workers.
func NewThreadPool(cfg ThreadPoolConfig) (*ThreadPool, error) {
	numThreads := cfg.NumThreads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	queueCapacity := cfg.QueueCapacity
	if queueCapacity <= 0 {
		queueCapacity = defaultQueueCapacity
	}

	tp := &ThreadPool{
		queue:      newTaskQueue[task](queueCapacity),
		numThreads: numThreads,
	}
	tp.notEmpty = sync.NewCond(&tp.mu)
	tp.notFull = sync.NewCond(&tp.mu)
	tp.allDone = sync.NewCond(&tp.mu)

	tp.wg.Add(numThreads)
	for i := 0; i < numThreads; i++ {
		go tp.worker()
	}

	return tp, nil
}

// Submit enqueues fn for execution, blocking while the queue is full.
// Returns ErrClosed if the pool has been destroyed.
func (tp *ThreadPool) Submit(fn func()) error {
	return tp.submit(fn, nil)
}

// SubmitWait enqueues fn for execution and returns a Handle the caller can
// Wait on for completion.
func (tp *ThreadPool) SubmitWait(fn func()) (*Handle, error) {
	h := &Handle{done: make(chan struct{})}
	if err := tp.submit(fn, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (tp *ThreadPool) submit(fn func(), h *Handle) error {
	t := task{fn: fn, handle: h}

	tp.mu.Lock()
	for {
		if tp.closed {
			tp.rejected++
			tp.mu.Unlock()
			return ErrClosed
		}
		if err := tp.queue.enqueue(&t); err == nil {
			tp.submitted++
			tp.notEmpty.Signal()
			tp.mu.Unlock()
			return nil
		}
		tp.notFull.Wait()
	}
}

func (tp *ThreadPool) worker() {
	defer tp.wg.Done()

	for {
		tp.mu.Lock()
		var (
			t  task
			ok bool
		)
		for {
			if v, err := tp.queue.dequeue(); err == nil {
				t, ok = v, true
				tp.notFull.Signal()
				break
			}
			if tp.closed {
				break
			}
			tp.notEmpty.Wait()
		}
		tp.mu.Unlock()

		if !ok {
			return
		}

		t.fn()

		tp.mu.Lock()
		tp.completed++
		if tp.completed >= tp.submitted {
			tp.allDone.Broadcast()
		}
		tp.mu.Unlock()

		if t.handle != nil {
			close(t.handle.done)
		}
	}
}

// Stats reports the pool's current accounting. QueueLength is a racy
// snapshot, useful for monitoring, not for correctness decisions.
func (tp *ThreadPool) Stats() ThreadPoolStats {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	return ThreadPoolStats{
		NumThreads:  tp.numThreads,
		QueueLength: tp.queue.approxLen(),
		Submitted:   tp.submitted,
		Completed:   tp.completed,
		Rejected:    tp.rejected,
	}
}

// WaitAll blocks until every submitted task has completed.
func (tp *ThreadPool) WaitAll() {
	tp.mu.Lock()
	for tp.completed < tp.submitted {
		tp.allDone.Wait()
	}
	tp.mu.Unlock()
}

// Destroy signals all workers to drain the queue and exit, then blocks
// until they have. The pool must not be used afterward.
func (tp *ThreadPool) Destroy() {
	tp.mu.Lock()
	tp.closed = true
	tp.queue.drain()
	tp.notEmpty.Broadcast()
	tp.notFull.Broadcast()
	tp.mu.Unlock()

	tp.wg.Wait()
}
