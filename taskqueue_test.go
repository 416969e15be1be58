// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestTaskQueueBasic(t *testing.T) {
	q := newTaskQueue[int](4)
	if q.cap() != 4 {
		t.Fatalf("cap: got %d, want 4", q.cap())
	}

	for i := range 4 {
		v := i
		if err := q.enqueue(&v); err != nil {
			t.Fatalf("enqueue(%d): %v", i, err)
		}
	}

	v := 99
	if err := q.enqueue(&v); err != errWouldBlock {
		t.Fatalf("enqueue on full: got %v, want errWouldBlock", err)
	}

	for i := range 4 {
		got, err := q.dequeue()
		if err != nil || got != i {
			t.Fatalf("dequeue(%d): got (%d, %v)", i, got, err)
		}
	}

	if _, err := q.dequeue(); err != errWouldBlock {
		t.Fatalf("dequeue on empty: got %v, want errWouldBlock", err)
	}
}

func TestTaskQueueMPMCConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrent stress test in short mode")
	}
	if RaceEnabled {
		t.Skip("lock-free acquire/release ordering across separate variables triggers race detector false positives")
	}

	const (
		producers = 4
		consumers = 4
		perProd   = 5000
	)
	q := newTaskQueue[int](256)

	var produced, consumed sync.WaitGroup
	produced.Add(producers)
	for p := range producers {
		go func(p int) {
			defer produced.Done()
			for i := range perProd {
				v := p*perProd + i
				for q.enqueue(&v) != nil {
				}
			}
		}(p)
	}

	var total atomic.Int64
	consumed.Add(consumers)
	done := make(chan struct{})
	for range consumers {
		go func() {
			defer consumed.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if v, err := q.dequeue(); err == nil {
					total.Add(1)
					_ = v
				}
			}
		}()
	}

	produced.Wait()
	for total.Load() < int64(producers*perProd) {
	}
	close(done)
	consumed.Wait()

	if got := total.Load(); got != int64(producers*perProd) {
		t.Fatalf("total: got %d, want %d", got, producers*perProd)
	}
}

func TestTaskQueueDrain(t *testing.T) {
	q := newTaskQueue[int](4)
	for i := range 3 {
		v := i
		q.enqueue(&v)
	}
	q.drain()

	for i := range 3 {
		got, err := q.dequeue()
		if err != nil || got != i {
			t.Fatalf("dequeue(%d): got (%d, %v)", i, got, err)
		}
	}
}
