// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"errors"

	"code.hybscloud.com/iox"
)

// errWouldBlock is the lock-free layer's control-flow signal, reused from
// code.hybscloud.com/iox for ecosystem consistency with the rest of the
// hybscloud lineage. It never escapes this package: only the internal
// taskQueue returns it, and ThreadPool reacts to it by blocking on its
// condition variables. RingBuffer returns ErrFull/ErrEmpty directly.
var errWouldBlock = iox.ErrWouldBlock

// Package-level result errors. These mirror the result-code taxonomy of
// the native core this package replaces: invalid argument, allocator
// failure, saturated capacity, empty source, elapsed deadline, and use
// after shutdown.
var (
	// ErrInvalid is returned for null/zero-value arguments, a duplicate
	// metric registration, or a metric type mismatch.
	ErrInvalid = errors.New("sidecore: invalid argument")

	// ErrNoMem is returned by BlockPool.Alloc when the free list is empty
	// and the pool has already reached MaxBlocks.
	ErrNoMem = errors.New("sidecore: out of memory")

	// ErrFull is returned when a RingBuffer has no space or a
	// MetricsCollector has reached its registration limit.
	ErrFull = errors.New("sidecore: full")

	// ErrEmpty is returned when a RingBuffer has no element to pop.
	ErrEmpty = errors.New("sidecore: empty")

	// ErrTimeout is returned by Handle.Wait when its deadline elapses
	// before the task completes.
	ErrTimeout = errors.New("sidecore: timeout")

	// ErrClosed is returned by ThreadPool.Submit and SubmitWait once the
	// pool's Destroy has begun shutting it down.
	ErrClosed = errors.New("sidecore: closed")
)

// IsWouldBlock reports whether err is the internal non-blocking signal.
// Exposed so adapted lock-free components elsewhere in this module can
// share the same predicate lfq and iobuf use.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsTimeout reports whether err is ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
