// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"fmt"
	"sync"
	"time"

	timecache "github.com/agilira/go-timecache"
)

// defaultClockResolution matches the resolution agilira/lethe configures
// for its rotation timestamps: fine enough for log-entry granularity,
// coarse enough that CachedTime() avoids a syscall on every call.
const defaultClockResolution = time.Millisecond

// Clock is a high-throughput timestamp source for per-message records.
// It wraps an agilira/lethe-style *timecache.TimeCache so that
// hot paths (ring buffer pushes, parser calls) read a cached time instead
// of paying for a syscall on every Now call.
//
// Now returns nanoseconds elapsed since the Clock was created, not since
// the Unix epoch: on platforms with no wall-clock-synced monotonic
// counter this is the only origin that's safe to assume, matching
// spec §4.1. Format still renders local wall-clock time for readability.
type Clock struct {
	cache   *timecache.TimeCache
	created time.Time
}

// NewClock creates a Clock whose CachedTime updates at the given
// resolution. A resolution <= 0 uses defaultClockResolution.
func NewClock(resolution time.Duration) *Clock {
	if resolution <= 0 {
		resolution = defaultClockResolution
	}
	c := &Clock{cache: timecache.NewWithResolution(resolution)}
	c.created = c.cache.CachedTime()
	return c
}

var (
	defaultClockOnce sync.Once
	defaultClock     *Clock
)

// DefaultClock returns a lazily-created package-level Clock at
// defaultClockResolution, analogous to timecache.DefaultCache().
func DefaultClock() *Clock {
	defaultClockOnce.Do(func() {
		defaultClock = NewClock(defaultClockResolution)
	})
	return defaultClock
}

// Now returns nanoseconds elapsed since the Clock's creation.
func (c *Clock) Now() uint64 {
	return uint64(c.cache.CachedTime().Sub(c.created))
}

// Format renders ts (as returned by Now) as "YYYY-MM-DD HH:MM:SS.nnnnnnnnn"
// in local time, relative to this Clock's creation instant.
func (c *Clock) Format(ts uint64) string {
	t := c.created.Add(time.Duration(ts)).Local()
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%09d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// Stop releases the underlying timecache goroutine. The Clock must not be
// used afterward.
func (c *Clock) Stop() {
	c.cache.Stop()
}
