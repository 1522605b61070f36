/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package ringconsumer implements the consumer side of the overwrite ring:
// spec.md §4.3 — tracking a read cursor, detecting tearing and lapping,
// and catching up after a lap.
package ringconsumer

import (
	"sync/atomic"
	"unsafe"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/internal/shmring"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringmetrics"
)

// Consumer reads fixed-size records of type T from a named overwrite ring.
// Multiple Consumers may open the same ring concurrently and independently;
// each owns a private Cursor (spec.md §3: "Cursors: per-process, never
// shared").
//
// Initial state is undefined until the first Catchup call; callers MUST
// call Catchup once before the first Pop (spec.md §4.3).
type Consumer[T any] struct {
	seg     *shmring.Segment
	cur     Cursor
	metrics ringmetrics.Metrics
}

// Option configures a Consumer at construction time.
type Option func(*config)

type config struct {
	metrics ringmetrics.Metrics
}

// WithMetrics attaches an observability backend; the default is
// ringmetrics.Noop.
func WithMetrics(m ringmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// Open opens an existing ring's shared-memory regions read-only and returns
// a Consumer ready to Catchup/Pop records of type T. It fails if the
// producer has not created the ring yet, or if the ring's buffer header
// disagrees with T's size (spec.md §3: capacity/layout mismatch is a fatal
// configuration error).
func Open[T any](name string, opts ...Option) (*Consumer[T], error) {
	cfg := config{metrics: ringmetrics.Noop{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	payloadSize := uint64(unsafe.Sizeof(zero))

	seg, err := shmring.OpenConsumerSegment(name, payloadSize)
	if err != nil {
		return nil, err
	}
	return &Consumer[T]{seg: seg, metrics: cfg.metrics}, nil
}

// Capacity returns the ring's fixed slot count.
func (c *Consumer[T]) Capacity() uint64 { return c.seg.Capacity }

// Cursor returns a copy of the consumer's current read position.
func (c *Consumer[T]) Cursor() Cursor { return c.cur }

// DebugState returns a diagnostic snapshot of the consumer's segment.
func (c *Consumer[T]) DebugState() shmring.DebugState { return c.seg.DebugState() }

func (c *Consumer[T]) slotVersion(id uint64) uint64 {
	slot := c.seg.SlotAt(id % c.seg.Capacity)
	return atomic.LoadUint64((*uint64)(slot)) // acquire
}

// Catchup positions the cursor one past the highest id the producer has
// ever published. It never blocks and always succeeds (spec.md §4.3).
//
// Unlike original_source/ring_buffer_ipc.h's catchup(), which rediscovers
// the wrap point by scanning slot versions backward from index
// Capacity-1 — an approach that can only place the cursor within one
// generation of the scan window, not at the producer's true (unbounded)
// position — this reads last_block_id directly: the producer's own
// release-stored progress counter (spec.md §4.2's final publish step) is
// already the authoritative answer to "what was last written," so no scan
// is needed. This also fixes spec.md §8 scenario 3 ("exact lap by one"),
// where the cursor must land at id = capacity+2, past any single
// generation's worth of slot indices.
func (c *Consumer[T]) Catchup() {
	capacity := c.seg.Capacity
	last := c.seg.LastBlockID()
	version := 1 + last/capacity

	c.cur.ID = last + 1
	c.cur.Version = version
	c.cur.PrevID = last
	if last == 0 {
		c.cur.PrevVersion = 0
	} else {
		c.cur.PrevVersion = version
	}

	c.metrics.Catchup()
}

// Pop attempts to read the next record into out. See spec.md §4.3 for the
// full decision table; summarized:
//
//   - slot version == expected version: deliver, advance cursor, then
//     re-check the *previous* slot's version to detect tearing that
//     happened during this read (ReadNew, or ReadLappedPrecaution if the
//     previous slot was overwritten).
//   - slot version == expected version - 1: the producer has not reached
//     this id yet (ReadNoNew); the cursor is left untouched and out is
//     not written.
//   - anything else: the consumer is lapped; Catchup and report
//     ReadLapped.
//
// The re-check is deliberately only ever performed against the previous
// slot, not the one just copied — spec.md §9 notes this means "the
// current record is only validated on the next call to Pop" and instructs
// implementations to preserve that behavior rather than strengthen it.
//
// The version expected of c.cur.ID is computed fresh on entry rather than
// cached from the previous call: c.cur.ID crossing a capacity multiple
// means the producer's version counter has already ticked over for that
// slot (spec.md §8 scenario 4, "version increments ... on the transition
// to id capacity"), so the bump must apply to the read of that id, not to
// the bookkeeping that follows the read before it.
func (c *Consumer[T]) Pop(out *T) Status {
	capacity := c.seg.Capacity
	expected := c.cur.Version
	if c.cur.ID%capacity == 0 {
		expected++
	}

	slot := c.seg.SlotAt(c.cur.ID % capacity)
	v := atomic.LoadUint64((*uint64)(slot)) // acquire

	switch {
	case v == expected:
		prevID, prevVersion := c.cur.PrevID, c.cur.PrevVersion

		c.cur.PrevID = c.cur.ID
		c.cur.PrevVersion = expected
		c.cur.Version = expected
		c.cur.ID++

		payloadPtr := (*T)(unsafe.Pointer(uintptr(slot) + shmring.SlotHeaderSize))
		*out = *payloadPtr

		if c.slotVersion(prevID) != prevVersion {
			c.Catchup()
			c.metrics.LappedPrecaution()
			return ReadLappedPrecaution
		}
		c.metrics.ReadNew()
		return ReadNew

	case v == expected-1:
		c.metrics.ReadNoNew()
		return ReadNoNew

	default:
		c.Catchup()
		c.metrics.Lapped()
		return ReadLapped
	}
}

// Close releases the consumer's mappings.
func (c *Consumer[T]) Close() error { return c.seg.Close() }
