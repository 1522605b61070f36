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

// Package ringproducer implements the producer side of the overwrite ring:
// spec.md §4.2, "Append records to the ring and publish progress."
package ringproducer

import (
	"sync/atomic"
	"unsafe"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/internal/shmring"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringmetrics"
)

// Producer appends fixed-size records of type T to a named overwrite ring
// and publishes progress via the info region's last_block_id. T must be a
// fixed-size, pointer-free type (a POD record, e.g. a market-data
// snapshot) — its size is fixed at construction and stamped into the
// buffer header so consumers can detect a layout mismatch.
//
// A Producer is single-threaded: spec.md §5 assumes "exactly one producer"
// and no internal synchronization is provided for concurrent Push calls
// from multiple goroutines.
type Producer[T any] struct {
	seg     *shmring.Segment
	nextID  uint64
	version uint64
	metrics ringmetrics.Metrics
}

// Option configures a Producer at construction time.
type Option func(*config)

type config struct {
	metrics ringmetrics.Metrics
}

// WithMetrics attaches an observability backend; the default is
// ringmetrics.Noop.
func WithMetrics(m ringmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// New creates the named ring's shared-memory regions and
// returns a Producer ready to Push records of type T. It fails with
// shmring.ErrAlreadyExists if the ring's discovery region is already
// published by another producer (spec.md §4.1).
func New[T any](name string, opts ...Option) (*Producer[T], error) {
	cfg := config{metrics: ringmetrics.Noop{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	payloadSize := uint64(unsafe.Sizeof(zero))

	seg, err := shmring.CreateProducerSegment(name, payloadSize)
	if err != nil {
		return nil, err
	}
	// version starts at 1, not Go's zero value: 0 is reserved as the
	// "never written" sentinel (spec.md §3), so the first generation must
	// stamp a value distinct from it.
	return &Producer[T]{seg: seg, version: 1, metrics: cfg.metrics}, nil
}

// Capacity returns the ring's fixed slot count.
func (p *Producer[T]) Capacity() uint64 { return p.seg.Capacity }

// DebugState returns a diagnostic snapshot of the producer's segment.
func (p *Producer[T]) DebugState() shmring.DebugState { return p.seg.DebugState() }

// Push writes rec into the next ring slot and publishes it. It never
// blocks and never fails after construction (spec.md §4.2).
//
// Write order follows spec.md §4.2 exactly: compute id/version, write
// payload, release-store version, release-store last_block_id. Steps 2-4
// must be observable to readers in program order; the two atomic stores
// below are this implementation's portable stand-in for the release
// fences the reference implementation gets for free from x86 store
// ordering (spec.md §9).
func (p *Producer[T]) Push(rec *T) {
	id := p.nextID + 1
	if id%p.seg.Capacity == 0 {
		p.version++
	}
	version := p.version

	i := id % p.seg.Capacity
	slot := p.seg.SlotAt(i)

	payloadPtr := (*T)(unsafe.Pointer(uintptr(slot) + shmring.SlotHeaderSize))
	*payloadPtr = *rec

	versionPtr := (*uint64)(slot)
	atomic.StoreUint64(versionPtr, version) // release: publishes payload

	p.seg.SetLastBlockID(id) // release: publishes version + payload

	p.nextID = id
	p.metrics.Pushed()
}

// Close releases the producer's mappings without unlinking the discovery
// region. Prefer Destroy for a clean shutdown.
func (p *Producer[T]) Close() error { return p.seg.Close() }

// Destroy unlinks the ring's discovery region (spec.md §3 Lifecycle:
// "destroyed (unlinked) by the producer on shutdown"). Call this once, on
// producer shutdown.
func (p *Producer[T]) Destroy() error { return p.seg.Destroy() }
