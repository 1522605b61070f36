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

package shmring

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"
)

// Segment is the mapped triple of regions backing one ring: discovery,
// buffer and info. A producer's Segment owns all three; a consumer's
// Segment holds read-only mappings of buffer and info plus a read-only
// mapping of discovery used only at open time.
//
// Grounded on the teacher's Segment/hdrView/ringView (shm_segment.go),
// narrowed to this spec's three-region model instead of the teacher's
// single dual-ring gRPC transport segment.
type Segment struct {
	Name        string
	Capacity    uint64
	PayloadSize uint64
	HugePages   bool

	isProducer bool

	discoveryPath string
	discoveryFile *os.File
	discoveryMem  []byte

	bufferFile *os.File
	bufferMem  []byte

	infoFile *os.File
	infoMem  []byte
}

// CreateProducerSegment creates the discovery, buffer and info regions for a
// new ring named name, with the reference Capacity and the given payload
// size. It fails with ErrAlreadyExists if a discovery region by this name is
// already published (spec.md §4.1).
func CreateProducerSegment(name string, payloadSize uint64) (*Segment, error) {
	if !platformSupported {
		return nil, ErrUnsupportedPlatform
	}

	discoveryPath := discoveryFilePath(name)
	df, err := createDiscoveryFile(discoveryPath)
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		df.Close()
		os.Remove(discoveryPath)
	}

	dmem, err := mmapShared(df, DiscoverySize, true)
	if err != nil {
		cleanup()
		return nil, err
	}

	bufSize := BufferRegionSize(Capacity, payloadSize)
	bufFile, bufMem, huge, err := createMemoryBackedRegion(name+"_rb", bufSize)
	if err != nil {
		munmap(dmem)
		cleanup()
		return nil, err
	}

	infoFile, infoMem, _, err := createMemoryBackedRegion(name+"_info", InfoRegionSize)
	if err != nil {
		munmap(bufMem)
		bufFile.Close()
		munmap(dmem)
		cleanup()
		return nil, err
	}

	seg := &Segment{
		Name:          name,
		Capacity:      Capacity,
		PayloadSize:   payloadSize,
		HugePages:     huge,
		isProducer:    true,
		discoveryPath: discoveryPath,
		discoveryFile: df,
		discoveryMem:  dmem,
		bufferFile:    bufFile,
		bufferMem:     bufMem,
		infoFile:      infoFile,
		infoMem:       infoMem,
	}

	seg.header().init(Capacity, payloadSize)

	disc := seg.discovery()
	if err := disc.SetBufferPath(procFdPath(int(bufFile.Fd()))); err != nil {
		seg.Close()
		cleanup()
		return nil, err
	}
	if err := disc.SetInfoPath(procFdPath(int(infoFile.Fd()))); err != nil {
		seg.Close()
		cleanup()
		return nil, err
	}

	return seg, nil
}

// OpenConsumerSegment opens an existing ring's discovery region, follows it
// to the buffer and info regions, and maps all three read-only. It returns
// an error (a fatal configuration error per spec.md §3) if the mapped
// buffer header disagrees with capacity/payloadSize.
func OpenConsumerSegment(name string, payloadSize uint64) (*Segment, error) {
	if !platformSupported {
		return nil, ErrUnsupportedPlatform
	}

	discoveryPath := discoveryFilePath(name)
	df, err := openDiscoveryFile(discoveryPath)
	if err != nil {
		return nil, err
	}
	dmem, err := mmapShared(df, DiscoverySize, false)
	if err != nil {
		df.Close()
		return nil, err
	}
	disc := (*discoveryRecord)(unsafe.Pointer(&dmem[0]))

	bufSize := BufferRegionSize(Capacity, payloadSize)
	bufFile, bufMem, err := openMemoryBackedRegion(disc.BufferPath(), bufSize)
	if err != nil {
		munmap(dmem)
		df.Close()
		return nil, err
	}

	infoFile, infoMem, err := openMemoryBackedRegion(disc.InfoPath(), InfoRegionSize)
	if err != nil {
		munmap(bufMem)
		bufFile.Close()
		munmap(dmem)
		df.Close()
		return nil, err
	}

	seg := &Segment{
		Name:          name,
		Capacity:      Capacity,
		PayloadSize:   payloadSize,
		isProducer:    false,
		discoveryPath: discoveryPath,
		discoveryFile: df,
		discoveryMem:  dmem,
		bufferFile:    bufFile,
		bufferMem:     bufMem,
		infoFile:      infoFile,
		infoMem:       infoMem,
	}

	if err := seg.header().Validate(Capacity, payloadSize); err != nil {
		seg.Close()
		return nil, err
	}

	return seg, nil
}

// header returns a pointer to the BufferHeader at the front of the buffer
// region.
func (s *Segment) header() *BufferHeader {
	return (*BufferHeader)(unsafe.Pointer(&s.bufferMem[0]))
}

func (s *Segment) discovery() *discoveryRecord {
	return (*discoveryRecord)(unsafe.Pointer(&s.discoveryMem[0]))
}

// SlotAt returns a pointer to the slot header (and, immediately after it,
// the payload) for ring index i. Callers are responsible for staying within
// [0, Capacity).
func (s *Segment) SlotAt(i uint64) unsafe.Pointer {
	stride := SlotStride(s.PayloadSize)
	off := BufferHeaderSize + i*stride
	return unsafe.Pointer(&s.bufferMem[off])
}

// infoPtr returns a pointer to the last_block_id counter in the info
// region.
func (s *Segment) infoPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&s.infoMem[0]))
}

// LastBlockID returns the most recently published block id (spec.md §3:
// "only written by the producer, only advanced"). Safe for concurrent
// readers. Besides diagnostics, ringconsumer's Catchup reads it to position
// the cursor; Pop's per-slot version checks do not consult it.
func (s *Segment) LastBlockID() uint64 {
	return atomic.LoadUint64(s.infoPtr())
}

// SetLastBlockID publishes a new last_block_id. Producer-only.
func (s *Segment) SetLastBlockID(id uint64) {
	atomic.StoreUint64(s.infoPtr(), id)
}

// DebugState is a diagnostic snapshot of the segment, surfaced through
// ringmetrics and the cmd/ringbuf-inspect tool.
type DebugState struct {
	Name        string
	Capacity    uint64
	PayloadSize uint64
	HugePages   bool
	LastBlockID uint64
}

// DebugState returns a snapshot of the segment's publicly observable state.
func (s *Segment) DebugState() DebugState {
	return DebugState{
		Name:        s.Name,
		Capacity:    s.Capacity,
		PayloadSize: s.PayloadSize,
		HugePages:   s.HugePages,
		LastBlockID: s.LastBlockID(),
	}
}

// Close unmaps and releases the buffer, info and discovery mappings without
// unlinking the discovery path. Both producer and consumer segments must be
// Closed when no longer needed.
func (s *Segment) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.bufferMem != nil {
		record(munmap(s.bufferMem))
		s.bufferMem = nil
	}
	if s.bufferFile != nil {
		record(s.bufferFile.Close())
		s.bufferFile = nil
	}
	if s.infoMem != nil {
		record(munmap(s.infoMem))
		s.infoMem = nil
	}
	if s.infoFile != nil {
		record(s.infoFile.Close())
		s.infoFile = nil
	}
	if s.discoveryMem != nil {
		record(munmap(s.discoveryMem))
		s.discoveryMem = nil
	}
	if s.discoveryFile != nil {
		record(s.discoveryFile.Close())
		s.discoveryFile = nil
	}
	return firstErr
}

// Destroy is the producer-only teardown: it unlinks the discovery region
// (spec.md §3 Lifecycle: "destroyed (unlinked) by the producer on
// shutdown") after closing all mappings. Buffer and info regions are
// memory-backed (memfd) and need no explicit unlink — they are reclaimed
// once every holder, producer and consumers alike, has closed its
// descriptor, matching "Buffer/info regions... released by normal process
// teardown" (spec.md §3).
func (s *Segment) Destroy() error {
	if !s.isProducer {
		return fmt.Errorf("shmring: Destroy called on a non-producer segment")
	}
	path := s.discoveryPath
	if err := s.Close(); err != nil {
		return err
	}
	return unlinkDiscoveryFile(path)
}
