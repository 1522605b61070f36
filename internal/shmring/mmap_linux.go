//go:build linux && (amd64 || arm64)

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

	"golang.org/x/sys/unix"
)

// platformSupported reports whether this build was compiled for a platform
// this package has a real backend for.
const platformSupported = true

// createDiscoveryFile creates the path-addressed discovery region. Fails
// with ErrAlreadyExists if it is already present, matching spec.md §4.1.
func createDiscoveryFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("shmring: create discovery region %s: %w", path, err)
	}
	if err := f.Truncate(DiscoverySize); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shmring: size discovery region %s: %w", path, err)
	}
	return f, nil
}

// openDiscoveryFile opens an existing discovery region read-only.
func openDiscoveryFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("shmring: open discovery region %s: %w", path, err)
	}
	return f, nil
}

// mmapShared maps size bytes of f shared, with the given protection.
func mmapShared(f *os.File, size int, writable bool) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shmring: mmap: %w", err)
	}
	return mem, nil
}

func munmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("shmring: munmap: %w", err)
	}
	return nil
}

// createMemoryBackedRegion creates an anonymous memory-backed file
// descriptor of the given size (memfd_create), maps it read-write, and
// returns both the *os.File (so its /proc/<pid>/fd/<n> path can be derived
// and handed to consumers) and the mapping.
//
// Huge-page backing is attempted first via MFD_HUGETLB — spec.md §4.1:
// "The buffer region SHOULD be mapped with huge-page backing where
// available to minimize TLB pressure... this is an optimization, not a
// correctness requirement" — and falls back silently to a normal page-backed
// memfd when the host has no reserved huge pages (typically ENOMEM/EINVAL).
// Grounded on original_source/ring_buffer_ipc.h's
// `memfd_create("rb", MFD_HUGETLB | MFD_HUGE_2MB)` with fallback behavior
// added because, unlike the original, this implementation must run on hosts
// without hugetlb pools configured.
func createMemoryBackedRegion(name string, size uint64) (*os.File, []byte, bool, error) {
	fd, huge, err := memfdCreateWithHugePageFallback(name, size)
	if err != nil {
		return nil, nil, false, fmt.Errorf("shmring: memfd_create %s: %w", name, err)
	}
	f := os.NewFile(uintptr(fd), procFdPath(fd))
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, nil, false, fmt.Errorf("shmring: truncate memfd %s: %w", name, err)
	}
	mem, err := mmapShared(f, int(size), true)
	if err != nil {
		f.Close()
		return nil, nil, false, err
	}
	return f, mem, huge, nil
}

// openMemoryBackedRegion opens a memory-backed region by its
// /proc/<pid>/fd/<n> path (as stamped in the discovery region by the
// producer) and maps it shared, read-only.
func openMemoryBackedRegion(path string, size uint64) (*os.File, []byte, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("shmring: open region %s: %w", path, err)
	}
	mem, err := mmapShared(f, int(size), false)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, mem, nil
}

// memfdCreateWithHugePageFallback attempts MFD_HUGETLB first, and on
// failure falls back to a plain memfd. Returns whether huge pages were
// actually used.
func memfdCreateWithHugePageFallback(name string, size uint64) (fd int, huge bool, err error) {
	if size >= hugePageThreshold {
		if fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_HUGETLB); err == nil {
			return fd, true, nil
		}
	}
	fd, err = unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return 0, false, err
	}
	return fd, false, nil
}

// hugePageThreshold is the smallest region size for which this package
// bothers attempting a huge-page-backed memfd; below it the TLB-pressure
// benefit does not justify risking an allocation failure against a small
// hugetlb pool.
const hugePageThreshold = 2 * 1024 * 1024

func procFdPath(fd int) string {
	return fmt.Sprintf("/proc/%d/fd/%d", os.Getpid(), fd)
}

func unlinkDiscoveryFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shmring: unlink discovery region %s: %w", path, err)
	}
	return nil
}

func discoveryFilePath(name string) string {
	return "/dev/shm/" + discoveryName(name)
}
