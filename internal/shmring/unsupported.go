//go:build !linux || !(amd64 || arm64)

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

import "os"

// platformSupported mirrors the build-tagged stub pattern in the teacher's
// handshake_stub.go/shm_futex_stub.go: every real syscall entry point
// degrades to ErrUnsupportedPlatform here instead of failing to compile.
const platformSupported = false

func createDiscoveryFile(path string) (*os.File, error) {
	return nil, ErrUnsupportedPlatform
}

func openDiscoveryFile(path string) (*os.File, error) {
	return nil, ErrUnsupportedPlatform
}

func mmapShared(f *os.File, size int, writable bool) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func munmap(mem []byte) error {
	return ErrUnsupportedPlatform
}

func createMemoryBackedRegion(name string, size uint64) (*os.File, []byte, bool, error) {
	return nil, nil, false, ErrUnsupportedPlatform
}

func openMemoryBackedRegion(path string, size uint64) (*os.File, []byte, error) {
	return nil, nil, ErrUnsupportedPlatform
}

func unlinkDiscoveryFile(path string) error {
	return ErrUnsupportedPlatform
}

func discoveryFilePath(name string) string {
	return "/dev/shm/" + discoveryName(name)
}
