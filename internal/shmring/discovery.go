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

import "fmt"

// discoveryRecord is the 256-byte layout of the discovery region: two
// consecutive 128-byte zero-padded NUL-terminated ASCII paths naming the
// buffer and info regions respectively (spec.md §6). Grounded on
// original_source/ring_buffer_ipc.h's "file_descriptor" struct
// (`char rb[128], info[128];`), which this is a direct translation of.
type discoveryRecord struct {
	bufferPath [DiscoveryPathSize]byte
	infoPath   [DiscoveryPathSize]byte
}

// setPath encodes path into one of the two fixed-width fields, erroring out
// if it does not fit — spec.md §6: "a name longer than 127 bytes is a
// configuration error."
func setPath(field *[DiscoveryPathSize]byte, path string) error {
	if len(path) > DiscoveryPathSize-1 {
		return fmt.Errorf("shmring: path %q exceeds %d bytes", path, DiscoveryPathSize-1)
	}
	var buf [DiscoveryPathSize]byte
	copy(buf[:], path)
	*field = buf
	return nil
}

// getPath decodes a NUL-terminated path out of a fixed-width field.
func getPath(field *[DiscoveryPathSize]byte) string {
	n := 0
	for n < len(field) && field[n] != 0 {
		n++
	}
	return string(field[:n])
}

// SetBufferPath stamps the discoverable identifier of the buffer region.
func (d *discoveryRecord) SetBufferPath(path string) error {
	return setPath(&d.bufferPath, path)
}

// SetInfoPath stamps the discoverable identifier of the info region.
func (d *discoveryRecord) SetInfoPath(path string) error {
	return setPath(&d.infoPath, path)
}

// BufferPath returns the discoverable identifier of the buffer region.
func (d *discoveryRecord) BufferPath() string { return getPath(&d.bufferPath) }

// InfoPath returns the discoverable identifier of the info region.
func (d *discoveryRecord) InfoPath() string { return getPath(&d.infoPath) }

// discoveryName returns the name under which the discovery region is
// advertised in the host's shared-memory namespace, per spec.md §6:
// `"{N}_rb_fd"`.
func discoveryName(ringName string) string {
	return ringName + "_rb_fd"
}
