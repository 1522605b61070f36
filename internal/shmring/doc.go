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

// Package shmring provides the shared-memory substrate for a
// single-producer/multi-consumer overwrite ring: discovery, creation and
// mapping of the three named regions (discovery, buffer, info) that make up
// one ring. It owns no framing or read/write protocol of its own — that
// lives in the ringproducer and ringconsumer packages, which map typed slot
// views directly over the []byte this package hands back.
package shmring
