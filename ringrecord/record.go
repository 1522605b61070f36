// Package ringrecord defines the sample record type shared by the
// cmd/ringbuf-producer and cmd/ringbuf-consumer binaries. It plays the role
// the reference implementation's template parameter T plays: a fixed-size,
// pointer-free POD record. Nothing in ringproducer or ringconsumer depends
// on this type — callers may instantiate Producer[T]/Consumer[T] with any
// POD type of their own.
package ringrecord

// Snapshot mirrors spec.md §6's reference configuration: sizeof(payload) ==
// 1024 bytes (128 * uint64).
type Snapshot struct {
	Seq  uint64
	Data [127]uint64
}
