package shmring

import "errors"

// ErrUnsupportedPlatform is returned by every exported constructor on a
// platform that lacks memfd_create/mmap support (see unsupported.go).
var ErrUnsupportedPlatform = errors.New("shmring: shared memory not supported on this platform")

// ErrAlreadyExists is returned by CreateProducerSegment when the discovery
// region already exists — spec.md §4.1: "Fails if the named discovery
// region already exists in an incompatible state."
var ErrAlreadyExists = errors.New("shmring: discovery region already exists")
