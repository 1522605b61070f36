package ringconsumer

// Status is the outcome of a Consumer.Pop call — spec.md §4.3.
type Status int

const (
	// ReadNew: a fresh, untorn record was delivered. Cursor advances by
	// one.
	ReadNew Status = iota
	// ReadNoNew: the producer has not reached this id yet. Cursor
	// unchanged.
	ReadNoNew
	// ReadLapped: the consumer fell behind by at least one wrap; no
	// record was delivered. Catchup was performed.
	ReadLapped
	// ReadLappedPrecaution: the delivered record may have torn because
	// the previously returned slot was overwritten while this read was
	// in progress. Catchup was performed; treat out as suspect.
	ReadLappedPrecaution
)

// String renders the status the way the source vocabulary names it
// (spec.md §4.3's table), useful for logging in the cmd/ tools.
func (s Status) String() string {
	switch s {
	case ReadNew:
		return "read_new"
	case ReadNoNew:
		return "read_no_new"
	case ReadLapped:
		return "read_lapped"
	case ReadLappedPrecaution:
		return "read_lapped_precaution"
	default:
		return "unknown"
	}
}

// Cursor is a consumer's private read position: "the next slot I intend to
// read is at logical id ID, and the version I expect to find there is
// Version." PrevID/PrevVersion describe the previously returned slot, used
// solely to validate that no overwrite occurred during the most recent
// read (spec.md §4.3).
type Cursor struct {
	ID          uint64
	Version     uint64
	PrevID      uint64
	PrevVersion uint64
}
