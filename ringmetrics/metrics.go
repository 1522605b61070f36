// Package ringmetrics defines the observability hooks that ringproducer and
// ringconsumer call on the data-plane events spec.md §7/§8 enumerate (push,
// read_new, read_no_new, read_lapped, read_lapped_precaution, catchup).
// These are diagnostics only — spec.md §5 notes last_block_id "is not
// consulted on the hot path; it exists for diagnostics and for potential
// future use" — the same is true of every call here.
//
// Grounded on IvanBrykalov-shardcache/cache/metrics.go: a small interface
// plus a NoopMetrics default.
package ringmetrics

// Metrics exposes ring-level observability hooks. A Noop implementation is
// provided and used by default.
type Metrics interface {
	// Pushed is called once per successful Producer.Push.
	Pushed()
	// ReadNew is called when Consumer.Pop delivers an untorn record.
	ReadNew()
	// ReadNoNew is called when Consumer.Pop finds nothing new.
	ReadNoNew()
	// Lapped is called when Consumer.Pop detects the consumer fell behind
	// by at least one wrap.
	Lapped()
	// LappedPrecaution is called when Consumer.Pop delivers a record that
	// may have torn during the read.
	LappedPrecaution()
	// Catchup is called once per Consumer.Catchup invocation, successful
	// or not (catchup always succeeds per spec.md §4.3).
	Catchup()
}

// Noop is a Metrics implementation that does nothing. It is safe for
// concurrent use and is the default when no observability backend is
// configured.
type Noop struct{}

func (Noop) Pushed()           {}
func (Noop) ReadNew()          {}
func (Noop) ReadNoNew()        {}
func (Noop) Lapped()           {}
func (Noop) LappedPrecaution() {}
func (Noop) Catchup()          {}

// Ensure Noop implements Metrics at compile time.
var _ Metrics = Noop{}
