package ringconsumer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/internal/shmring"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringproducer"
)

type rec struct {
	Seq uint64
}

func ringName(t *testing.T) string {
	return fmt.Sprintf("ringconsumer_test_%s", t.Name())
}

func newProducerOrSkip(t *testing.T, name string) *ringproducer.Producer[rec] {
	t.Helper()
	p, err := ringproducer.New[rec](name)
	if errors.Is(err, shmring.ErrUnsupportedPlatform) {
		t.Skip("shared memory not supported on this platform")
	}
	if err != nil {
		t.Fatalf("ringproducer.New: %v", err)
	}
	return p
}

func TestEmptyRingReadNoNew(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Catchup()
	before := c.Cursor()

	var out rec
	if status := c.Pop(&out); status != ReadNoNew {
		t.Errorf("Pop on empty ring = %s, want %s", status, ReadNoNew)
	}
	if c.Cursor() != before {
		t.Errorf("cursor changed on read_no_new: before=%+v after=%+v", before, c.Cursor())
	}
}

func TestCatchupBeforePushesSeesAllAsNew(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// Consumer catches up before any pushes (spec.md §8 scenario 2, second
	// half): cursor lands at id 1, so every subsequent push is read_new.
	c.Catchup()

	for i := uint64(1); i <= 10; i++ {
		r := rec{Seq: i}
		p.Push(&r)

		var out rec
		status := c.Pop(&out)
		if status != ReadNew {
			t.Fatalf("push %d: Pop = %s, want %s", i, status, ReadNew)
		}
		if out.Seq != i {
			t.Fatalf("push %d: delivered Seq = %d, want %d", i, out.Seq, i)
		}
	}
}

func TestProducerRoundTripCatchupAfterPushes(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	const n = 10
	for i := uint64(1); i <= n; i++ {
		r := rec{Seq: i}
		p.Push(&r)
	}

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// spec.md §8 "Producer round-trip": after pushing N <= capacity records
	// from an empty buffer, a fresh consumer that calls catchup() then pop
	// repeatedly observes records 1..N as read_new.
	c.Catchup()

	for i := uint64(1); i <= n; i++ {
		var out rec
		status := c.Pop(&out)
		if status != ReadNew {
			t.Fatalf("record %d: Pop = %s, want %s", i, status, ReadNew)
		}
		if out.Seq != i {
			t.Fatalf("record %d: delivered Seq = %d, want %d", i, out.Seq, i)
		}
	}

	var out rec
	if status := c.Pop(&out); status != ReadNoNew {
		t.Errorf("Pop after draining: %s, want %s", status, ReadNoNew)
	}
}

func TestCatchupIdempotent(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	for i := uint64(1); i <= 50; i++ {
		r := rec{Seq: i}
		p.Push(&r)
	}

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Catchup()
	first := c.Cursor()
	c.Catchup()
	second := c.Cursor()

	if first != second {
		t.Errorf("Catchup is not idempotent: first=%+v second=%+v", first, second)
	}
}

func TestWrapBoundaryVersionIncrementsOnce(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Catchup()

	cap := p.Capacity()

	for i := uint64(1); i < cap; i++ {
		r := rec{Seq: i}
		p.Push(&r)
		var out rec
		if status := c.Pop(&out); status != ReadNew {
			t.Fatalf("push %d: Pop = %s, want %s", i, status, ReadNew)
		}
	}
	if got := c.Cursor().Version; got != 1 {
		t.Fatalf("version before wrap = %d, want 1", got)
	}

	r := rec{Seq: cap}
	p.Push(&r)
	var out rec
	if status := c.Pop(&out); status != ReadNew {
		t.Fatalf("push at capacity: Pop = %s, want %s", status, ReadNew)
	}
	if got := c.Cursor().Version; got != 2 {
		t.Errorf("version after wrap = %d, want 2", got)
	}
}

func TestWrapWithoutLap(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Catchup()

	cap := p.Capacity()
	newCount := 0
	for i := uint64(1); i <= cap; i++ {
		r := rec{Seq: i}
		p.Push(&r)
		var out rec
		if status := c.Pop(&out); status == ReadNew {
			newCount++
		}
	}
	if newCount != int(cap) {
		t.Errorf("read_new count = %d, want %d", newCount, cap)
	}
	if got := c.Cursor().Version; got != 2 {
		t.Errorf("version after exactly one full wrap = %d, want 2", got)
	}
}

func TestExactLapByOne(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Catchup() // cursor at id 1, version 1

	cap := p.Capacity()
	for i := uint64(1); i <= cap+1; i++ {
		r := rec{Seq: i}
		p.Push(&r)
	}

	var out rec
	status := c.Pop(&out)
	if status != ReadLapped {
		t.Fatalf("Pop after exact lap by one = %s, want %s", status, ReadLapped)
	}
	if got := c.Cursor().ID; got != cap+2 {
		t.Errorf("cursor.ID after catchup = %d, want %d", got, cap+2)
	}
	if got := c.Cursor().Version; got != 2 {
		t.Errorf("cursor.Version after catchup = %d, want 2", got)
	}
}

func TestFirstGenerationCatchupHalfFilled(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	const n = 100
	for i := uint64(1); i <= n; i++ {
		r := rec{Seq: i}
		p.Push(&r)
	}

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// spec.md §8 "First-generation catch-up": on a half-filled buffer,
	// catchup() places the cursor at one past the highest id ever written.
	c.Catchup()
	if got := c.Cursor().ID; got != n+1 {
		t.Errorf("cursor.ID after first-generation catchup = %d, want %d", got, n+1)
	}
	if got := c.Cursor().Version; got != 1 {
		t.Errorf("cursor.Version after first-generation catchup = %d, want 1", got)
	}
}

func TestPopSideEffectFreeOnReadNoNew(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Catchup()

	out := rec{Seq: 999}
	before := c.Cursor()
	if status := c.Pop(&out); status != ReadNoNew {
		t.Fatalf("Pop on empty ring = %s, want %s", status, ReadNoNew)
	}
	if out.Seq != 999 {
		t.Errorf("read_no_new wrote to out: Seq = %d, want unchanged 999", out.Seq)
	}
	if c.Cursor() != before {
		t.Errorf("read_no_new changed cursor: before=%+v after=%+v", before, c.Cursor())
	}
}

// TestInterleavedLapPrecaution constructs the scenario from spec.md §8
// (scenario 5) directly rather than relying on true goroutine timing: the
// consumer is positioned just behind a slot whose predecessor gets
// overwritten by a full additional wrap before the next Pop call, exactly
// the condition the post-read previous-slot check exists to catch.
func TestInterleavedLapPrecaution(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Catchup()

	cap := p.Capacity()

	// Deliver id 1 as read_new; prev_id/prev_version now describe slot 1.
	r := rec{Seq: 1}
	p.Push(&r)
	var out rec
	if status := c.Pop(&out); status != ReadNew {
		t.Fatalf("first Pop = %s, want %s", status, ReadNew)
	}
	if c.Cursor().PrevID != 1 {
		t.Fatalf("PrevID = %d, want 1", c.Cursor().PrevID)
	}

	// Push ids 2..cap+1: id 2 fills the cursor's next slot, and id cap+1
	// wraps around and overwrites slot 1 with a newer version.
	for i := uint64(2); i <= cap+1; i++ {
		rr := rec{Seq: i}
		p.Push(&rr)
	}

	status := c.Pop(&out)
	if status != ReadLappedPrecaution {
		t.Fatalf("Pop after prev-slot overwrite = %s, want %s", status, ReadLappedPrecaution)
	}
}

func TestConsumerRestartMidStream(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	const n = 500
	for i := uint64(1); i <= n; i++ {
		r := rec{Seq: i}
		p.Push(&r)
	}

	c, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Catchup()
	if got := c.Cursor().ID; got != n+1 {
		t.Errorf("cursor.ID after restart catchup = %d, want %d", got, n+1)
	}

	var out rec
	if status := c.Pop(&out); status != ReadNoNew {
		t.Errorf("Pop immediately after restart catchup = %s, want %s", status, ReadNoNew)
	}
}

func TestMultipleIndependentConsumers(t *testing.T) {
	name := ringName(t)
	p := newProducerOrSkip(t, name)
	defer p.Destroy()

	c1, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open c1: %v", err)
	}
	defer c1.Close()
	c2, err := Open[rec](name)
	if err != nil {
		t.Fatalf("Open c2: %v", err)
	}
	defer c2.Close()

	c1.Catchup()

	r := rec{Seq: 1}
	p.Push(&r)

	var out rec
	if status := c1.Pop(&out); status != ReadNew {
		t.Fatalf("c1 Pop = %s, want %s", status, ReadNew)
	}

	// c2 has not called Catchup yet; its cursor is still the zero value,
	// independent of c1's progress (spec.md §3: "Cursors: per-process,
	// never shared").
	if c1.Cursor().ID == c2.Cursor().ID {
		t.Error("c1 and c2 share cursor state")
	}
}
