package ringproducer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/internal/shmring"
)

type rec struct {
	Seq uint64
}

func ringName(t *testing.T) string {
	return fmt.Sprintf("ringproducer_test_%s", t.Name())
}

func newOrSkip(t *testing.T, name string) *Producer[rec] {
	t.Helper()
	p, err := New[rec](name)
	if errors.Is(err, shmring.ErrUnsupportedPlatform) {
		t.Skip("shared memory not supported on this platform")
	}
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewAndPush(t *testing.T) {
	p := newOrSkip(t, ringName(t))
	defer p.Destroy()

	if p.Capacity() == 0 {
		t.Fatal("Capacity() = 0")
	}

	r := rec{Seq: 1}
	p.Push(&r)

	if got := p.DebugState().LastBlockID; got != 1 {
		t.Errorf("LastBlockID after first Push = %d, want 1", got)
	}

	r.Seq = 2
	p.Push(&r)
	if got := p.DebugState().LastBlockID; got != 2 {
		t.Errorf("LastBlockID after second Push = %d, want 2", got)
	}
}

func TestPushNeverFailsAfterInit(t *testing.T) {
	p := newOrSkip(t, ringName(t))
	defer p.Destroy()

	// spec.md §4.2: push never fails after initialization. Exercise enough
	// pushes to cross a wrap and confirm LastBlockID keeps advancing
	// monotonically.
	cap := p.Capacity()
	for i := uint64(1); i <= cap+10; i++ {
		r := rec{Seq: i}
		p.Push(&r)
		if got := p.DebugState().LastBlockID; got != i {
			t.Fatalf("after push %d: LastBlockID = %d, want %d", i, got, i)
		}
	}
}

func TestNewDuplicateNameFails(t *testing.T) {
	name := ringName(t)
	p := newOrSkip(t, name)
	defer p.Destroy()

	if _, err := New[rec](name); err == nil {
		t.Error("second New with the same ring name: want error, got nil")
	}
}
