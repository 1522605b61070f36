package shmring

import "testing"

func TestAlignUp64(t *testing.T) {
	cases := []struct {
		in, want uint64
	}{
		{0, 0},
		{1, 64},
		{64, 64},
		{65, 128},
		{1024, 1024},
		{1025, 1088},
	}
	for _, c := range cases {
		if got := AlignUp64(c.in); got != c.want {
			t.Errorf("AlignUp64(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSlotStride(t *testing.T) {
	// spec.md §6 reference configuration: sizeof(payload) = 1024 bytes.
	if got, want := SlotStride(1024), uint64(64+1024); got != want {
		t.Errorf("SlotStride(1024) = %d, want %d", got, want)
	}
	// A payload that isn't itself a multiple of 64 still rounds the whole
	// slot up to the next cache line.
	if got, want := SlotStride(1), uint64(128); got != want {
		t.Errorf("SlotStride(1) = %d, want %d", got, want)
	}
}

func TestBufferRegionSize(t *testing.T) {
	got := BufferRegionSize(Capacity, 1024)
	want := uint64(BufferHeaderSize + Capacity*(64+1024))
	if got != want {
		t.Errorf("BufferRegionSize(%d, 1024) = %d, want %d", Capacity, got, want)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	yes := []uint64{1, 2, 4, 8, 4096, 1 << 20}
	no := []uint64{0, 3, 5, 4095, 6}
	for _, n := range yes {
		if !IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", n)
		}
	}
	for _, n := range no {
		if IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", n)
		}
	}
}

func TestBufferHeaderInitAndValidate(t *testing.T) {
	var h BufferHeader
	h.init(Capacity, 1024)

	if got := h.Capacity(); got != Capacity {
		t.Errorf("Capacity() = %d, want %d", got, Capacity)
	}
	if got := h.PayloadSize(); got != 1024 {
		t.Errorf("PayloadSize() = %d, want 1024", got)
	}
	if err := h.Validate(Capacity, 1024); err != nil {
		t.Errorf("Validate agreeing capacity/payloadSize: %v", err)
	}
	if err := h.Validate(Capacity, 512); err == nil {
		t.Error("Validate with mismatched payloadSize: want error, got nil")
	}
	if err := h.Validate(2048, 1024); err == nil {
		t.Error("Validate with mismatched capacity: want error, got nil")
	}

	var bad BufferHeader
	if err := bad.Validate(Capacity, 1024); err == nil {
		t.Error("Validate on a zero-value (uninitialized) header: want error, got nil")
	}
}
