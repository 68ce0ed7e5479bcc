package ffs

import (
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	w := newWriter(buf)
	if err := w.writeU8(0x13); err != nil {
		t.Fatalf("writeU8 failed: %s", err)
	}
	if err := w.writeU16(0xbeef); err != nil {
		t.Fatalf("writeU16 failed: %s", err)
	}
	if err := w.writeAddr(0xdeadbeef); err != nil {
		t.Fatalf("writeAddr failed: %s", err)
	}
	if err := w.write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	r := newReader(buf)
	if v, _ := r.readU8(); v != 0x13 {
		t.Errorf("readU8 = %#x, want 0x13", v)
	}
	if v, _ := r.readU16(); v != 0xbeef {
		t.Errorf("readU16 = %#x, want 0xbeef", v)
	}
	if v, _ := r.readAddr(); v != 0xdeadbeef {
		t.Errorf("readAddr = %#x, want 0xdeadbeef", v)
	}
	var tail [3]byte
	if err := r.read(tail[:]); err != nil || tail != [3]byte{1, 2, 3} {
		t.Errorf("read = %v (%v), want [1 2 3]", tail, err)
	}
}

func TestCodecLittleEndian(t *testing.T) {
	buf := make([]byte, 6)
	w := newWriter(buf)
	w.writeU16(0x1234)
	w.writeAddr(0x0a0b0c0d)

	want := []byte{0x34, 0x12, 0x0d, 0x0c, 0x0b, 0x0a}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %x, want %x", buf, want)
		}
	}
}

func TestCodecOverrun(t *testing.T) {
	r := newReader(make([]byte, 2))
	if _, err := r.readAddr(); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("readAddr on short buffer returned %v", err)
	}

	w := newWriter(make([]byte, 1))
	if err := w.writeU16(1); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("writeU16 on short buffer returned %v", err)
	}
	if err := w.writeZeros(2); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("writeZeros on short buffer returned %v", err)
	}
}
