package ffs

import "testing"

func TestCacheServesRepeatedReads(t *testing.T) {
	disk := NewMemDisk(64 * BlockLen)
	sut := NewBlockCache(disk, 4)

	buf := make([]byte, BlockLen)
	for i := 0; i < 5; i++ {
		if err := sut.ReadBlock(7, buf); err != nil {
			t.Fatalf("ReadBlock failed: %s", err)
		}
	}
	if disk.Reads != 1 {
		t.Errorf("device reads = %d, want 1", disk.Reads)
	}
}

func TestCacheWriteThrough(t *testing.T) {
	disk := NewMemDisk(64 * BlockLen)
	sut := NewBlockCache(disk, 4)

	buf := make([]byte, BlockLen)
	if err := sut.ReadBlock(3, buf); err != nil {
		t.Fatalf("ReadBlock failed: %s", err)
	}

	buf[0] = 0xaa
	if err := sut.WriteBlock(3, buf); err != nil {
		t.Fatalf("WriteBlock failed: %s", err)
	}
	if disk.Writes != 1 {
		t.Errorf("device writes = %d, want 1 (write-through)", disk.Writes)
	}
	if disk.Bytes()[3*BlockLen] != 0xaa {
		t.Error("write did not reach the device")
	}

	// The cached copy must have been refreshed in place.
	got := make([]byte, BlockLen)
	if err := sut.ReadBlock(3, got); err != nil {
		t.Fatalf("ReadBlock failed: %s", err)
	}
	if got[0] != 0xaa {
		t.Error("cache served a stale block after write")
	}
	if disk.Reads != 1 {
		t.Errorf("device reads = %d, want 1", disk.Reads)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	disk := NewMemDisk(64 * BlockLen)
	sut := NewBlockCache(disk, 2)

	buf := make([]byte, BlockLen)
	sut.ReadBlock(1, buf)
	sut.ReadBlock(2, buf)
	sut.ReadBlock(1, buf) // refresh 1
	sut.ReadBlock(3, buf) // evicts 2
	sut.ReadBlock(1, buf) // still cached

	if disk.Reads != 3 {
		t.Errorf("device reads = %d, want 3", disk.Reads)
	}
	sut.ReadBlock(2, buf) // miss again
	if disk.Reads != 4 {
		t.Errorf("device reads = %d, want 4", disk.Reads)
	}
}

// The cache is a transparent accelerator. A whole session must observe
// identical bytes with and without it.
func TestCacheIsTransparent(t *testing.T) {
	plain := FitMemDisk(64)
	cached := FitMemDisk(64)
	sut := NewBlockCache(cached, 4)

	write := func(d BlockDevice, sector Addr, fill byte) {
		buf := make([]byte, BlockLen)
		for i := range buf {
			buf[i] = fill
		}
		if err := d.WriteBlock(sector, buf); err != nil {
			t.Fatalf("WriteBlock failed: %s", err)
		}
	}
	for i := Addr(0); i < 16; i++ {
		write(plain, i%8, byte(i))
		write(sut, i%8, byte(i))
	}

	a, b := make([]byte, BlockLen), make([]byte, BlockLen)
	for i := Addr(0); i < 8; i++ {
		plain.ReadBlock(i, a)
		sut.ReadBlock(i, b)
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("sector %d differs at byte %d", i, j)
			}
		}
	}
}
