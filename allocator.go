package ffs

// allocator hands out slots from a contiguous range of bitmap sectors.
// Scans start circularly at the bitmap that served the last allocation,
// which keeps allocations clustered and avoids rescanning full bitmaps.
type allocator struct {
	layout       layout
	lastAccessed Addr
}

func newAllocator(lay layout) *allocator {
	return &allocator{layout: lay}
}

// countFree sums the free slots over every bitmap sector of the region.
func (a *allocator) countFree(d BlockDevice) (int, error) {
	var buf [BlockLen]byte
	total := 0
	for sector := a.layout.begin; sector < a.layout.end; sector++ {
		if err := d.ReadBlock(sector, buf[:]); err != nil {
			return 0, err
		}
		var bm bitmap
		if err := bm.decode(newReader(buf[:])); err != nil {
			return 0, err
		}
		total += bm.countFree()
	}
	return total, nil
}

// allocate reserves a single slot and returns its composite address, the
// bitmap index times bitmapSlots plus the in-bitmap offset.
func (a *allocator) allocate(d BlockDevice) (Addr, error) {
	var buf [BlockLen]byte
	n := a.layout.entryCount()
	for i := Addr(0); i < n; i++ {
		idx := (a.lastAccessed + i) % n
		sector := a.layout.nth(idx)
		if err := d.ReadBlock(sector, buf[:]); err != nil {
			return 0, err
		}
		var bm bitmap
		if err := bm.decode(newReader(buf[:])); err != nil {
			return 0, err
		}
		slot, ok := bm.take()
		if !ok {
			continue
		}
		if err := bm.encode(newWriter(buf[:])); err != nil {
			return 0, err
		}
		if err := d.WriteBlock(sector, buf[:]); err != nil {
			return 0, err
		}
		a.lastAccessed = idx
		return idx*bitmapSlots + slot, nil
	}
	return 0, ErrStorageFull
}

// release returns addr to the pool. Releasing an already-free address is
// harmless. lastAccessed is lowered so future scans revisit the freed bitmap.
func (a *allocator) release(d BlockDevice, addr Addr) error {
	idx := addr / bitmapSlots
	sector := a.layout.nth(idx)

	var buf [BlockLen]byte
	if err := d.ReadBlock(sector, buf[:]); err != nil {
		return err
	}
	var bm bitmap
	if err := bm.decode(newReader(buf[:])); err != nil {
		return err
	}
	bm.release(addr % bitmapSlots)
	if err := bm.encode(newWriter(buf[:])); err != nil {
		return err
	}
	if err := d.WriteBlock(sector, buf[:]); err != nil {
		return err
	}
	if idx < a.lastAccessed {
		a.lastAccessed = idx
	}
	return nil
}

// allocateN reserves exactly n addresses into out[0:n]. On failure every
// already-reserved address is released and ErrStorageFull is returned, so
// the free count is unchanged.
func (a *allocator) allocateN(d BlockDevice, out []Addr, n int) error {
	if len(out) < n {
		return bufferTooSmall(n, len(out))
	}
	for cur := 0; cur < n; cur++ {
		addr, err := a.allocate(d)
		if err != nil {
			for _, taken := range out[:cur] {
				if rerr := a.release(d, taken); rerr != nil {
					return rerr
				}
			}
			return ErrStorageFull
		}
		out[cur] = addr
	}
	return nil
}

// allocateNodeData reserves enough data blocks to fit size bytes and
// returns a node recording them.
func (a *allocator) allocateNodeData(d BlockDevice, size int) (node, error) {
	var addrs [blocksPerNode]Addr
	if err := a.allocateN(d, addrs[:], blocksNeeded(size)); err != nil {
		return node{}, err
	}
	return node{fileLen: uint16(size), blockAddrs: addrs}, nil
}

// releaseNodeData releases the blocks a node actually uses, keyed on its
// declared length. Addresses past blocksNeeded are not owned by the node.
func (a *allocator) releaseNodeData(d BlockDevice, n *node) error {
	for _, addr := range n.blockAddrs[:n.blocksNeeded()] {
		if err := a.release(d, addr); err != nil {
			return err
		}
	}
	return nil
}
