package ffs

// defaultCacheSize is the number of sectors the block cache keeps hot.
const defaultCacheSize = 8

type cacheEntry struct {
	sector Addr
	valid  bool
	block  [BlockLen]byte
}

// BlockCache keeps the most recently used sectors of a BlockDevice in
// memory. A hit is swapped with the front entry, and a miss is inserted at
// the front with the tail entry evicted; since a swap moves the old front
// entry into the hit's slot, the order is only roughly by recency. Writes go
// straight through to the device and only refresh a matching entry, so the
// cache never holds dirty blocks and behavior is identical with or without
// it. It can be used as a drop-in replacement for any BlockDevice.
type BlockCache struct {
	delegate BlockDevice
	entries  []cacheEntry
}

// NewBlockCache wraps device with a cache of the given size. Sizes below 1
// fall back to the default.
func NewBlockCache(device BlockDevice, size int) *BlockCache {
	if size < 1 {
		size = defaultCacheSize
	}
	return &BlockCache{delegate: device, entries: make([]cacheEntry, size)}
}

// Unwrap returns the wrapped device.
func (c *BlockCache) Unwrap() BlockDevice {
	return c.delegate
}

func (c *BlockCache) get(sector Addr) *cacheEntry {
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.sector == sector {
			c.entries[0], c.entries[i] = c.entries[i], c.entries[0]
			return &c.entries[0]
		}
	}
	return nil
}

func (c *BlockCache) insert(sector Addr, buf []byte) {
	copy(c.entries[1:], c.entries[:len(c.entries)-1])
	e := &c.entries[0]
	e.sector = sector
	e.valid = true
	copy(e.block[:], buf)
}

// ReadBlock serves sector from the cache when possible, reading through to
// the device otherwise.
func (c *BlockCache) ReadBlock(sector Addr, buf []byte) error {
	if e := c.get(sector); e != nil {
		copy(buf, e.block[:])
		return nil
	}
	if err := c.delegate.ReadBlock(sector, buf); err != nil {
		return err
	}
	c.insert(sector, buf)
	return nil
}

// WriteBlock writes through to the device, then refreshes the cached copy
// if the sector is resident.
func (c *BlockCache) WriteBlock(sector Addr, buf []byte) error {
	if err := c.delegate.WriteBlock(sector, buf); err != nil {
		return err
	}
	if e := c.get(sector); e != nil {
		copy(e.block[:], buf)
	}
	return nil
}
