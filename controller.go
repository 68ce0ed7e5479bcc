package ffs

import "go.uber.org/zap"

// Controller is the top level of the filesystem. It owns the device for
// the lifetime of the mount and coordinates the allocators and the
// directory tree. All operations are synchronous and single-threaded.
type Controller struct {
	device    *BlockCache
	dataAlloc *allocator
	tree      *dirTree

	log       *zap.SugaredLogger
	cacheSize int
}

// Format initializes the filesystem on device: the metadata sector, fresh
// allocation bitmaps, an empty root directory page, and the bitmap bit
// reserving the root. Everything previously on the device becomes
// unreachable.
func Format(device BlockDevice) error {
	m := expectedMeta()
	if err := storeAt(device, layoutMeta, 0, &m); err != nil {
		return err
	}
	if err := formatBitmaps(device, layoutTreeBitmap, nTree); err != nil {
		return err
	}
	if err := formatBitmaps(device, layoutDataBitmap, nData); err != nil {
		return err
	}
	return newDirTree(newAllocator(layoutTreeBitmap)).format(device)
}

// formatBitmaps writes empty bitmaps over the region, fencing off the
// slots past the governed region's capacity so they can never be handed
// out. Only the final sector of a bitmap region has such a tail.
func formatBitmaps(device BlockDevice, lay layout, capacity int) error {
	for i := Addr(0); i < lay.entryCount(); i++ {
		var bm bitmap
		if rem := capacity - int(i)*bitmapSlots; rem < bitmapSlots {
			if rem < 0 {
				rem = 0
			}
			bm.markTaken(rem)
		}
		if err := storeAt(device, lay, i, &bm); err != nil {
			return err
		}
	}
	return nil
}

// Mount reads the metadata sector and, if it matches the compiled-in
// layout, returns a Controller over the device. A device that was never
// formatted, or was formatted with different constants, fails with
// ErrUnsupportedDevice.
func Mount(device BlockDevice, opts ...Option) (*Controller, error) {
	var m meta
	if err := loadAt(device, layoutMeta, 0, &m); err != nil {
		return nil, err
	}
	if m != expectedMeta() {
		return nil, ErrUnsupportedDevice
	}

	c := &Controller{
		log:       zap.NewNop().Sugar(),
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.device = NewBlockCache(device, c.cacheSize)
	c.dataAlloc = newAllocator(layoutDataBitmap)
	c.tree = newDirTree(newAllocator(layoutTreeBitmap))
	c.log.Debugw("ffs: mounted", "sectors", uint32(DiskSectors), "cache", c.cacheSize)
	return c, nil
}

// Unmount gives the device back. The controller must not be used after.
func (c *Controller) Unmount() BlockDevice {
	c.log.Debugw("ffs: unmounted")
	return c.device.Unwrap()
}

// Create writes a new file at path. The directory entry is reserved and
// persisted first; data blocks land on disk before the node that claims
// them, and the node before the file record, so the node never references
// unwritten data blocks. A directory entry whose file record is still
// zeroed (an interrupted Create) is reported as absent by Open.
func (c *Controller) Create(path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if len(data) > MaxFileSize {
		return ErrFileTooLarge
	}

	e, err := c.tree.insertFile(c.device, path)
	if err != nil {
		return err
	}
	n, err := c.dataAlloc.allocateNodeData(c.device, len(data))
	if err != nil {
		return err
	}
	if err := storeData(c.device, n.blockAddrs[:], data); err != nil {
		return err
	}
	if err := storeAt(c.device, layoutNode, e.addr, &n); err != nil {
		return err
	}
	f := fileRecord{name: e.name, nodeAddr: e.addr}
	if err := storeAt(c.device, layoutFile, e.addr, &f); err != nil {
		return err
	}
	c.log.Debugw("ffs: created", "path", path, "bytes", len(data), "addr", e.addr)
	return nil
}

// Delete removes the file at path. Metadata is torn down before the data
// blocks are released, so a freed block can never be re-used while still
// referenced from durable state.
func (c *Controller) Delete(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	e, err := c.tree.getFile(c.device, path)
	if err != nil {
		return err
	}
	var n node
	if err := loadAt(c.device, layoutNode, e.addr, &n); err != nil {
		return err
	}
	if err := eraseAt(c.device, layoutNode, e.addr); err != nil {
		return err
	}
	if err := eraseAt(c.device, layoutFile, e.addr); err != nil {
		return err
	}
	if err := c.tree.removeFile(c.device, path); err != nil {
		return err
	}
	if _, err := c.tree.prune(c.device, 0); err != nil {
		return err
	}
	if err := c.dataAlloc.releaseNodeData(c.device, &n); err != nil {
		return err
	}
	c.log.Debugw("ffs: deleted", "path", path, "addr", e.addr)
	return nil
}

// Open returns a DataReader over the file at path.
func (c *Controller) Open(path string) (*DataReader, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	e, err := c.tree.getFile(c.device, path)
	if err != nil {
		return nil, err
	}
	var f fileRecord
	if err := loadAt(c.device, layoutFile, e.addr, &f); err != nil {
		return nil, err
	}
	if f.nodeAddr == 0 && f.name.isEmpty() {
		// The directory references a file whose record was never written,
		// for example after an interrupted Create.
		return nil, ErrFileNotFound
	}
	var n node
	if err := loadAt(c.device, layoutNode, e.addr, &n); err != nil {
		return nil, err
	}
	return &DataReader{device: c.device, node: n}, nil
}

// CountFiles walks the whole tree and tallies files.
func (c *Controller) CountFiles() (int, error) {
	return c.tree.countFiles(c.device)
}

// CountDirs walks the whole tree and tallies directory pages below the
// root, leaves included.
func (c *Controller) CountDirs() (int, error) {
	return c.tree.countDirs(c.device)
}

// FreeDataBlocks returns the number of unallocated data blocks.
func (c *Controller) FreeDataBlocks() (int, error) {
	return c.dataAlloc.countFree(c.device)
}
