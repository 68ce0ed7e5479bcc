package ffs

const metaSerdeLen = BlockLen

// metaSignature marks sector 0 as belonging to this filesystem.
var metaSignature = [2]byte{0x13, 0x37}

// meta is the metadata sector. It records where every region begins, the
// block size and a signature, and must match the compiled-in layout for a
// mount to succeed.
type meta struct {
	treeBitmap Addr
	tree       Addr
	file       Addr
	node       Addr
	dataBitmap Addr
	data       Addr
	blockSize  uint16
	signature  [2]byte
}

func expectedMeta() meta {
	return meta{
		treeBitmap: layoutTreeBitmap.begin,
		tree:       layoutTree.begin,
		file:       layoutFile.begin,
		node:       layoutNode.begin,
		dataBitmap: layoutDataBitmap.begin,
		data:       layoutData.begin,
		blockSize:  BlockLen,
		signature:  metaSignature,
	}
}

func (m *meta) encode(w *writer) error {
	for _, addr := range []Addr{m.treeBitmap, m.tree, m.file, m.node, m.dataBitmap, m.data} {
		if err := w.writeAddr(addr); err != nil {
			return err
		}
	}
	if err := w.writeU16(m.blockSize); err != nil {
		return err
	}
	if err := w.writeZeros(metaSerdeLen - 6*4 - 2 - 2); err != nil {
		return err
	}
	return w.write(m.signature[:])
}

func (m *meta) decode(r *reader) error {
	for _, addr := range []*Addr{&m.treeBitmap, &m.tree, &m.file, &m.node, &m.dataBitmap, &m.data} {
		var err error
		if *addr, err = r.readAddr(); err != nil {
			return err
		}
	}
	var err error
	if m.blockSize, err = r.readU16(); err != nil {
		return err
	}
	if err = r.skip(metaSerdeLen - 6*4 - 2 - 2); err != nil {
		return err
	}
	return r.read(m.signature[:])
}
