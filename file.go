package ffs

const fileSerdeLen = 4 + nameSerdeLen

// fileRecord is the durable (name, node address) pair for a file. It lives
// in the FILE region, co-indexed with the file's node, and is the canonical
// record that a directory entry points at something real: a zeroed record
// means the file never finished being written.
type fileRecord struct {
	name     Name
	nodeAddr Addr
}

func (f *fileRecord) encode(w *writer) error {
	if err := w.writeAddr(f.nodeAddr); err != nil {
		return err
	}
	return f.name.encode(w)
}

func (f *fileRecord) decode(r *reader) error {
	addr, err := r.readAddr()
	if err != nil {
		return err
	}
	if err := f.name.decode(r); err != nil {
		return err
	}
	f.nodeAddr = addr
	return nil
}
