package ffs

import "encoding/binary"

// reader is a cursor over a byte buffer. Multi-byte values are read
// little-endian; overruns fail with ErrBufferTooSmall.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) read(out []byte) error {
	end := r.pos + len(out)
	if end > len(r.buf) {
		return bufferTooSmall(end, len(r.buf))
	}
	copy(out, r.buf[r.pos:end])
	r.pos = end
	return nil
}

func (r *reader) skip(n int) error {
	end := r.pos + n
	if end > len(r.buf) {
		return bufferTooSmall(end, len(r.buf))
	}
	r.pos = end
	return nil
}

func (r *reader) readU8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, bufferTooSmall(r.pos+1, len(r.buf))
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) readU16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, bufferTooSmall(r.pos+2, len(r.buf))
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readAddr() (Addr, error) {
	if r.pos+4 > len(r.buf) {
		return 0, bufferTooSmall(r.pos+4, len(r.buf))
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// writer is the encoding counterpart of reader.
type writer struct {
	buf []byte
	pos int
}

func newWriter(buf []byte) *writer {
	return &writer{buf: buf}
}

func (w *writer) write(src []byte) error {
	end := w.pos + len(src)
	if end > len(w.buf) {
		return bufferTooSmall(end, len(w.buf))
	}
	copy(w.buf[w.pos:end], src)
	w.pos = end
	return nil
}

func (w *writer) writeZeros(n int) error {
	end := w.pos + n
	if end > len(w.buf) {
		return bufferTooSmall(end, len(w.buf))
	}
	for i := w.pos; i < end; i++ {
		w.buf[i] = 0
	}
	w.pos = end
	return nil
}

func (w *writer) writeU8(v uint8) error {
	if w.pos+1 > len(w.buf) {
		return bufferTooSmall(w.pos+1, len(w.buf))
	}
	w.buf[w.pos] = v
	w.pos++
	return nil
}

func (w *writer) writeU16(v uint16) error {
	if w.pos+2 > len(w.buf) {
		return bufferTooSmall(w.pos+2, len(w.buf))
	}
	binary.LittleEndian.PutUint16(w.buf[w.pos:], v)
	w.pos += 2
	return nil
}

func (w *writer) writeAddr(v Addr) error {
	if w.pos+4 > len(w.buf) {
		return bufferTooSmall(w.pos+4, len(w.buf))
	}
	binary.LittleEndian.PutUint32(w.buf[w.pos:], v)
	w.pos += 4
	return nil
}

// sectorEncoder is implemented by every on-disk structure.
type sectorEncoder interface {
	encode(w *writer) error
}

// sectorDecoder is implemented by every on-disk structure.
type sectorDecoder interface {
	decode(r *reader) error
}
