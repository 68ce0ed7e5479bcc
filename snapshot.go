package ffs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Compression selects how a snapshot payload is encoded.
type Compression uint16

const (
	NoCompression Compression = iota
	Zstd
	Xz
)

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Zstd:
		return "zstd"
	case Xz:
		return "xz"
	}
	return fmt.Sprintf("Compression(%d)", uint16(c))
}

// ParseCompression resolves a name such as "zstd" to its Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return NoCompression, nil
	case "zstd":
		return Zstd, nil
	case "xz":
		return Xz, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

// ErrUnknownCompression is returned for snapshot compression ids with no
// registered handler.
var ErrUnknownCompression = errors.New("unknown snapshot compression")

type compHandler struct {
	compress   func([]byte) ([]byte, error)
	decompress func([]byte) ([]byte, error)
}

var compHandlers = map[Compression]*compHandler{
	NoCompression: {
		compress:   func(buf []byte) ([]byte, error) { return buf, nil },
		decompress: func(buf []byte) ([]byte, error) { return buf, nil },
	},
}

func registerCompHandler(c Compression, h *compHandler) {
	compHandlers[c] = h
}

// Snapshot container header: magic, format version, compression id and the
// sector count of the captured device.
var snapshotMagic = [4]byte{'F', 'F', 'S', 'S'}

const snapshotVersion = 1

const snapshotHeaderLen = 4 + 1 + 2 + 4

// WriteSnapshot captures every sector of the device into w, optionally
// compressed. The device is read through whatever cache wraps it, so a
// snapshot taken mid-session observes all completed writes.
func WriteSnapshot(w io.Writer, device BlockDevice, comp Compression) error {
	h, ok := compHandlers[comp]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCompression, comp)
	}

	raw := make([]byte, DiskSectors*BlockLen)
	for sector := Addr(0); sector < DiskSectors; sector++ {
		off := int(sector) * BlockLen
		if err := device.ReadBlock(sector, raw[off:off+BlockLen]); err != nil {
			return err
		}
	}
	payload, err := h.compress(raw)
	if err != nil {
		return err
	}

	var head [snapshotHeaderLen]byte
	copy(head[:], snapshotMagic[:])
	head[4] = snapshotVersion
	binary.LittleEndian.PutUint16(head[5:], uint16(comp))
	binary.LittleEndian.PutUint32(head[7:], DiskSectors)
	if _, err := w.Write(head[:]); err != nil {
		return ioErr(err)
	}
	if _, err := w.Write(payload); err != nil {
		return ioErr(err)
	}
	return nil
}

// ReadSnapshot restores a snapshot into a fresh MemDisk.
func ReadSnapshot(r io.Reader) (*MemDisk, error) {
	var head [snapshotHeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, ioErr(err)
	}
	if [4]byte(head[:4]) != snapshotMagic || head[4] != snapshotVersion {
		return nil, ErrUnsupportedDevice
	}
	comp := Compression(binary.LittleEndian.Uint16(head[5:]))
	sectors := binary.LittleEndian.Uint32(head[7:])
	h, ok := compHandlers[comp]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, comp)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, ioErr(err)
	}
	raw, err := h.decompress(payload)
	if err != nil {
		return nil, err
	}
	if len(raw) != int(sectors)*BlockLen {
		return nil, ErrUnsupportedDevice
	}
	disk := NewMemDisk(len(raw))
	copy(disk.data, raw)
	return disk, nil
}
