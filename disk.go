package ffs

import "os"

// FileDisk is a block device backed by a regular file or a raw device
// node. Sectors map directly to file offsets.
type FileDisk struct {
	f *os.File
}

// OpenFileDisk opens an existing image for reading and writing.
func OpenFileDisk(path string) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ioErr(err)
	}
	return &FileDisk{f: f}, nil
}

// CreateFileDisk creates (or truncates) an image sized for the given
// number of sectors.
func CreateFileDisk(path string, sectors Addr) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ioErr(err)
	}
	if err := f.Truncate(int64(sectors) * BlockLen); err != nil {
		f.Close()
		return nil, ioErr(err)
	}
	return &FileDisk{f: f}, nil
}

func (d *FileDisk) ReadBlock(sector Addr, buf []byte) error {
	if _, err := d.f.ReadAt(buf, int64(sector)*BlockLen); err != nil {
		return ioErr(err)
	}
	return nil
}

func (d *FileDisk) WriteBlock(sector Addr, buf []byte) error {
	if _, err := d.f.WriteAt(buf, int64(sector)*BlockLen); err != nil {
		return ioErr(err)
	}
	return nil
}

// Close flushes pending writes to stable storage and closes the image.
func (d *FileDisk) Close() error {
	if err := d.Sync(); err != nil {
		d.f.Close()
		return err
	}
	return ioErr(d.f.Close())
}
