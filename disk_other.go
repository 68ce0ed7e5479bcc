//go:build !linux

package ffs

// Sync flushes the image data to stable storage.
func (d *FileDisk) Sync() error {
	return ioErr(d.f.Sync())
}
