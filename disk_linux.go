//go:build linux

package ffs

import "golang.org/x/sys/unix"

// Sync flushes the image data to stable storage. Fdatasync is enough: the
// image size never changes after creation.
func (d *FileDisk) Sync() error {
	return ioErr(unix.Fdatasync(int(d.f.Fd())))
}
