package ffs

import (
	"errors"
	"fmt"
)

// Package-specific error variables that can be used with errors.Is().
var (
	// ErrBufferTooSmall is returned when a codec read or write would overrun
	// its buffer, or when a destination buffer cannot hold a whole file.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrFileAlreadyExists is returned by Create when the target path is
	// already present in the directory tree.
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrFileNameTooLong is returned when a path component has MaxNameLen
	// bytes or more, or when a Name would exceed MaxNameLen.
	ErrFileNameTooLong = errors.New("file name too long")

	// ErrFileNotFound is returned when a path does not resolve to a file.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned by Create when the payload exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrDirectoryFull is returned when a directory page has no free slot.
	ErrDirectoryFull = errors.New("directory full")

	// ErrDirectoryNotFound is returned when a path component resolves to a
	// file where a directory was required.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrStorageFull is returned when an allocator finds no free slot.
	ErrStorageFull = errors.New("storage full")

	// ErrUnsupportedDevice is returned when the metadata sector does not
	// match this filesystem, or when an on-disk structure is corrupt.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrIO wraps errors propagated from the block device.
	ErrIO = errors.New("device i/o error")
)

func bufferTooSmall(expected, found int) error {
	return fmt.Errorf("%w: expected %d bytes, found %d", ErrBufferTooSmall, expected, found)
}

func ioErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
