package ffs

import (
	"errors"
	"io"
	"io/fs"
	"time"
)

// FS returns a read-only io/fs.FS view of the mounted filesystem, suitable
// for fs.WalkDir, fs.ReadFile and friends. The view stays valid for the
// lifetime of the mount.
func (c *Controller) FS() fs.FS {
	return &fsys{c: c}
}

type fsys struct {
	c *Controller
}

// Ensure the handles respect fs.File & others.
var _ fs.FS = (*fsys)(nil)
var _ fs.File = (*fileHandle)(nil)
var _ io.ReaderAt = (*fileHandle)(nil)
var _ fs.ReadDirFile = (*dirHandle)(nil)
var _ fs.FileInfo = (*fileinfo)(nil)

func (s *fsys) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &dirHandle{s: s, name: "."}, nil
	}
	e, err := s.c.tree.lookup(s.c.device, name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: mapFsErr(err)}
	}
	if e.isDir() {
		return &dirHandle{s: s, name: name}, nil
	}
	dr, err := s.c.Open(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: mapFsErr(err)}
	}
	return &fileHandle{
		SectionReader: io.NewSectionReader(dr, 0, int64(dr.FileLen())),
		name:          name,
		size:          int64(dr.FileLen()),
	}, nil
}

func mapFsErr(err error) error {
	if errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrDirectoryNotFound) {
		return fs.ErrNotExist
	}
	return err
}

// fileHandle adapts a DataReader to fs.File. The embedded SectionReader
// provides Read, Seek and ReadAt.
type fileHandle struct {
	*io.SectionReader
	name string
	size int64
}

func (f *fileHandle) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: basename(f.name), size: f.size}, nil
}

func (f *fileHandle) Close() error {
	return nil
}

// dirHandle adapts a directory page to fs.ReadDirFile.
type dirHandle struct {
	s       *fsys
	name    string
	entries []fs.DirEntry
	pos     int
}

// Read on a directory is invalid and will always fail.
func (d *dirHandle) Read(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *dirHandle) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: basename(d.name), dir: true}, nil
}

// Close resets the directory position.
func (d *dirHandle) Close() error {
	d.entries = nil
	d.pos = 0
	return nil
}

func (d *dirHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		path := d.name
		if path == "." {
			path = ""
		}
		raw, err := d.s.c.tree.listDir(d.s.c.device, path)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: d.name, Err: mapFsErr(err)}
		}
		d.entries = make([]fs.DirEntry, len(raw))
		for i, e := range raw {
			child := e.name.String()
			if path != "" {
				child = path + "/" + child
			}
			d.entries[i] = &direntry{s: d.s, path: child, dir: e.isDir()}
		}
		d.pos = 0
	}
	rest := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.pos += n
	return rest[:n], nil
}

type direntry struct {
	s    *fsys
	path string
	dir  bool
}

func (de *direntry) Name() string {
	return basename(de.path)
}

func (de *direntry) IsDir() bool {
	return de.dir
}

func (de *direntry) Type() fs.FileMode {
	if de.dir {
		return fs.ModeDir
	}
	return 0
}

func (de *direntry) Info() (fs.FileInfo, error) {
	if de.dir {
		return &fileinfo{name: de.Name(), dir: true}, nil
	}
	dr, err := de.s.c.Open(de.path)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: de.path, Err: mapFsErr(err)}
	}
	return &fileinfo{name: de.Name(), size: int64(dr.FileLen())}, nil
}

// fileinfo carries the little metadata the filesystem stores. There are no
// timestamps or permissions on disk.
type fileinfo struct {
	name string
	size int64
	dir  bool
}

func (fi *fileinfo) Name() string {
	return fi.name
}

func (fi *fileinfo) Size() int64 {
	return fi.size
}

func (fi *fileinfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (fi *fileinfo) ModTime() time.Time {
	return time.Time{}
}

func (fi *fileinfo) IsDir() bool {
	return fi.dir
}

func (fi *fileinfo) Sys() any {
	return nil
}
