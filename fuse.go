package ffs

import (
	"context"
	"io"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// MountFuse exposes the filesystem read-only at mountpoint and returns the
// running server. Call Wait on the returned server to block until the
// mountpoint is unmounted.
func (c *Controller) MountFuse(mountpoint string) (*fuse.Server, error) {
	opts := &fusefs.Options{}
	opts.MountOptions.Name = "ffs"
	opts.MountOptions.FsName = "ffs"
	root := &fuseNode{c: c}
	server, err := fusefs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("ffs: fuse mounted", "mountpoint", mountpoint)
	return server, nil
}

// fuseNode serves one path of the tree. The root node has an empty path.
type fuseNode struct {
	fusefs.Inode
	c    *Controller
	path string
}

var _ fusefs.NodeLookuper = (*fuseNode)(nil)
var _ fusefs.NodeReaddirer = (*fuseNode)(nil)
var _ fusefs.NodeOpener = (*fuseNode)(nil)
var _ fusefs.NodeGetattrer = (*fuseNode)(nil)

func (n *fuseNode) child(name string) string {
	if n.path == "" {
		return name
	}
	return n.path + "/" + name
}

func (n *fuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	p := n.child(name)
	e, err := n.c.tree.lookup(n.c.device, p)
	if err != nil {
		return nil, syscall.ENOENT
	}
	mode := uint32(fuse.S_IFREG)
	if e.isDir() {
		mode = fuse.S_IFDIR
	} else if dr, err := n.c.Open(p); err == nil {
		out.Attr.Size = uint64(dr.FileLen())
	}
	child := n.NewInode(ctx, &fuseNode{c: n.c, path: p}, fusefs.StableAttr{Mode: mode})
	return child, 0
}

func (n *fuseNode) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	entries, err := n.c.tree.listDir(n.c.device, n.path)
	if err != nil {
		return nil, syscall.ENOENT
	}
	out := make([]fuse.DirEntry, 0, len(entries))
	for i := range entries {
		mode := uint32(fuse.S_IFREG)
		if entries[i].isDir() {
			mode = fuse.S_IFDIR
		}
		out = append(out, fuse.DirEntry{Name: entries[i].name.String(), Mode: mode})
	}
	return fusefs.NewListDirStream(out), 0
}

func (n *fuseNode) Getattr(ctx context.Context, fh fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Blksize = BlockLen
	if n.path == "" {
		out.Mode = fuse.S_IFDIR | 0o555
		return 0
	}
	e, err := n.c.tree.lookup(n.c.device, n.path)
	if err != nil {
		return syscall.ENOENT
	}
	if e.isDir() {
		out.Mode = fuse.S_IFDIR | 0o555
		return 0
	}
	out.Mode = fuse.S_IFREG | 0o444
	if dr, err := n.c.Open(n.path); err == nil {
		out.Size = uint64(dr.FileLen())
	}
	return 0
}

func (n *fuseNode) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	dr, err := n.c.Open(n.path)
	if err != nil {
		return nil, 0, syscall.ENOENT
	}
	// The filesystem is read-only for the lifetime of the fuse mount, so
	// the kernel may keep its page cache across opens.
	return &fuseFile{dr: dr}, fuse.FOPEN_KEEP_CACHE, 0
}

type fuseFile struct {
	dr *DataReader
}

var _ fusefs.FileReader = (*fuseFile)(nil)

func (f *fuseFile) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	size := int64(f.dr.FileLen())
	if off >= size {
		return fuse.ReadResultData(nil), 0
	}
	if end := off + int64(len(dest)); end > size {
		dest = dest[:size-off]
	}
	n, err := f.dr.ReadAt(dest, off)
	if err != nil && err != io.EOF {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n]), 0
}
