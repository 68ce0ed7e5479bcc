package ffs

import (
	"errors"
	"testing"
)

func treeSut(t *testing.T) (*MemDisk, *dirTree) {
	t.Helper()
	device := FitMemDisk(DiskSectors)
	tree := newDirTree(newAllocator(layoutTreeBitmap))
	if err := tree.format(device); err != nil {
		t.Fatalf("format failed: %s", err)
	}
	return device, tree
}

func TestTreeInsertThenGet(t *testing.T) {
	device, tree := treeSut(t)

	inserted, err := tree.insertFile(device, "some/path/file.txt")
	if err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if !inserted.isSet() {
		t.Fatal("inserted entry has no address")
	}

	got, err := tree.getFile(device, "/some/path/file.txt")
	if err != nil {
		t.Fatalf("getFile failed: %s", err)
	}
	if got.name.String() != "file.txt" {
		t.Errorf("entry name = %q, want %q", got.name.String(), "file.txt")
	}
	if got.addr != inserted.addr {
		t.Errorf("entry addr = %d, want %d", got.addr, inserted.addr)
	}
}

func TestTreeInsertAssignsFreshAddrs(t *testing.T) {
	device, tree := treeSut(t)

	a, err := tree.insertFile(device, "dir/a")
	if err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	b, err := tree.insertFile(device, "dir/b")
	if err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if a.addr == 0 || b.addr == 0 {
		t.Error("file identities must never be zero")
	}
	if a.addr == b.addr {
		t.Errorf("two files share identity %d", a.addr)
	}
}

func TestTreeInsertDuplicate(t *testing.T) {
	device, tree := treeSut(t)

	if _, err := tree.insertFile(device, "a/b/c"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if _, err := tree.insertFile(device, "a/b/c"); !errors.Is(err, ErrFileAlreadyExists) {
		t.Errorf("duplicate insert returned %v", err)
	}
}

func TestTreeFileAsDirectory(t *testing.T) {
	device, tree := treeSut(t)

	if _, err := tree.insertFile(device, "a/file"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if _, err := tree.insertFile(device, "a/file/nested"); !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("descending through a file returned %v", err)
	}
	if _, err := tree.getFile(device, "a/file/nested"); !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("getFile through a file returned %v", err)
	}
}

func TestTreeRemove(t *testing.T) {
	device, tree := treeSut(t)

	if _, err := tree.insertFile(device, "dir/second/third/file.txt"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if dirs, _ := tree.countDirs(device); dirs != 3 {
		t.Errorf("countDirs = %d, want 3", dirs)
	}

	if err := tree.removeFile(device, "/dir/second/third/file.txt"); err != nil {
		t.Fatalf("removeFile failed: %s", err)
	}
	if _, err := tree.getFile(device, "/dir/second/third/file.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("getFile after remove returned %v", err)
	}
}

func TestTreePrune(t *testing.T) {
	device, tree := treeSut(t)

	if _, err := tree.insertFile(device, "dir/second/third/file.txt"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if err := tree.removeFile(device, "dir/second/third/file.txt"); err != nil {
		t.Fatalf("removeFile failed: %s", err)
	}

	pruned, err := tree.prune(device, 0)
	if err != nil {
		t.Fatalf("prune failed: %s", err)
	}
	if pruned {
		t.Error("the root must never be pruned")
	}
	if dirs, _ := tree.countDirs(device); dirs != 0 {
		t.Errorf("countDirs after prune = %d, want 0", dirs)
	}
}

func TestTreePruneKeepsOccupiedBranches(t *testing.T) {
	device, tree := treeSut(t)

	if _, err := tree.insertFile(device, "a/b/keep.txt"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if _, err := tree.insertFile(device, "a/c/drop.txt"); err != nil {
		t.Fatalf("insertFile failed: %s", err)
	}
	if err := tree.removeFile(device, "a/c/drop.txt"); err != nil {
		t.Fatalf("removeFile failed: %s", err)
	}
	if _, err := tree.prune(device, 0); err != nil {
		t.Fatalf("prune failed: %s", err)
	}

	if _, err := tree.getFile(device, "a/b/keep.txt"); err != nil {
		t.Errorf("surviving file lost after prune: %v", err)
	}
	if dirs, _ := tree.countDirs(device); dirs != 2 {
		t.Errorf("countDirs = %d, want 2", dirs)
	}
}

func TestTreeCounts(t *testing.T) {
	device, tree := treeSut(t)

	if files, _ := tree.countFiles(device); files != 0 {
		t.Errorf("countFiles on empty tree = %d", files)
	}

	paths := []string{"x/1", "x/2", "y/z/3", "4"}
	for _, p := range paths {
		if _, err := tree.insertFile(device, p); err != nil {
			t.Fatalf("insertFile(%q) failed: %s", p, err)
		}
	}
	if files, _ := tree.countFiles(device); files != len(paths) {
		t.Errorf("countFiles = %d, want %d", files, len(paths))
	}
	if dirs, _ := tree.countDirs(device); dirs != 3 {
		t.Errorf("countDirs = %d, want 3", dirs)
	}
}

func TestTreeListDir(t *testing.T) {
	device, tree := treeSut(t)

	for _, p := range []string{"docs/a.txt", "docs/b.txt", "root.txt"} {
		if _, err := tree.insertFile(device, p); err != nil {
			t.Fatalf("insertFile(%q) failed: %s", p, err)
		}
	}

	root, err := tree.listDir(device, "")
	if err != nil {
		t.Fatalf("listDir root failed: %s", err)
	}
	if len(root) != 2 || root[0].name.String() != "docs" || root[1].name.String() != "root.txt" {
		t.Errorf("root listing unexpected: %+v", root)
	}

	docs, err := tree.listDir(device, "docs")
	if err != nil {
		t.Fatalf("listDir docs failed: %s", err)
	}
	if len(docs) != 2 || docs[0].name.String() != "a.txt" {
		t.Errorf("docs listing unexpected: %+v", docs)
	}

	if _, err := tree.listDir(device, "root.txt"); !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("listDir on a file returned %v", err)
	}
}
