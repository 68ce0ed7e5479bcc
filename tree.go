package ffs

// dirTree implements the directory hierarchy over tree pages. The root
// page always lives at TREE address 0; every other page is allocated from
// the tree allocator. File identities are not allocated there: each page
// hands them out from its own index range (see treeNode.nextFileID).
type dirTree struct {
	alloc *allocator
}

func newDirTree(alloc *allocator) *dirTree {
	return &dirTree{alloc: alloc}
}

// format writes an empty root page and reserves bitmap bit 0 for it, so
// no later allocation can collide with the root.
func (t *dirTree) format(d BlockDevice) error {
	var root treeNode
	if err := storeAt(d, layoutTree, 0, &root); err != nil {
		return err
	}
	_, err := t.alloc.allocate(d)
	return err
}

// insertFile walks path from the root, creating intermediate directory
// pages as needed, and registers a File-kind entry in the final page. The
// returned entry carries the freshly assigned file identity address.
func (t *dirTree) insertFile(d BlockDevice, path string) (entry, error) {
	return t.insertFileAt(d, norm(path), 0)
}

func (t *dirTree) insertFileAt(d BlockDevice, path string, addr Addr) (entry, error) {
	var current treeNode
	if err := loadAt(d, layoutTree, addr, &current); err != nil {
		return entry{}, err
	}

	if dirname(path) == "" {
		name := firstComponent(path)
		if current.find(name) != nil {
			return entry{}, ErrFileAlreadyExists
		}
		if current.findUnset() < 0 {
			return entry{}, ErrDirectoryFull
		}
		// The file identity comes from the page's private slice of the FILE
		// region, so it is unique without any bitmap tracking. The root page
		// cannot hand out identity 0, which costs it one file slot.
		id, ok := current.nextFileID(addr)
		if !ok {
			return entry{}, ErrDirectoryFull
		}
		e, err := current.insert(name, id, kindFile)
		if err != nil {
			return entry{}, err
		}
		if err := storeAt(d, layoutTree, addr, &current); err != nil {
			return entry{}, err
		}
		return e, nil
	}

	first := firstComponent(path)
	next := tail(path)
	if e := current.find(first); e != nil {
		if !e.isDir() {
			return entry{}, ErrDirectoryNotFound
		}
		return t.insertFileAt(d, next, e.addr)
	}

	// No such subdirectory yet. Make sure the current page can hold the new
	// edge before allocating anything.
	if current.findUnset() < 0 {
		return entry{}, ErrStorageFull
	}
	nextAddr, err := t.alloc.allocate(d)
	if err != nil {
		return entry{}, err
	}
	if _, err := current.insert(first, nextAddr, kindDir); err != nil {
		return entry{}, err
	}
	var child treeNode
	if err := storeAt(d, layoutTree, nextAddr, &child); err != nil {
		return entry{}, err
	}
	if err := storeAt(d, layoutTree, addr, &current); err != nil {
		return entry{}, err
	}
	return t.insertFileAt(d, next, nextAddr)
}

// findAndThen descends along path and invokes fn on the page holding the
// final component. getFile and removeFile share this walk.
func (t *dirTree) findAndThen(d BlockDevice, path string, addr Addr, fn func(d BlockDevice, addr Addr, n *treeNode, pos int) error) error {
	var current treeNode
	if err := loadAt(d, layoutTree, addr, &current); err != nil {
		return err
	}
	first := firstComponent(path)
	pos := current.findIndex(first)
	if pos < 0 {
		return ErrFileNotFound
	}
	if dirname(path) == "" {
		return fn(d, addr, &current, pos)
	}
	e := &current.entries[pos]
	if !e.isDir() {
		return ErrDirectoryNotFound
	}
	return t.findAndThen(d, tail(path), e.addr, fn)
}

// getFile resolves path to its File-kind entry.
func (t *dirTree) getFile(d BlockDevice, path string) (entry, error) {
	var out entry
	err := t.findAndThen(d, norm(path), 0, func(_ BlockDevice, _ Addr, n *treeNode, pos int) error {
		if n.entries[pos].isDir() {
			return ErrFileNotFound
		}
		out = n.entries[pos]
		return nil
	})
	return out, err
}

// removeFile clears the entry for path and persists the page.
func (t *dirTree) removeFile(d BlockDevice, path string) error {
	return t.findAndThen(d, norm(path), 0, func(d BlockDevice, addr Addr, n *treeNode, pos int) error {
		if n.entries[pos].isDir() {
			return ErrFileNotFound
		}
		n.entries[pos] = entry{}
		n.sortEntries()
		return storeAt(d, layoutTree, addr, n)
	})
}

// lookup resolves path to its entry, directory or file. The root itself
// has no entry and resolves to ErrFileNotFound.
func (t *dirTree) lookup(d BlockDevice, path string) (entry, error) {
	p := norm(path)
	if p == "" {
		return entry{}, ErrFileNotFound
	}
	addr := Addr(0)
	for {
		var current treeNode
		if err := loadAt(d, layoutTree, addr, &current); err != nil {
			return entry{}, err
		}
		e := current.find(firstComponent(p))
		if e == nil {
			return entry{}, ErrFileNotFound
		}
		if dirname(p) == "" {
			return *e, nil
		}
		if !e.isDir() {
			return entry{}, ErrDirectoryNotFound
		}
		addr = e.addr
		p = tail(p)
	}
}

// listDir returns the set entries of the directory at path, sorted by
// name. An empty path lists the root.
func (t *dirTree) listDir(d BlockDevice, path string) ([]entry, error) {
	addr := Addr(0)
	if p := norm(path); p != "" {
		e, err := t.lookup(d, p)
		if err != nil {
			return nil, err
		}
		if !e.isDir() {
			return nil, ErrDirectoryNotFound
		}
		addr = e.addr
	}
	var current treeNode
	if err := loadAt(d, layoutTree, addr, &current); err != nil {
		return nil, err
	}
	out := make([]entry, current.setLen())
	copy(out, current.setEntries())
	return out, nil
}

// prune walks the subtree below addr depth-first and releases every page
// whose subtree has become empty. It reports whether addr itself was
// released; the root never is.
func (t *dirTree) prune(d BlockDevice, addr Addr) (bool, error) {
	var current treeNode
	if err := loadAt(d, layoutTree, addr, &current); err != nil {
		return false, err
	}
	dirty := false
	for i := range current.entries {
		e := &current.entries[i]
		if !e.isSet() || !e.isDir() {
			continue
		}
		pruned, err := t.prune(d, e.addr)
		if err != nil {
			return false, err
		}
		if pruned {
			*e = entry{}
			dirty = true
		}
	}
	if dirty {
		current.sortEntries()
	}
	if addr != 0 && current.setLen() == 0 {
		if err := t.alloc.release(d, addr); err != nil {
			return false, err
		}
		return true, nil
	}
	if dirty {
		if err := storeAt(d, layoutTree, addr, &current); err != nil {
			return false, err
		}
	}
	return false, nil
}

// visit walks the whole tree, invoking fn on every page.
func (t *dirTree) visit(d BlockDevice, addr Addr, depth int, fn func(n *treeNode, depth int) error) error {
	var current treeNode
	if err := loadAt(d, layoutTree, addr, &current); err != nil {
		return err
	}
	if err := fn(&current, depth); err != nil {
		return err
	}
	for i := range current.entries {
		e := &current.entries[i]
		if !e.isSet() || !e.isDir() {
			continue
		}
		if err := t.visit(d, e.addr, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *dirTree) countKind(d BlockDevice, kind entryKind) (int, error) {
	count := 0
	err := t.visit(d, 0, 0, func(n *treeNode, _ int) error {
		for i := range n.entries {
			if n.entries[i].isSet() && n.entries[i].kind == kind {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (t *dirTree) countFiles(d BlockDevice) (int, error) {
	return t.countKind(d, kindFile)
}

func (t *dirTree) countDirs(d BlockDevice) (int, error) {
	return t.countKind(d, kindDir)
}
