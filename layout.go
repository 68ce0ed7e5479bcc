package ffs

import (
	"fmt"
	"strings"
)

// Compile-time sizing of the filesystem. With 3-sector tree pages the whole
// layout fits a small SD card partition:
//
//	1 + 1 + 3 + 120 + 1200 + 1200 + 12000 = 14525 sectors (~7.1 MiB)
const (
	nTree       = 40                    // directory tree pages
	nFile       = nTree * treeFanout    // file slots
	nData       = nFile * blocksPerNode // data blocks
	nDataBitmap = (nData + bitmapSlots - 1) / bitmapSlots
)

// DiskSectors is the total number of sectors the on-disk layout occupies.
// Devices must be at least this large to be formatted.
const DiskSectors = 1 + 1 + nDataBitmap + nTree*treeNodeBlockCount + nFile + nFile + nData

// layout describes one contiguous region of the sector space. Entries may
// span several sectors (tree pages do); nth maps a logical entry index to
// its absolute starting sector.
type layout struct {
	begin, end     Addr
	blocksPerEntry Addr
}

var (
	layoutMeta       = newLayout(0, 1, 1)
	layoutTreeBitmap = layoutMeta.next(1, 1)
	layoutDataBitmap = layoutTreeBitmap.next(nDataBitmap, 1)
	layoutTree       = layoutDataBitmap.next(nTree, treeNodeBlockCount)
	layoutFile       = layoutTree.next(nFile, 1)
	layoutNode       = layoutFile.next(nFile, 1)
	layoutData       = layoutNode.next(nData, 1)
)

func init() {
	// Regions must tile the sector space with no gaps. Anything else is a
	// programmer error in the constants above.
	chain := []layout{layoutMeta, layoutTreeBitmap, layoutDataBitmap,
		layoutTree, layoutFile, layoutNode, layoutData}
	for i := 1; i < len(chain); i++ {
		if chain[i-1].end != chain[i].begin {
			panic("ffs: disk layout regions are not contiguous")
		}
	}
	if layoutData.end != DiskSectors {
		panic("ffs: disk layout does not match DiskSectors")
	}
}

func newLayout(begin, capacity, blocksPerEntry Addr) layout {
	if blocksPerEntry == 0 {
		panic("ffs: entry size must be greater than zero")
	}
	return layout{
		begin:          begin,
		end:            begin + capacity*blocksPerEntry,
		blocksPerEntry: blocksPerEntry,
	}
}

func (l layout) next(capacity, blocksPerEntry Addr) layout {
	return newLayout(l.end, capacity, blocksPerEntry)
}

func (l layout) sectorCount() Addr {
	return l.end - l.begin
}

func (l layout) entryCount() Addr {
	return l.sectorCount() / l.blocksPerEntry
}

// nth maps a logical entry index to its absolute sector.
func (l layout) nth(logical Addr) Addr {
	sector := l.begin + logical*l.blocksPerEntry
	if sector >= l.end {
		panic(fmt.Sprintf("ffs: address %d out of range [%d,%d)", logical, l.begin, l.end))
	}
	return sector
}

func (l layout) sizeInBytes() int {
	return int(l.sectorCount()) * BlockLen
}

// DescribeLayout returns a human-readable table of the disk regions.
func DescribeLayout() string {
	var b strings.Builder
	b.WriteString("Disk layout:\n")
	for _, r := range []struct {
		name string
		lay  layout
	}{
		{"Meta", layoutMeta},
		{"TreeBitmap", layoutTreeBitmap},
		{"DataBitmap", layoutDataBitmap},
		{"Tree", layoutTree},
		{"File", layoutFile},
		{"Node", layoutNode},
		{"Data", layoutData},
	} {
		fmt.Fprintf(&b, "  %-10s [%6d, %6d) %d entries, %d bytes\n",
			r.name, r.lay.begin, r.lay.end, r.lay.entryCount(), r.lay.sizeInBytes())
	}
	return b.String()
}
