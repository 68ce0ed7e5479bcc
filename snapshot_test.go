package ffs_test

import (
	"bytes"
	"testing"

	"github.com/KarpelesLab/ffs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotRoundTrip(t *testing.T, comp ffs.Compression) {
	t.Helper()
	disk, c := formatted(t)
	require.NoError(t, c.Create("/snap/data.bin", []byte("snapshot payload")))
	c.Unmount()

	var buf bytes.Buffer
	require.NoError(t, ffs.WriteSnapshot(&buf, disk, comp))

	restored, err := ffs.ReadSnapshot(&buf)
	require.NoError(t, err)

	c, err = ffs.Mount(restored)
	require.NoError(t, err)
	r, err := c.Open("/snap/data.bin")
	require.NoError(t, err)
	out := make([]byte, r.FileLen())
	_, err = r.ReadFull(out)
	require.NoError(t, err)
	assert.Equal(t, "snapshot payload", string(out))
}

func TestSnapshotRaw(t *testing.T) {
	snapshotRoundTrip(t, ffs.NoCompression)
}

func TestSnapshotZstd(t *testing.T) {
	snapshotRoundTrip(t, ffs.Zstd)
}

func TestSnapshotXz(t *testing.T) {
	snapshotRoundTrip(t, ffs.Xz)
}

func TestSnapshotCompressionShrinksImage(t *testing.T) {
	disk, c := formatted(t)
	require.NoError(t, c.Create("/f", bytes.Repeat([]byte("abc"), 1000)))
	c.Unmount()

	var raw, zst bytes.Buffer
	require.NoError(t, ffs.WriteSnapshot(&raw, disk, ffs.NoCompression))
	require.NoError(t, ffs.WriteSnapshot(&zst, disk, ffs.Zstd))
	assert.Less(t, zst.Len(), raw.Len())
}

func TestSnapshotBadMagic(t *testing.T) {
	_, err := ffs.ReadSnapshot(bytes.NewReader([]byte("not a snapshot at all")))
	assert.ErrorIs(t, err, ffs.ErrUnsupportedDevice)
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]ffs.Compression{
		"":     ffs.NoCompression,
		"none": ffs.NoCompression,
		"zstd": ffs.Zstd,
		"xz":   ffs.Xz,
	} {
		got, err := ffs.ParseCompression(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ffs.ParseCompression("lzma")
	assert.ErrorIs(t, err, ffs.ErrUnknownCompression)
}
