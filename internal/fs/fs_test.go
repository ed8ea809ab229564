package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.bin")

	f, err := Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("abcdef"), 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("XY"), 2)
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	buf := make([]byte, 6)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYef"), buf)
	require.NoError(t, f.Close())

	fi, err := Default.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), fi.Size())
}

func TestFaultyFSFailAfterBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faulty.bin")

	faulty := NewFaultyFS(nil)
	faulty.AddRule("faulty", Fault{FailAfterBytes: 4})

	f, err := faulty.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteAt([]byte("1234"), 0)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("5"), 4)
	require.ErrorIs(t, err, ErrInjected)

	_, err = f.Write([]byte("5"))
	require.ErrorIs(t, err, ErrInjected)
}

func TestFaultyFSSyncAndClose(t *testing.T) {
	dir := t.TempDir()

	faulty := NewFaultyFS(nil)
	custom := os.ErrDeadlineExceeded
	faulty.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: custom})
	faulty.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})

	f, err := faulty.OpenFile(filepath.Join(dir, "sync.bin"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("ok"))
	require.NoError(t, err)
	require.ErrorIs(t, f.Sync(), custom)
	require.NoError(t, f.Close())

	g, err := faulty.OpenFile(filepath.Join(dir, "close.bin"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.ErrorIs(t, g.Close(), ErrInjected)
}

func TestFaultyFSUnmatchedFilesPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.bin")

	faulty := NewFaultyFS(nil)
	faulty.AddRule("other-file", Fault{FailAfterBytes: 0})

	f, err := faulty.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("unlimited"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
}
