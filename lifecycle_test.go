package syrah

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syrahdb/syrah/internal/fs"
)

func TestOpenInvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mode.syr")

	_, err := Open(path, Mode(0))
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = Open(path, Mode(42))
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestWrongModeOperations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.syr")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)
	require.NoError(t, w.AddItem(map[string]any{"a": []int32{1}}))

	_, err = w.GetItem(0)
	require.ErrorIs(t, err, ErrWrongMode)
	_, err = w.GetArray(0, "a")
	require.ErrorIs(t, err, ErrWrongMode)
	require.NoError(t, w.Close())

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	defer r.Close()

	err = r.AddItem(map[string]any{"a": []int32{2}})
	require.ErrorIs(t, err, ErrWrongMode)
}

func TestOperationsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.syr")

	f, err := Open(path, ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.AddItem(map[string]any{"a": []int32{1}}))
	require.NoError(t, f.Close())

	err = f.AddItem(map[string]any{"a": []int32{2}})
	require.ErrorIs(t, err, ErrNotOpen)

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.GetItem(0)
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = r.GetArray(0, "a")
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestDoubleCloseIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "double.syr")

	f, err := Open(path, ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.AddItem(map[string]any{"a": []int32{1}}))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestReopenHandle(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.syr")
	second := filepath.Join(dir, "second.syr")
	writeItems(t, first, scenarioItems)
	writeItems(t, second, scenarioItems[:1])

	f, err := Open(first, ModeRead)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 3, f.NumItems())

	// Re-opening implicitly closes the prior handle; this is the entry
	// point each worker process calls to get its own descriptor.
	require.NoError(t, f.Open(second, ModeRead))
	assert.Equal(t, 1, f.NumItems())

	item, err := f.GetItem(0)
	require.NoError(t, err)
	assert.Equal(t, []int32{4}, item["label"])

	err = f.Open(second, Mode(9))
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestWithClosesOnAllPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with.syr")

	sentinel := errors.New("sentinel")
	err := With(path, ModeWrite, func(f *File) error {
		if err := f.AddItem(map[string]any{"a": []int32{1}}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// The handle was closed and flushed despite the error return.
	var n int
	require.NoError(t, With(path, ModeRead, func(f *File) error {
		n = f.NumItems()
		return nil
	}))
	assert.Equal(t, 1, n)
}

func TestWithPropagatesOpenError(t *testing.T) {
	err := With(filepath.Join(t.TempDir(), "missing.syr"), ModeRead, func(f *File) error {
		t.Fatal("fn must not run when open fails")
		return nil
	})
	require.Error(t, err)
}

func TestClosePropagatesTrailerWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faulty.syr")

	faulty := fs.NewFaultyFS(nil)
	// Let the provisional header and payloads through, then fail the
	// larger writes issued at flush time.
	faulty.AddRule("faulty.syr", fs.Fault{FailAfterBytes: headerSize + 8})

	f, err := Open(path, ModeWrite, WithFileSystem(faulty))
	require.NoError(t, err)
	require.NoError(t, f.AddItem(map[string]any{"a": []int64{7}}))

	err = f.Close()
	require.ErrorIs(t, err, fs.ErrInjected)

	// The provisional header still has zeroed index fields, so the file
	// must not open as a valid container instead of silently reading a
	// missing trailer.
	_, err = Open(path, ModeRead)
	require.Error(t, err)
}

func TestClosePropagatesSyncFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nosync.syr")

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("nosync.syr", fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	f, err := Open(path, ModeWrite, WithFileSystem(faulty))
	require.NoError(t, err)
	require.NoError(t, f.AddItem(map[string]any{"a": []int64{7}}))
	require.ErrorIs(t, f.Close(), fs.ErrInjected)
}

func TestOpenWithLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logged.syr")

	logger := NewLogger(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	writeItems(t, path, scenarioItems, WithLogger(logger))

	require.NoError(t, With(path, ModeRead, func(f *File) error {
		_, err := f.GetItem(0)
		return err
	}, WithLogger(nil)))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
