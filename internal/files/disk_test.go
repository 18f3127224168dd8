package files

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *DiskStore {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	store, err := NewDiskStore(logger.Sugar(), t.TempDir())
	require.NoError(t, err)

	return store
}

func TestSaveAndRead(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	data := []byte("media-bytes")

	path, err := store.Save(data, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, path)

	read, err := store.Read(path)
	require.NoError(t, err)
	require.Equal(t, data, read)
}

func TestSaveGeneratesDistinctPaths(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	first, err := store.Save([]byte("a"), "alice")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "alice")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Read(t.TempDir() + "/nope")
	require.ErrorIs(t, err, ErrFileNotExist)
}
