package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store := NewFSStore(t.TempDir())

	require.NoError(t, store.Put("processed_data/a.json", []byte(`{"x":1}`)))

	data, err := store.Get("processed_data/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))
}

func TestFSStoreGetMissingIsNotFound(t *testing.T) {
	store := NewFSStore(t.TempDir())
	_, err := store.Get("nope/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStoreListSortedAndSkipsTemp(t *testing.T) {
	store := NewFSStore(t.TempDir())
	require.NoError(t, store.Put("p/b.json", []byte("b")))
	require.NoError(t, store.Put("p/a.json", []byte("a")))
	require.NoError(t, store.Put("p/nested/c.json", []byte("c")))

	paths, err := store.List("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"p/a.json", "p/b.json", "p/nested/c.json"}, paths)

	// A prefix with no objects lists empty rather than erroring.
	paths, err = store.List("empty")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFSStorePutOverwrites(t *testing.T) {
	store := NewFSStore(t.TempDir())
	require.NoError(t, store.Put("p/a.json", []byte("one")))
	require.NoError(t, store.Put("p/a.json", []byte("two")))

	data, err := store.Get("p/a.json")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
