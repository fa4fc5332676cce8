package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.db")
	st, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestBoltStore_TextRoundTrip(t *testing.T) {
	st, _ := openStore(t)

	require.NoError(t, st.PutText("bio.pdf", 100, 2048, "cells and plants"))

	text, found, err := st.GetText("bio.pdf", 100, 2048)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cells and plants", text)
}

func TestBoltStore_StaleEntryMisses(t *testing.T) {
	st, _ := openStore(t)
	require.NoError(t, st.PutText("bio.pdf", 100, 2048, "old"))

	_, found, err := st.GetText("bio.pdf", 101, 2048)
	require.NoError(t, err)
	assert.False(t, found, "newer mtime must miss")

	_, found, err = st.GetText("bio.pdf", 100, 4096)
	require.NoError(t, err)
	assert.False(t, found, "different size must miss")

	_, found, err = st.GetText("missing.pdf", 100, 2048)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBoltStore_Prune(t *testing.T) {
	st, _ := openStore(t)
	require.NoError(t, st.PutText("a.pdf", 1, 1, "a"))
	require.NoError(t, st.PutText("b.pdf", 1, 1, "b"))
	require.NoError(t, st.PutText("c.pdf", 1, 1, "c"))

	removed, err := st.Prune(map[string]struct{}{"b.pdf": {}})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBoltStore_SchemaVersion(t *testing.T) {
	st, path := openStore(t)

	version, err := st.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	require.NoError(t, st.PutText("a.pdf", 1, 1, "a"))
	require.NoError(t, st.setSchemaVersion(CurrentSchemaVersion+1))
	require.NoError(t, st.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "cache from another layout version is dropped")
}
