package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bio.pdf", "x")
	writeFile(t, root, "notes/chem.txt", "x")
	writeFile(t, root, "notes/readme.md", "x")
	writeFile(t, root, "image.png", "x")
	writeFile(t, root, ".git/config.txt", "x")

	w := NewWalker([]string{"**/*.pdf", "**/*.txt", "**/*.md"}, []string{"**/.git/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.Equal(t, []string{"bio.pdf", "notes/chem.txt", "notes/readme.md"}, rels)
}

func TestWalker_DefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.bin", "x")
	writeFile(t, root, "sub/b.txt", "xy")

	files, err := NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, int64(2), files[1].Size)
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWalker_ModTimeKeepsSubsecondPrecision(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bio.pdf", "x")
	path := filepath.Join(root, "bio.pdf")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, base, base.Add(100*time.Millisecond)))
	files, err := NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	first := files[0].ModTime

	require.NoError(t, os.Chtimes(path, base, base.Add(700*time.Millisecond)))
	files, err = NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.NotEqual(t, first, files[0].ModTime, "rewrites within one second must change ModTime")
	assert.Equal(t, base.Add(700*time.Millisecond).UnixNano(), files[0].ModTime)
}
