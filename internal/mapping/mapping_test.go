package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture creates:
//
//	<root>/dir/file.js
//	<root>/dir/file2.coffee
//	<root>/dir/sub/deep.js
//	<root>/dir2/other.js
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"dir/file.js", "dir/file2.coffee", "dir/sub/deep.js", "dir2/other.js"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("define({});"), 0o644))
	}
	return root
}

func TestRegisterNamespace_NonExistentPath(t *testing.T) {
	m := New("js")

	err := m.RegisterNamespace("dir", filepath.Join(t.TempDir(), "root"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Empty(t, m.Namespaces(), "failed registration must not modify the table")
}

func TestModulePath_UnregisteredReturnsFalse(t *testing.T) {
	root := fixture(t)
	m := New("js")

	_, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	assert.False(t, ok)
}

func TestModulePath_MissingFileReturnsFalse(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))

	_, ok := m.ModulePath(filepath.Join(root, "dir", "missing.js"))
	assert.False(t, ok)
}

func TestModulePath_FilesInDirectory(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file.js", got)

	got, ok = m.ModulePath(filepath.Join(root, "dir", "sub", "deep.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/sub/deep.js", got)
}

func TestModulePath_SingleFileNamespace(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("module", filepath.Join(root, "dir", "file.js")))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/module/file.js", got)
}

func TestRegisterNamespace_ProbesJSExtension(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("module", filepath.Join(root, "dir", "file")))

	entries := m.Namespaces()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, "file.js", filepath.Base(entries[0].RealPath))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file"))
	require.True(t, ok)
	assert.Equal(t, "js/module/file.js", got)
}

func TestModulePath_ExtraSlashesIgnored(t *testing.T) {
	root := fixture(t)
	m := New("js//")
	require.NoError(t, m.RegisterNamespace("/modules/", filepath.Join(root, "dir")))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file.js", got)
}

func TestModulePath_RelativePathsReduced(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir", "..", "dir")))

	got, ok := m.ModulePath(filepath.Join(root, "dir2", "..", "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file.js", got)
}

func TestModulePath_CoffeeRenamedToJS(t *testing.T) {
	root := fixture(t)

	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))
	got, ok := m.ModulePath(filepath.Join(root, "dir", "file2.coffee"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file2.js", got)

	single := New("js")
	require.NoError(t, single.RegisterNamespace("modules", filepath.Join(root, "dir", "file2.coffee")))
	got, ok = single.ModulePath(filepath.Join(root, "dir", "file2.coffee"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file2.js", got)
}

func TestModulePath_SiblingWithSharedPrefixNotMatched(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))

	// "dir2" shares the string prefix "dir" but is a different directory.
	_, ok := m.ModulePath(filepath.Join(root, "dir2", "other.js"))
	assert.False(t, ok)
}

func TestModulePath_Directory(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))

	got, ok := m.ModulePath(filepath.Join(root, "dir"))
	require.True(t, ok)
	assert.Equal(t, "js/modules", got)

	got, ok = m.ModulePath(filepath.Join(root, "dir", "sub"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/sub", got)
}

func TestModulePath_FirstRegisteredWins(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("deep", filepath.Join(root, "dir", "sub")))
	require.NoError(t, m.RegisterNamespace("", filepath.Join(root, "dir")))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "sub", "deep.js"))
	require.True(t, ok)
	assert.Equal(t, "js/deep/deep.js", got)

	got, ok = m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/file.js", got)
}

func TestRegisterNamespace_SameRootLastWriteWins(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("first", filepath.Join(root, "dir")))
	require.NoError(t, m.RegisterNamespace("other", filepath.Join(root, "dir2")))
	require.NoError(t, m.RegisterNamespace("second", filepath.Join(root, "dir")))

	entries := m.Namespaces()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Namespace, "replacement keeps the original position")
	assert.Equal(t, "other", entries[1].Namespace)

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/second/file.js", got)
}

func TestRegisterNamespace_SameNamespaceMoves(t *testing.T) {
	root := fixture(t)
	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir")))
	require.NoError(t, m.RegisterNamespace("modules", filepath.Join(root, "dir2")))

	require.Len(t, m.Namespaces(), 1)

	_, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	assert.False(t, ok)

	got, ok := m.ModulePath(filepath.Join(root, "dir2", "other.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/other.js", got)
}

func TestModulePath_SymlinkResolved(t *testing.T) {
	root := fixture(t)
	link := filepath.Join(root, "link")
	if err := os.Symlink(filepath.Join(root, "dir"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	m := New("js")
	require.NoError(t, m.RegisterNamespace("modules", link))

	got, ok := m.ModulePath(filepath.Join(root, "dir", "file.js"))
	require.True(t, ok)
	assert.Equal(t, "js/modules/file.js", got)
}
