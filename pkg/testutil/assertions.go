package testutil

import (
	"io/fs"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSymlink checks that link is a symlink pointing at target
func AssertSymlink(t *testing.T, fsys types.FS, link, target string) {
	t.Helper()

	info, err := fsys.Lstat(link)
	require.NoError(t, err, "expected symlink at %s", link)
	require.NotZero(t, info.Mode()&fs.ModeSymlink, "%s is not a symlink (mode %s)", link, info.Mode())

	dest, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, dest, "symlink %s points to the wrong place", link)
}

// AssertNotExists checks that nothing, not even a dangling symlink, is at path
func AssertNotExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()

	_, err := fsys.Lstat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "expected nothing at %s", path)
}

// AssertRegularFile checks that path is a regular file with the given content
func AssertRegularFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()

	info, err := fsys.Lstat(path)
	require.NoError(t, err, "expected file at %s", path)
	require.True(t, info.Mode().IsRegular(), "%s is not a regular file (mode %s)", path, info.Mode())

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}
