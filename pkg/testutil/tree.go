package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tree declares test files as relative path -> content. A path ending in
// "/" declares an empty directory.
type Tree map[string]string

// Write creates every entry of tree under root
func (tree Tree) Write(t *testing.T, fsys *MemoryFS, root string) {
	t.Helper()

	for rel, content := range tree {
		path := filepath.Join(root, rel)
		if rel[len(rel)-1] == '/' {
			require.NoError(t, fsys.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}
