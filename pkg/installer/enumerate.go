package installer

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/types"
)

// Enumerate returns every non-directory entry under root as absolute
// paths in lexical order. Directories are descended into; symlinks are
// returned as entries and never followed.
func Enumerate(fsys types.FS, root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", root)
	}

	files := []string{}
	if err := walk(fsys, abs, &files); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func walk(fsys types.FS, dir string, files *[]string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", dir).
			WithDetail("dir", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() && entry.Type()&fs.ModeSymlink == 0 {
			if err := walk(fsys, path, files); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, path)
	}
	return nil
}
