// Package dirlinks reads the list of paths that are linked as whole
// directories and decides which source files those links cover.
//
// The list is a plain text file, one path relative to the source root per
// line. Blank lines and lines starting with # are ignored:
//
//	.config/karabiner
//	.oh-my-zsh/custom
//	# comment line, ignored
package dirlinks

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	dlerrors "github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/types"
)

// Load reads the directory-link list at path. A missing file yields an
// empty list: directory linking is optional.
func Load(fsys types.FS, path string) ([]string, error) {
	logger := logging.GetLogger("dirlinks")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("path", path).Msg("No directory-link list, linking files only")
			return []string{}, nil
		}
		return nil, dlerrors.Wrapf(err, dlerrors.ErrConfigLoad, "failed to read directory-link list %s", path).
			WithDetail("path", path)
	}

	dirs := Parse(data)
	logger.Debug().Str("path", path).Strs("dirs", dirs).Msg("Loaded directory-link list")
	return dirs, nil
}

// Parse returns the entries of a directory-link list in file order.
// Entries are trimmed and cleaned, so a trailing slash is ignored.
func Parse(data []byte) []string {
	dirs := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dirs = append(dirs, filepath.Clean(line))
	}
	return dirs
}

// Excluded reports whether rel lives inside one of dirs and so must not be
// linked on its own.
func Excluded(rel string, dirs []string) bool {
	_, ok := Covering(rel, dirs)
	return ok
}

// Covering returns the entry of dirs that contains rel. Matching is on
// whole path segments: ".config" covers ".config/a" but not ".configX/a",
// and an entry never covers itself.
func Covering(rel string, dirs []string) (string, bool) {
	for _, d := range dirs {
		if strings.HasPrefix(rel, d+string(filepath.Separator)) {
			return d, true
		}
	}
	return "", false
}

// Normalize drops entries that cannot be linked safely, keeping order:
// duplicates, entries escaping the source root ("", ".", "..", absolute
// paths) and entries nested under another entry. Linking both ".config"
// and ".config/karabiner" would resolve the second link through the first
// one, straight into the source tree.
func Normalize(dirs []string) (kept, dropped []string) {
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if seen[d] {
			continue
		}
		seen[d] = true
		if !Valid(d) || Excluded(d, dirs) {
			dropped = append(dropped, d)
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}

// Valid reports whether d names a path strictly inside the source root.
func Valid(d string) bool {
	if d == "" || d == "." || filepath.IsAbs(d) {
		return false
	}
	return d != ".." && !strings.HasPrefix(d, ".."+string(filepath.Separator))
}
