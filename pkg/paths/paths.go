package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
)

// Environment variable names
const (
	// EnvRoot overrides repository root discovery
	EnvRoot = "DOTLINK_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Paths holds the resolved locations for one run
type Paths struct {
	root         string
	home         string
	source       string
	dirlinks     string
	usedFallback bool
}

// New resolves the locations for a run. source and dirlinks are taken
// relative to root unless absolute; home must already be resolved (see
// HomeDir).
func New(root, home, source, dirlinks string, usedFallback bool) (*Paths, error) {
	if root == "" {
		return nil, errors.New(errors.ErrInvalidInput, "empty repository root")
	}
	if home == "" {
		return nil, errors.New(errors.ErrInvalidInput, "empty destination root")
	}

	absRoot, err := filepath.Abs(ExpandHome(root, home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for repository root")
	}
	absHome, err := filepath.Abs(home)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home")
	}

	return &Paths{
		root:         absRoot,
		home:         absHome,
		source:       underRoot(absRoot, ExpandHome(source, absHome)),
		dirlinks:     underRoot(absRoot, ExpandHome(dirlinks, absHome)),
		usedFallback: usedFallback,
	}, nil
}

func underRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// Root returns the repository root
func (p *Paths) Root() string {
	return p.root
}

// Home returns the destination root
func (p *Paths) Home() string {
	return p.home
}

// SourceRoot returns the tree mirrored into Home
func (p *Paths) SourceRoot() string {
	return p.source
}

// DirlinksFile returns the path of the directory-link list
func (p *Paths) DirlinksFile() string {
	return p.dirlinks
}

// UsedFallback returns true if the current working directory was used as
// the repository root
func (p *Paths) UsedFallback() bool {
	return p.usedFallback
}

// FindRoot determines the repository root using the following priority:
// 1. explicit (the --root flag), if set
// 2. DOTLINK_ROOT environment variable, if set
// 3. Git repository root (found via 'git rev-parse --show-toplevel')
// 4. Current working directory (fallback)
//
// The returned bool is true when the fallback was used.
func FindRoot(explicit string) (string, bool, error) {
	if explicit != "" {
		return explicit, false, nil
	}

	if root := os.Getenv(EnvRoot); root != "" {
		return root, false, nil
	}

	if gitRoot, err := findGitRoot(); err == nil {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	args := []string{"rev-parse", "--show-toplevel"}
	logging.LogCommand("git", args)

	output, err := exec.Command("git", args...).Output()
	if err != nil {
		logger := logging.GetLogger("paths")
		logger.Debug().Err(err).Msg("Not inside a git repository")
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}

	return gitRoot, nil
}

// HomeDir returns the destination root: configured if set, then $HOME,
// then the platform home directory
func HomeDir(configured string) (string, error) {
	if configured != "" {
		home := os.Getenv(EnvHome)
		if home == "" {
			home = xdg.Home
		}
		return ExpandHome(os.ExpandEnv(configured), home), nil
	}

	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	if xdg.Home != "" {
		return xdg.Home, nil
	}

	return "", errors.New(errors.ErrNotFound, "cannot determine home directory, set HOME")
}

// ExpandHome expands a leading ~ or ~/ to home. Other ~user forms are
// returned unchanged.
func ExpandHome(path, home string) string {
	if path == "" || path[0] != '~' || home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}

	return path
}

// ResolveTarget maps a configured link target onto the destination root:
// environment variables and ~ are expanded, and relative targets are taken
// relative to home.
func ResolveTarget(target, home string) string {
	expanded := ExpandHome(os.ExpandEnv(target), home)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Join(home, expanded)
}

// ResolveSource maps a configured link source onto the source root
func ResolveSource(source, sourceRoot, home string) string {
	return underRoot(sourceRoot, ExpandHome(os.ExpandEnv(source), home))
}
