// Package linker makes a destination path a symlink to its source,
// replacing whatever was there before.
//
// There is a single replacement policy: a pre-existing symlink or file is
// unlinked and a real directory is removed recursively. Nothing is backed
// up; the source tree is the copy that matters.
package linker

import (
	"errors"
	"io/fs"
	"path/filepath"

	dlerrors "github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/rs/zerolog"
)

// Reporter receives one call per step taken on a destination
type Reporter interface {
	Removing(target string, existing types.Existing, dryRun bool)
	Linking(link types.Link, dryRun bool)
}

// Linker applies planned links to a filesystem
type Linker struct {
	fs       types.FS
	reporter Reporter
	dryRun   bool
	logger   zerolog.Logger
}

// Option configures a Linker
type Option func(*Linker)

// WithReporter sends progress to r
func WithReporter(r Reporter) Option {
	return func(l *Linker) {
		l.reporter = r
	}
}

// WithDryRun inspects destinations and reports what would change without
// touching them
func WithDryRun(dryRun bool) Option {
	return func(l *Linker) {
		l.dryRun = dryRun
	}
}

// New creates a Linker over fsys
func New(fsys types.FS, opts ...Option) *Linker {
	l := &Linker{
		fs:       fsys,
		reporter: nopReporter{},
		logger:   logging.GetLogger("linker"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link makes link.Target a symlink to link.Source. The caller has checked
// that the source exists. Any failure is returned as a *errors.DotlinkError
// and the destination may be left removed but not yet linked.
func (l *Linker) Link(link types.Link) (types.Action, error) {
	source, err := filepath.Abs(link.Source)
	if err != nil {
		return types.Action{}, dlerrors.Wrapf(err, dlerrors.ErrInvalidInput, "failed to resolve source %s", link.Source).
			WithDetail("source", link.Source)
	}
	link.Source = source
	action := types.Action{Link: link, Replaced: types.ExistingNone, DryRun: l.dryRun}

	logger := l.logger.With().
		Str("kind", string(link.Kind)).
		Str("source", link.Source).
		Str("target", link.Target).
		Logger()

	parent := filepath.Dir(link.Target)
	if !l.dryRun {
		if err := l.fs.MkdirAll(parent, 0755); err != nil {
			return action, wrap(err, dlerrors.ErrDirCreate, "failed to create parent directory", link).
				WithDetail("dir", parent)
		}
	}

	existing, previous, err := l.inspect(link.Target)
	if err != nil {
		return action, wrap(err, dlerrors.ErrFileAccess, "failed to inspect destination", link)
	}
	action.Replaced = existing
	action.PreviousTarget = previous

	if existing != types.ExistingNone {
		logger.Debug().Str("existing", string(existing)).Str("previous", previous).Msg("Removing existing destination")
		l.reporter.Removing(link.Target, existing, l.dryRun)
		if !l.dryRun {
			if err := l.remove(link.Target, existing); err != nil {
				return action, wrap(err, dlerrors.ErrFileRemove, "failed to remove existing "+string(existing), link)
			}
		}
	}

	l.reporter.Linking(link, l.dryRun)
	if l.dryRun {
		logger.Debug().Msg("Dry run, symlink not created")
		return action, nil
	}

	if err := l.fs.Symlink(link.Source, link.Target); err != nil {
		return action, wrap(err, dlerrors.ErrSymlinkCreate, "failed to create symlink", link)
	}
	logger.Info().Msg("Linked")

	return action, nil
}

// inspect classifies target without following a symlink there
func (l *Linker) inspect(target string) (types.Existing, string, error) {
	info, err := l.fs.Lstat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ExistingNone, "", nil
		}
		return types.ExistingNone, "", err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		previous, err := l.fs.Readlink(target)
		if err != nil {
			l.logger.Debug().Err(err).Str("target", target).Msg("Could not read existing symlink")
		}
		return types.ExistingSymlink, previous, nil
	case info.IsDir():
		return types.ExistingDir, "", nil
	default:
		return types.ExistingFile, "", nil
	}
}

func (l *Linker) remove(target string, existing types.Existing) error {
	if existing == types.ExistingDir {
		return l.fs.RemoveAll(target)
	}
	return l.fs.Remove(target)
}

func wrap(err error, code dlerrors.ErrorCode, msg string, link types.Link) *dlerrors.DotlinkError {
	return dlerrors.Wrapf(err, code, "%s %s", msg, link.Target).
		WithDetail("source", link.Source).
		WithDetail("target", link.Target)
}

type nopReporter struct{}

func (nopReporter) Removing(string, types.Existing, bool) {}
func (nopReporter) Linking(types.Link, bool)              {}
