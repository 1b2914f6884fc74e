package installer

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/dirlinks"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/linker"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/rs/zerolog"
)

// Reporter receives the progress of a run. *ui.Reporter implements it.
type Reporter interface {
	linker.Reporter
	Skipped(format string, args ...interface{})
	Warning(format string, args ...interface{})
	DryRunBanner()
	Done()
}

// Options configures an Installer
type Options struct {
	// SourceRoot is the tree mirrored into DestRoot
	SourceRoot string
	// DestRoot is normally the operator's home directory
	DestRoot string
	// DirlinksFile lists directories linked as a whole. A missing file
	// means no directory links.
	DirlinksFile string
	ExtraLinks   []types.ExtraLink
	DryRun       bool
	Reporter     Reporter
}

// Result records what a run did
type Result struct {
	Actions []types.Action `json:"actions"`
	// DroppedDirlinks are list entries ignored because they were invalid
	// or nested under another entry
	DroppedDirlinks []string `json:"dropped_dirlinks,omitempty"`
	// SkippedDirlinks are entries with no directory in the source tree
	SkippedDirlinks []string `json:"skipped_dirlinks,omitempty"`
	// SkippedLinks are extra links whose source does not exist
	SkippedLinks []types.ExtraLink `json:"skipped_links,omitempty"`
	// ShadowedLinks are extra links whose target is inside a directory link
	ShadowedLinks []types.ExtraLink `json:"shadowed_links,omitempty"`
	// RefusedLinks are links whose target is inside the source tree or
	// contains it
	RefusedLinks []types.Link `json:"refused_links,omitempty"`
	DryRun       bool         `json:"dry_run,omitempty"`
}

// Installer links a source tree into a destination root
type Installer struct {
	fs       types.FS
	opts     Options
	reporter Reporter
	logger   zerolog.Logger
}

// plan is the ordered list of links for a run plus what was left out
type plan struct {
	source          string
	dest            string
	links           []types.Link
	droppedDirlinks []string
	skippedDirlinks []string
	skippedLinks    []types.ExtraLink
	shadowedLinks   []types.ExtraLink
	refusedLinks    []types.Link
}

// add appends link unless replacing its target would remove part of the
// source tree: a target inside the source tree, or one of its ancestors.
func (p *plan) add(link types.Link, logger zerolog.Logger) bool {
	if overlaps(link.Target, p.source) {
		logger.Warn().Str("target", link.Target).Str("kind", string(link.Kind)).
			Msg("Link target overlaps the source tree, not linking")
		p.refusedLinks = append(p.refusedLinks, link)
		return false
	}
	p.links = append(p.links, link)
	return true
}

// New creates an Installer over fsys
func New(fsys types.FS, opts Options) *Installer {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Installer{
		fs:       fsys,
		opts:     opts,
		reporter: reporter,
		logger:   logging.GetLogger("installer"),
	}
}

// Plan returns the links a run would apply, in order, without touching
// the destination
func (i *Installer) Plan() ([]types.Link, error) {
	p, err := i.plan()
	if err != nil {
		return nil, err
	}
	return p.links, nil
}

// Install applies every planned link. It stops at the first failure and
// returns the actions taken so far along with the error.
func (i *Installer) Install() (*Result, error) {
	done := logging.LogOperationStart(i.logger, "install")
	defer done()

	p, err := i.plan()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Actions:         make([]types.Action, 0, len(p.links)),
		DroppedDirlinks: p.droppedDirlinks,
		SkippedDirlinks: p.skippedDirlinks,
		SkippedLinks:    p.skippedLinks,
		ShadowedLinks:   p.shadowedLinks,
		RefusedLinks:    p.refusedLinks,
		DryRun:          i.opts.DryRun,
	}

	if i.opts.DryRun {
		i.reporter.DryRunBanner()
	}
	for _, d := range p.droppedDirlinks {
		i.reporter.Warning("ignoring dirlinks entry %q: invalid or nested under another entry", d)
	}
	for _, l := range p.skippedLinks {
		i.reporter.Skipped("skipping %s: source %s does not exist", l.Target, l.Source)
	}
	for _, l := range p.shadowedLinks {
		i.reporter.Warning("ignoring link %s: target is inside a directory link", l.Target)
	}
	for _, l := range p.refusedLinks {
		i.reporter.Warning("refusing to link %s: it overlaps the source tree %s", l.Target, p.source)
	}

	lnk := linker.New(i.fs, linker.WithReporter(i.reporter), linker.WithDryRun(i.opts.DryRun))
	for _, link := range p.links {
		if err := i.unlinkAncestors(link.Target, p.source, p.dest); err != nil {
			i.logger.Error().Err(err).Str("target", link.Target).Msg("Install aborted")
			return result, err
		}
		action, err := lnk.Link(link)
		if err != nil {
			i.logger.Error().Err(err).Str("target", link.Target).Msg("Install aborted")
			return result, err
		}
		result.Actions = append(result.Actions, action)
	}

	i.logger.Info().
		Int("links", len(result.Actions)).
		Bool("dryRun", i.opts.DryRun).
		Msg("Install complete")
	i.reporter.Done()

	return result, nil
}

// Status classifies the destination of every planned link
func (i *Installer) Status() ([]types.LinkStatus, error) {
	p, err := i.plan()
	if err != nil {
		return nil, err
	}

	statuses := make([]types.LinkStatus, 0, len(p.links))
	for _, link := range p.links {
		st, err := i.inspect(link)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (i *Installer) inspect(link types.Link) (types.LinkStatus, error) {
	st := types.LinkStatus{Link: link}

	info, err := i.fs.Lstat(link.Target)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		st.State = types.StateMissing
		return st, nil
	case err != nil:
		return st, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", link.Target).
			WithDetail("target", link.Target)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		st.State = types.StateConflict
		return st, nil
	}

	current, err := i.fs.Readlink(link.Target)
	if err != nil {
		return st, errors.Wrapf(err, errors.ErrFileAccess, "failed to read symlink %s", link.Target).
			WithDetail("target", link.Target)
	}
	resolved := current
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(link.Target), resolved)
	}

	if filepath.Clean(resolved) == filepath.Clean(link.Source) {
		st.State = types.StateLinked
	} else {
		st.State = types.StateWrongTarget
		st.Current = current
	}
	return st, nil
}

func (i *Installer) plan() (*plan, error) {
	source, dest, err := i.roots()
	if err != nil {
		return nil, err
	}
	logger := i.logger.With().Str("source", source).Str("dest", dest).Logger()

	p := &plan{source: source, dest: dest}

	// 1. Directory links
	listed, err := dirlinks.Load(i.fs, i.opts.DirlinksFile)
	if err != nil {
		return nil, err
	}
	dirs, dropped := dirlinks.Normalize(listed)
	p.droppedDirlinks = dropped

	var linked []string
	for _, d := range dirs {
		src := filepath.Join(source, d)
		info, err := i.fs.Lstat(src)
		if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", src).
				WithDetail("source", src)
		}
		if err != nil || !info.IsDir() || info.Mode()&fs.ModeSymlink != 0 {
			logger.Debug().Str("dir", d).Msg("No directory in source tree, not linking")
			p.skippedDirlinks = append(p.skippedDirlinks, d)
			continue
		}
		link := types.Link{
			Kind:   types.LinkDir,
			Source: src,
			Target: filepath.Join(dest, d),
			Rel:    d,
		}
		if p.add(link, logger) {
			linked = append(linked, d)
		}
	}

	// 2. Files outside the directory links
	files, err := Enumerate(i.fs, source)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		rel, err := filepath.Rel(source, file)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to relativize %s", file)
		}
		if d, ok := dirlinks.Covering(rel, dirs); ok {
			logger.Trace().Str("file", rel).Str("dirlink", d).Msg("Covered by directory link")
			continue
		}
		p.add(types.Link{
			Kind:   types.LinkFile,
			Source: file,
			Target: filepath.Join(dest, rel),
			Rel:    rel,
		}, logger)
	}

	// 3. Extra links
	for _, extra := range i.opts.ExtraLinks {
		src := paths.ResolveSource(extra.Source, source, dest)
		if _, err := i.fs.Lstat(src); err != nil {
			if !stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", src).
					WithDetail("source", src)
			}
			logger.Debug().Str("source", src).Msg("Extra link source missing, skipping")
			p.skippedLinks = append(p.skippedLinks, extra)
			continue
		}

		link := types.Link{
			Kind:   types.LinkExtra,
			Source: src,
			Target: paths.ResolveTarget(extra.Target, dest),
		}
		if rel, err := filepath.Rel(dest, link.Target); err == nil {
			if d, ok := dirlinks.Covering(rel, linked); ok {
				logger.Warn().Str("target", link.Target).Str("dirlink", d).Msg("Extra link target is inside a directory link")
				p.shadowedLinks = append(p.shadowedLinks, extra)
				continue
			}
		}
		if rel, err := filepath.Rel(source, src); err == nil && !escapes(rel) {
			link.Rel = rel
		}
		p.add(link, logger)
	}

	logger.Debug().
		Int("links", len(p.links)).
		Int("dirlinks", len(dirs)).
		Int("dropped", len(p.droppedDirlinks)).
		Int("refused", len(p.refusedLinks)).
		Msg("Plan ready")

	return p, nil
}

// unlinkAncestors removes a symlink into the source tree found between
// dest and target's parent. It is left over from a directory link that is
// no longer listed, and linking through it would replace files inside the
// source tree. Symlinks pointing anywhere else are kept.
func (i *Installer) unlinkAncestors(target, source, dest string) error {
	rel, err := filepath.Rel(dest, filepath.Dir(target))
	if err != nil || rel == "." || escapes(rel) {
		return nil
	}

	dir := dest
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		dir = filepath.Join(dir, part)
		info, err := i.fs.Lstat(dir)
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", dir).
				WithDetail("target", target)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		if !i.pointsInto(dir, source) {
			return nil
		}

		i.logger.Debug().Str("dir", dir).Str("target", target).Msg("Removing symlinked parent")
		i.reporter.Removing(dir, types.ExistingSymlink, i.opts.DryRun)
		if i.opts.DryRun {
			return nil
		}
		if err := i.fs.Remove(dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove symlinked parent %s", dir).
				WithDetail("target", target)
		}
		return nil
	}
	return nil
}

func (i *Installer) pointsInto(link, root string) bool {
	dest, err := i.fs.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	rel, err := filepath.Rel(root, dest)
	return err == nil && !escapes(rel)
}

// roots validates and returns the absolute source and destination roots
func (i *Installer) roots() (string, string, error) {
	if i.opts.SourceRoot == "" || i.opts.DestRoot == "" {
		return "", "", errors.New(errors.ErrInvalidInput, "source and destination roots are required")
	}

	source, err := filepath.Abs(i.opts.SourceRoot)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", i.opts.SourceRoot)
	}
	dest, err := filepath.Abs(i.opts.DestRoot)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", i.opts.DestRoot)
	}

	info, err := i.fs.Stat(source)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", "", errors.Wrapf(err, errors.ErrInvalidInput, "source tree %s does not exist", source).
				WithDetail("source", source)
		}
		return "", "", errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect source tree %s", source).
			WithDetail("source", source)
	}
	if !info.IsDir() {
		return "", "", errors.Newf(errors.ErrInvalidInput, "source tree %s is not a directory", source).
			WithDetail("source", source)
	}

	// linking a root into itself would delete the files being linked
	if rel, err := filepath.Rel(source, dest); err == nil && !escapes(rel) {
		return "", "", errors.Newf(errors.ErrInvalidInput, "destination %s is inside the source tree %s", dest, source).
			WithDetail("source", source).
			WithDetail("dest", dest)
	}

	return source, dest, nil
}

// overlaps reports whether target is root, lies inside it, or contains it
func overlaps(target, root string) bool {
	if rel, err := filepath.Rel(root, target); err == nil && !escapes(rel) {
		return true
	}
	rel, err := filepath.Rel(target, root)
	return err == nil && !escapes(rel)
}

// escapes reports whether a filepath.Rel result leaves its base
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type nopReporter struct{}

func (nopReporter) Removing(string, types.Existing, bool) {}
func (nopReporter) Linking(types.Link, bool)              {}
func (nopReporter) Skipped(string, ...interface{})        {}
func (nopReporter) Warning(string, ...interface{})        {}
func (nopReporter) DryRunBanner()                         {}
func (nopReporter) Done()                                 {}
