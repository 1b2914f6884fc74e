package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotlink/pkg/types"
)

// Reporter writes the installer's progress log: one line per processed
// path and a final "Done!". The lines are for people, not parsers.
type Reporter struct {
	out    io.Writer
	styled bool
}

// NewReporter creates a reporter writing to out. FormatAuto is resolved
// against out; FormatJSON is treated as plain text.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		styled: Resolve(format, out) == FormatTerminal,
	}
}

func (r *Reporter) render(style, s string) string {
	if !r.styled {
		return s
	}
	return GetStyle(style).Render(s)
}

func (r *Reporter) line(glyph, glyphStyle, msg string) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(glyphStyle, glyph), msg)
}

// Removing reports the removal of whatever was at target
func (r *Reporter) Removing(target string, existing types.Existing, dryRun bool) {
	verb := "removing"
	if dryRun {
		verb = "would remove"
	}
	r.line("-", "Warning", fmt.Sprintf("%s existing %s %s", verb, describe(existing), r.render("FilePath", target)))
}

// Linking reports the creation of link
func (r *Reporter) Linking(link types.Link, dryRun bool) {
	verb := "linked"
	if dryRun {
		verb = "would link"
	}
	if link.Kind == types.LinkDir {
		verb += " directory"
	}
	r.line("✓", "Success", fmt.Sprintf("%s %s -> %s",
		verb, r.render("FilePath", link.Target), r.render("Muted", link.Source)))
}

// Skipped reports an entry that was deliberately left alone
func (r *Reporter) Skipped(format string, args ...interface{}) {
	r.line("·", "Muted", r.render("Muted", fmt.Sprintf(format, args...)))
}

// Warning reports a problem that does not stop the run
func (r *Reporter) Warning(format string, args ...interface{}) {
	r.line("⚠", "Warning", fmt.Sprintf(format, args...))
}

// DryRunBanner announces that nothing will be changed
func (r *Reporter) DryRunBanner() {
	fmt.Fprintln(r.out, r.render("DryRunBanner", "Dry run: no changes will be made"))
}

// Done reports the end of a successful run
func (r *Reporter) Done() {
	fmt.Fprintln(r.out, r.render("Success", "Done!"))
}

func describe(existing types.Existing) string {
	switch existing {
	case types.ExistingSymlink:
		return "symlink"
	case types.ExistingDir:
		return "directory"
	default:
		return "file"
	}
}
