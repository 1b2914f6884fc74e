package ui_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/arthur-debert/dotlink/pkg/ui"
	"github.com/stretchr/testify/assert"
)

func TestReporter_Text(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewReporter(&buf, ui.FormatText)

	r.Removing("/home/me/.zshrc", types.ExistingFile, false)
	r.Linking(types.Link{Kind: types.LinkFile, Source: "/repo/home/.zshrc", Target: "/home/me/.zshrc"}, false)
	r.Removing("/home/me/.config/karabiner", types.ExistingSymlink, false)
	r.Linking(types.Link{Kind: types.LinkDir, Source: "/repo/home/.config/karabiner", Target: "/home/me/.config/karabiner"}, false)
	r.Skipped("no source for %s", "extra.conf")
	r.Warning("ignoring nested entry %s", ".config/nvim")
	r.Done()

	assert.Equal(t,
		"- removing existing file /home/me/.zshrc\n"+
			"✓ linked /home/me/.zshrc -> /repo/home/.zshrc\n"+
			"- removing existing symlink /home/me/.config/karabiner\n"+
			"✓ linked directory /home/me/.config/karabiner -> /repo/home/.config/karabiner\n"+
			"· no source for extra.conf\n"+
			"⚠ ignoring nested entry .config/nvim\n"+
			"Done!\n",
		buf.String())
}

func TestReporter_DryRun(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewReporter(&buf, ui.FormatAuto)

	r.DryRunBanner()
	r.Removing("/h/.vim", types.ExistingDir, true)
	r.Linking(types.Link{Kind: types.LinkDir, Source: "/r/.vim", Target: "/h/.vim"}, true)

	assert.Equal(t,
		"Dry run: no changes will be made\n"+
			"- would remove existing directory /h/.vim\n"+
			"✓ would link directory /h/.vim -> /r/.vim\n",
		buf.String())
}

func TestReporter_Styled(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewReporter(&buf, ui.FormatTerminal)

	r.Linking(types.Link{Kind: types.LinkFile, Source: "/r/.gitconfig", Target: "/h/.gitconfig"}, false)

	// styling may be stripped by lipgloss when no color profile is
	// detected, but the content is always there
	assert.Contains(t, buf.String(), "/h/.gitconfig")
	assert.Contains(t, buf.String(), "/r/.gitconfig")
}
