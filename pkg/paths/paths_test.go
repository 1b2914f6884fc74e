package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("relative_settings_are_under_root", func(t *testing.T) {
		p, err := New("/repo", "/home/me", "home", "dirlinks", false)
		require.NoError(t, err)

		assert.Equal(t, "/repo", p.Root())
		assert.Equal(t, "/home/me", p.Home())
		assert.Equal(t, "/repo/home", p.SourceRoot())
		assert.Equal(t, "/repo/dirlinks", p.DirlinksFile())
		assert.False(t, p.UsedFallback())
	})

	t.Run("absolute_and_tilde_settings", func(t *testing.T) {
		p, err := New("~/dotfiles", "/home/me", "/srv/overlay", "~/dirlinks.txt", true)
		require.NoError(t, err)

		assert.Equal(t, "/home/me/dotfiles", p.Root())
		assert.Equal(t, "/srv/overlay", p.SourceRoot())
		assert.Equal(t, "/home/me/dirlinks.txt", p.DirlinksFile())
		assert.True(t, p.UsedFallback())
	})

	t.Run("empty_inputs", func(t *testing.T) {
		_, err := New("", "/home/me", "home", "dirlinks", false)
		assert.Error(t, err)
		_, err = New("/repo", "", "home", "dirlinks", false)
		assert.Error(t, err)
	})
}

func TestFindRoot(t *testing.T) {
	t.Run("explicit_wins", func(t *testing.T) {
		t.Setenv(EnvRoot, "/env/root")
		root, fallback, err := FindRoot("/flag/root")
		require.NoError(t, err)
		assert.Equal(t, "/flag/root", root)
		assert.False(t, fallback)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvRoot, "/env/root")
		root, fallback, err := FindRoot("")
		require.NoError(t, err)
		assert.Equal(t, "/env/root", root)
		assert.False(t, fallback)
	})

	t.Run("git_or_cwd", func(t *testing.T) {
		t.Setenv(EnvRoot, "")
		root, _, err := FindRoot("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(root), "root should be absolute: %s", root)
	})

	t.Run("outside_git_falls_back_to_cwd", func(t *testing.T) {
		dir, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		t.Setenv(EnvRoot, "")
		t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		root, fallback, err := FindRoot("")
		require.NoError(t, err)
		assert.Equal(t, dir, root)
		assert.True(t, fallback)
	})
}

func TestHomeDir(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		t.Setenv(EnvHome, "/home/me")
		home, err := HomeDir("~/sandbox")
		require.NoError(t, err)
		assert.Equal(t, "/home/me/sandbox", home)
	})

	t.Run("configured_with_env_var", func(t *testing.T) {
		t.Setenv("SANDBOX", "/tmp/sb")
		home, err := HomeDir("$SANDBOX/home")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/sb/home", home)
	})

	t.Run("HOME", func(t *testing.T) {
		t.Setenv(EnvHome, "/home/other")
		home, err := HomeDir("")
		require.NoError(t, err)
		assert.Equal(t, "/home/other", home)
	})
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/me"},
		{"~/", "/home/me"},
		{"~/.config", "/home/me/.config"},
		{"~bob/.config", "~bob/.config"},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in, "/home/me"))
		})
	}
}

func TestResolveTarget(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/me/.xdg")

	tests := []struct {
		in   string
		want string
	}{
		{".claude/settings.json", "/home/me/.claude/settings.json"},
		{"~/.codex/config.toml", "/home/me/.codex/config.toml"},
		{"/etc/../opt/tool.conf", "/opt/tool.conf"},
		{"$XDG_CONFIG_HOME/tool/config", "/home/me/.xdg/tool/config"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTarget(tt.in, "/home/me"))
		})
	}
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, "/repo/home/.claude/CLAUDE.md", ResolveSource(".claude/CLAUDE.md", "/repo/home", "/home/me"))
	assert.Equal(t, "/opt/shared/x", ResolveSource("/opt/shared/x", "/repo/home", "/home/me"))
	assert.Equal(t, "/home/me/x", ResolveSource("~/x", "/repo/home", "/home/me"))
}

func TestHomeDirFallsBackToXDG(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, err := HomeDir("")
	if err != nil {
		// xdg could not determine a home either
		return
	}
	assert.NotEmpty(t, home)
}
