// pkg/dirlinks/dirlinks_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryFS
// PURPOSE: Test directory-link list parsing and path classification

package dirlinks_test

import (
	"os"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/dirlinks"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
		{
			name: "mixed_blank_comment_and_entries",
			input: `.config/karabiner

# comment line, ignored
   .oh-my-zsh/custom
	# indented comment
.local/bin
`,
			want: []string{".config/karabiner", ".oh-my-zsh/custom", ".local/bin"},
		},
		{
			name:  "trailing_slash_is_cleaned",
			input: ".config/nvim/\n",
			want:  []string{".config/nvim"},
		},
		{
			name:  "crlf_line_endings",
			input: ".config/a\r\n.config/b\r\n",
			want:  []string{".config/a", ".config/b"},
		},
		{
			name:  "order_preserved",
			input: "z\na\nm",
			want:  []string{"z", "a", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dirlinks.Parse([]byte(tt.input)))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing_file_is_empty", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()

		dirs, err := dirlinks.Load(fsys, "/repo/dirlinks")
		require.NoError(t, err)
		assert.NotNil(t, dirs)
		assert.Empty(t, dirs)
	})

	t.Run("reads_entries", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		require.NoError(t, fsys.WriteFile("/repo/dirlinks", []byte(".config/karabiner\n# x\n\n.oh-my-zsh/custom\n"), 0644))

		dirs, err := dirlinks.Load(fsys, "/repo/dirlinks")
		require.NoError(t, err)
		assert.Equal(t, []string{".config/karabiner", ".oh-my-zsh/custom"}, dirs)
	})

	t.Run("unreadable_file_is_an_error", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		require.NoError(t, fsys.WriteFile("/repo/dirlinks", []byte(".config\n"), 0644))
		fsys.WithOpError("read", "/repo/dirlinks", os.ErrPermission)

		_, err := dirlinks.Load(fsys, "/repo/dirlinks")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestExcluded(t *testing.T) {
	dirs := []string{".config/karabiner", ".oh-my-zsh/custom", ".config"}

	tests := []struct {
		rel  string
		want bool
	}{
		{".config/karabiner/karabiner.json", true},
		{".config/karabiner/assets/complex/x.json", true},
		{".oh-my-zsh/custom/themes/me.zsh-theme", true},
		{".config/git/config", true},
		{".configX/a", false},
		{".config", false},
		{".gitconfig", false},
		{".oh-my-zsh/custom.zsh", false},
		{".oh-my-zsh/plugins/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, dirlinks.Excluded(tt.rel, dirs))
		})
	}

	t.Run("empty_set_excludes_nothing", func(t *testing.T) {
		assert.False(t, dirlinks.Excluded(".config/karabiner/karabiner.json", nil))
	})
}

func TestCovering(t *testing.T) {
	d, ok := dirlinks.Covering(".config/karabiner/karabiner.json", []string{".config/nvim", ".config/karabiner"})
	assert.True(t, ok)
	assert.Equal(t, ".config/karabiner", d)

	_, ok = dirlinks.Covering(".zshrc", []string{".config/nvim"})
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	kept, dropped := dirlinks.Normalize([]string{
		".config/karabiner",
		".config",
		".oh-my-zsh/custom",
		".oh-my-zsh/custom",
		".",
		"../outside",
		"/etc",
		".config/nvim",
	})

	assert.Equal(t, []string{".config", ".oh-my-zsh/custom"}, kept)
	assert.Equal(t, []string{".config/karabiner", ".", "../outside", "/etc", ".config/nvim"}, dropped)
}

func TestValid(t *testing.T) {
	assert.True(t, dirlinks.Valid(".config"))
	assert.True(t, dirlinks.Valid("..hidden"))
	assert.False(t, dirlinks.Valid(""))
	assert.False(t, dirlinks.Valid("."))
	assert.False(t, dirlinks.Valid(".."))
	assert.False(t, dirlinks.Valid("../x"))
	assert.False(t, dirlinks.Valid("/abs"))
}
