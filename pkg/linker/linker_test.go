// pkg/linker/linker_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryFS
// PURPOSE: Test destination replacement for every kind of pre-existing entry

package linker_test

import (
	"os"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/linker"
	"github.com/arthur-debert/dotlink/pkg/testutil"
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	removed []string
	linked  []string
}

func (r *recordingReporter) Removing(target string, existing types.Existing, dryRun bool) {
	r.removed = append(r.removed, string(existing)+":"+target)
}

func (r *recordingReporter) Linking(link types.Link, dryRun bool) {
	r.linked = append(r.linked, link.Target)
}

const (
	source = "/repo/home/.zshrc"
	target = "/home/me/.zshrc"
)

func setup(t *testing.T) *testutil.MemoryFS {
	t.Helper()
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.WriteFile(source, []byte("# zshrc"), 0644))
	require.NoError(t, fsys.MkdirAll("/home/me", 0755))
	return fsys
}

func TestLink_ReplacesEveryKindOfDestination(t *testing.T) {
	tests := []struct {
		name         string
		prepare      func(t *testing.T, fsys *testutil.MemoryFS)
		wantReplaced types.Existing
		wantPrevious string
	}{
		{
			name:         "absent",
			prepare:      func(t *testing.T, fsys *testutil.MemoryFS) {},
			wantReplaced: types.ExistingNone,
		},
		{
			name: "regular_file",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.WriteFile(target, []byte("user content"), 0644))
			},
			wantReplaced: types.ExistingFile,
		},
		{
			name: "real_directory",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.WriteFile(target+"/nested/file", []byte("x"), 0644))
			},
			wantReplaced: types.ExistingDir,
		},
		{
			name: "symlink_to_elsewhere",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.WriteFile("/old/.zshrc", []byte("old"), 0644))
				require.NoError(t, fsys.Symlink("/old/.zshrc", target))
			},
			wantReplaced: types.ExistingSymlink,
			wantPrevious: "/old/.zshrc",
		},
		{
			name: "dangling_symlink",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.Symlink("/gone", target))
			},
			wantReplaced: types.ExistingSymlink,
			wantPrevious: "/gone",
		},
		{
			name: "symlink_to_directory",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.WriteFile("/other/dir/keep", []byte("keep"), 0644))
				require.NoError(t, fsys.Symlink("/other/dir", target))
			},
			wantReplaced: types.ExistingSymlink,
			wantPrevious: "/other/dir",
		},
		{
			name: "already_correct",
			prepare: func(t *testing.T, fsys *testutil.MemoryFS) {
				require.NoError(t, fsys.Symlink(source, target))
			},
			wantReplaced: types.ExistingSymlink,
			wantPrevious: source,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := setup(t)
			tt.prepare(t, fsys)
			reporter := &recordingReporter{}

			action, err := linker.New(fsys, linker.WithReporter(reporter)).
				Link(types.Link{Kind: types.LinkFile, Source: source, Target: target})
			require.NoError(t, err)

			testutil.AssertSymlink(t, fsys, target, source)
			assert.Equal(t, tt.wantReplaced, action.Replaced)
			assert.Equal(t, tt.wantPrevious, action.PreviousTarget)
			assert.Equal(t, []string{target}, reporter.linked)
			if tt.wantReplaced == types.ExistingNone {
				assert.Empty(t, reporter.removed)
			} else {
				assert.Equal(t, []string{string(tt.wantReplaced) + ":" + target}, reporter.removed)
			}
		})
	}
}

func TestLink_SymlinkToDirectoryKeepsItsTarget(t *testing.T) {
	fsys := setup(t)
	require.NoError(t, fsys.WriteFile("/other/dir/keep", []byte("keep"), 0644))
	require.NoError(t, fsys.Symlink("/other/dir", target))

	_, err := linker.New(fsys).Link(types.Link{Kind: types.LinkFile, Source: source, Target: target})
	require.NoError(t, err)

	testutil.AssertRegularFile(t, fsys, "/other/dir/keep", "keep")
}

func TestLink_CreatesMissingParents(t *testing.T) {
	fsys := setup(t)
	deep := "/home/me/.config/git/config"

	_, err := linker.New(fsys).Link(types.Link{Kind: types.LinkFile, Source: source, Target: deep})
	require.NoError(t, err)

	info, err := fsys.Stat("/home/me/.config/git")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	testutil.AssertSymlink(t, fsys, deep, source)
}

func TestLink_DryRunDoesNotMutate(t *testing.T) {
	fsys := setup(t)
	require.NoError(t, fsys.WriteFile(target, []byte("user content"), 0644))
	_, writesBefore := fsys.Stats()
	reporter := &recordingReporter{}

	action, err := linker.New(fsys, linker.WithDryRun(true), linker.WithReporter(reporter)).
		Link(types.Link{Kind: types.LinkFile, Source: source, Target: "/home/me/new/dir/.zshrc"})
	require.NoError(t, err)
	assert.True(t, action.DryRun)
	assert.Equal(t, types.ExistingNone, action.Replaced)

	action, err = linker.New(fsys, linker.WithDryRun(true), linker.WithReporter(reporter)).
		Link(types.Link{Kind: types.LinkFile, Source: source, Target: target})
	require.NoError(t, err)
	assert.Equal(t, types.ExistingFile, action.Replaced)

	_, writesAfter := fsys.Stats()
	assert.Equal(t, writesBefore, writesAfter)
	testutil.AssertRegularFile(t, fsys, target, "user content")
	testutil.AssertNotExists(t, fsys, "/home/me/new")
	assert.Len(t, reporter.linked, 2)
	assert.Equal(t, []string{"file:" + target}, reporter.removed)
}

func TestLink_Failures(t *testing.T) {
	tests := []struct {
		name     string
		inject   func(fsys *testutil.MemoryFS)
		wantCode errors.ErrorCode
	}{
		{
			name: "parent_not_creatable",
			inject: func(fsys *testutil.MemoryFS) {
				fsys.WithOpError("mkdir", "/home/me", os.ErrPermission)
			},
			wantCode: errors.ErrDirCreate,
		},
		{
			name: "lstat_denied",
			inject: func(fsys *testutil.MemoryFS) {
				fsys.WithOpError("lstat", target, os.ErrPermission)
			},
			wantCode: errors.ErrFileAccess,
		},
		{
			name: "remove_denied",
			inject: func(fsys *testutil.MemoryFS) {
				_ = fsys.WriteFile(target, []byte("x"), 0644)
				fsys.WithOpError("remove", target, os.ErrPermission)
			},
			wantCode: errors.ErrFileRemove,
		},
		{
			name: "symlink_denied",
			inject: func(fsys *testutil.MemoryFS) {
				fsys.WithOpError("symlink", target, os.ErrPermission)
			},
			wantCode: errors.ErrSymlinkCreate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := setup(t)
			tt.inject(fsys)

			_, err := linker.New(fsys).Link(types.Link{Kind: types.LinkFile, Source: source, Target: target})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
			assert.ErrorIs(t, err, os.ErrPermission)
			assert.Equal(t, target, errors.GetErrorDetails(err)["target"])
		})
	}
}
