package realpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hostOS struct {
	wd string
}

func (h hostOS) Getwd() (string, error) { return h.wd, nil }
func (hostOS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }
func (hostOS) Readlink(name string) (string, error) { return os.Readlink(name) }

func TestRealpath(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0700))
	require.NoError(t, os.Symlink(filepath.Join(root, "a", "b"), filepath.Join(root, "abs-link")))
	require.NoError(t, os.Symlink(filepath.Join("a", "b"), filepath.Join(root, "rel-link")))
	require.NoError(t, os.Symlink("loop", filepath.Join(root, "loop")))

	fsys := hostOS{wd: root}

	cases := map[string]struct {
		in       string
		expected string
	}{
		"empty":          {"", root},
		"relative":       {"a/b", filepath.Join(root, "a", "b")},
		"dots":           {"./a/./b/../b", filepath.Join(root, "a", "b")},
		"absolute-link":  {"abs-link", filepath.Join(root, "a", "b")},
		"relative-link":  {"rel-link", filepath.Join(root, "a", "b")},
		"parent-of-link": {"rel-link/..", filepath.Join(root, "a")},
		"root-parent":    {"/..", "/"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := Realpath(fsys, tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := Realpath(fsys, "does-not-exist")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("loop", func(t *testing.T) {
		_, err := Realpath(fsys, "loop")
		assert.ErrorIs(t, err, errTooManyLinks)
	})
}
