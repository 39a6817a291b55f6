package vos_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/treesh/core/vos"
	"github.com/josephlewis42/treesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, path, body string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), mode))
}

func TestLookPath(t *testing.T) {
	dir := vostest.TempDir(t)
	binDir := filepath.Join(dir, "bin")
	require.NoError(t, os.Mkdir(binDir, 0700))
	writeExecutable(t, filepath.Join(binDir, "tool"), "#!/bin/sh\n", 0700)
	writeExecutable(t, filepath.Join(binDir, "data"), "not a program", 0600)

	host, _ := vostest.NewHostOS()
	host.SetSearchPath(binDir)

	cases := map[string]struct {
		file     string
		expected string
		err      error
	}{
		"on-path":        {"tool", filepath.Join(binDir, "tool"), nil},
		"missing":        {"nope", "", vos.ErrNotFound},
		"not-executable": {"data", "", fs.ErrPermission},
		"with-slash":     {filepath.Join(binDir, "tool"), filepath.Join(binDir, "tool"), nil},
		"slash-missing":  {filepath.Join(binDir, "nope"), "", vos.ErrNotFound},
		"directory":      {binDir, "", fs.ErrPermission},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := vos.LookPath(host, tc.file)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "got error %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestLookPath_emptyElementIsCurrentDir(t *testing.T) {
	dir := vostest.TempDir(t)
	writeExecutable(t, filepath.Join(dir, "local"), "#!/bin/sh\n", 0700)

	host, _ := vostest.NewHostOS()
	host.SetSearchPath(":/nonexistent")

	sub := host.Subshell(nil)
	require.NoError(t, sub.Chdir(dir))

	actual, err := vos.LookPath(sub, "local")
	assert.NoError(t, err)
	assert.Equal(t, "./local", actual)
}

func TestHostOS_environ(t *testing.T) {
	host, _ := vostest.NewHostOS()
	host.SetSearchPath("/opt/only")

	assert.Equal(t, "/opt/only", host.Getenv(vos.EnvPath))
	assert.Contains(t, host.Environ(), "PATH=/opt/only")

	host.SetSearchPath("")
	assert.Equal(t, "/opt/only", host.Getenv(vos.EnvPath))
}

func TestHostOS_openDiscard(t *testing.T) {
	host, _ := vostest.NewHostOS()

	fd, err := host.OpenDiscard()
	require.NoError(t, err)
	defer fd.Close()

	n, err := fd.Write([]byte("dropped"))
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	host.DiscardSink = filepath.Join(vostest.TempDir(t), "missing", "sink")
	_, err = host.OpenDiscard()
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStartProcess(t *testing.T) {
	vostest.RequirePrograms(t, "sh")
	shell, err := vos.LookPath(vos.NewHostOS(nil), "sh")
	require.NoError(t, err)

	host, streams := vostest.NewHostOS()

	t.Run("exit-status", func(t *testing.T) {
		proc, err := host.StartProcess(shell, []string{"sh", "-c", "exit 3"}, &vos.ProcAttr{Files: host})
		require.NoError(t, err)
		assert.NotZero(t, proc.Pid)

		status, err := proc.Wait()
		assert.NoError(t, err)
		assert.Equal(t, 3, status)
	})

	t.Run("signaled", func(t *testing.T) {
		proc, err := host.StartProcess(shell, []string{"sh", "-c", "kill -9 $$"}, &vos.ProcAttr{Files: host})
		require.NoError(t, err)

		status, err := proc.Wait()
		assert.NoError(t, err)
		assert.Equal(t, 128+9, status)
	})

	t.Run("captured-output", func(t *testing.T) {
		streams.Stdout.Reset()
		proc, err := host.StartProcess(shell, []string{"sh", "-c", "echo out; echo err >&2"}, &vos.ProcAttr{Files: host})
		require.NoError(t, err)

		status, err := proc.Wait()
		assert.NoError(t, err)
		assert.Equal(t, 0, status)
		assert.Equal(t, "out\n", streams.Stdout.String())
		assert.Contains(t, streams.Stderr.String(), "err\n")
	})

	t.Run("null-stdin", func(t *testing.T) {
		var out bytes.Buffer
		files := vos.NewVIOAdapter(nil, &out, nil)
		proc, err := host.StartProcess(shell, []string{"sh", "-c", "cat; echo done"}, &vos.ProcAttr{Files: files})
		require.NoError(t, err)

		status, err := proc.Wait()
		assert.NoError(t, err)
		assert.Equal(t, 0, status)
		assert.Equal(t, "done\n", out.String())
	})

	t.Run("reap", func(t *testing.T) {
		proc, err := host.StartProcess(shell, []string{"sh", "-c", "exit 5"}, &vos.ProcAttr{Files: vos.NewNullIO()})
		require.NoError(t, err)

		done := make(chan int)
		proc.Reap(func(status int, err error) {
			assert.NoError(t, err)
			done <- status
		})
		assert.Equal(t, 5, <-done)
	})

	t.Run("missing-program", func(t *testing.T) {
		_, err := host.StartProcess("/nonexistent/program", nil, nil)
		assert.Error(t, err)
	})
}

func TestSubshell(t *testing.T) {
	vostest.RequirePrograms(t, "sh")
	shell, err := vos.LookPath(vos.NewHostOS(nil), "sh")
	require.NoError(t, err)

	root := vostest.TempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real", "child"), 0700))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0600))
	vostest.Chdir(t, root)

	host, _ := vostest.NewHostOS()
	var out bytes.Buffer
	sub := host.Subshell(vos.NewVIOAdapter(nil, &out, nil))

	t.Run("chdir-is-private", func(t *testing.T) {
		require.NoError(t, sub.Chdir("link/child"))

		wd, err := sub.Getwd()
		assert.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "real", "child"), wd)

		hostWd, err := host.Getwd()
		assert.NoError(t, err)
		assert.Equal(t, root, hostWd)
	})

	t.Run("chdir-errors", func(t *testing.T) {
		err := sub.Chdir(filepath.Join(root, "missing"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.True(t, strings.HasPrefix(err.Error(), "chdir "), err.Error())

		err = sub.Chdir(filepath.Join(root, "file"))
		assert.Error(t, err)

		wd, _ := sub.Getwd()
		assert.Equal(t, filepath.Join(root, "real", "child"), wd)
	})

	t.Run("children-start-in-private-dir", func(t *testing.T) {
		proc, err := sub.StartProcess(shell, []string{"sh", "-c", "pwd -P"}, &vos.ProcAttr{Files: sub})
		require.NoError(t, err)
		_, err = proc.Wait()
		assert.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "real", "child")+"\n", out.String())
	})

	t.Run("relative-stat", func(t *testing.T) {
		_, err := sub.Stat(filepath.Join("..", "child"))
		assert.NoError(t, err)
	})

	t.Run("nested", func(t *testing.T) {
		nested := sub.Subshell(nil)
		require.NoError(t, nested.Chdir(".."))
		wd, _ := nested.Getwd()
		assert.Equal(t, filepath.Join(root, "real"), wd)

		parentWd, _ := sub.Getwd()
		assert.Equal(t, filepath.Join(root, "real", "child"), parentWd)
	})
}

func TestFlush(t *testing.T) {
	var buf bytes.Buffer
	w := &flushRecorder{Writer: &buf}

	files := vos.NewVIOAdapter(nil, w, nil)
	assert.NoError(t, vos.Flush(files.Stdout()))
	assert.Equal(t, 1, w.flushes)

	assert.NoError(t, vos.Flush(io.Discard))
}

type flushRecorder struct {
	io.Writer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}
