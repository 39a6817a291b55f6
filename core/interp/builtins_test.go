package interp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/vos"
	"github.com/josephlewis42/treesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	vostest.RequirePrograms(t, "sh")
	host, _ := vostest.NewHostOS()

	cases := map[string]struct {
		name     string
		expected Class
	}{
		"exit":     {"exit", ClassExit},
		"cd":       {"cd", ClassCd},
		"pwd":      {"pwd", ClassPwd},
		"external": {"sh", ClassExternal},
		"unknown":  {"no-such-program-treesh-test", ClassUnknown},
		"case":     {"PWD", ClassUnknown},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			class, path, err := Classify(host, tc.name)
			assert.Equal(t, tc.expected, class)

			switch tc.expected {
			case ClassExternal:
				assert.NoError(t, err)
				assert.Equal(t, "sh", filepath.Base(path))
			case ClassUnknown:
				assert.True(t, errors.Is(err, vos.ErrNotFound), "got %v", err)
				assert.Empty(t, path)
			default:
				assert.NoError(t, err)
				assert.Empty(t, path)
			}
		})
	}
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "external", ClassExternal.String())
	assert.Equal(t, "unknown", ClassUnknown.String())
	assert.Equal(t, "class(9)", Class(9).String())
}

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "exit", "pwd"}, BuiltinNames())

	for _, name := range BuiltinNames() {
		b := AllBuiltins[name]
		assert.Equal(t, name, b.Class.String())
		assert.NotEmpty(t, b.Use)
		assert.NotEmpty(t, b.Short)
	}
}

func TestAtoi(t *testing.T) {
	cases := map[string]int{
		"7":        7,
		"":         0,
		"abc":      0,
		"12abc":    12,
		"-3":       -3,
		"+4":       4,
		"  5":      5,
		"--5":      0,
		"0x10":     0,
		"3.9":      3,
		"00042":    42,
		"- 1":      0,
		"\t\n255 ": 255,
	}

	for in, expected := range cases {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			assert.Equal(t, expected, atoi(in))
		})
	}
}

func TestExit(t *testing.T) {
	cases := map[string]struct {
		argv     []string
		expected int
	}{
		"bare":      {[]string{"exit"}, 0},
		"code":      {[]string{"exit", "7"}, 7},
		"not-digit": {[]string{"exit", "abc"}, 0},
		"prefix":    {[]string{"exit", "12abc"}, 12},
		"extra":     {[]string{"exit", "2", "3"}, 2},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			in, _, streams, _ := newTestInterpreter(t)

			err := in.Run(ast.Seq(command(tc.argv...), command("echo", "unreachable")))

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, tc.expected, exitErr.Code)
			assert.True(t, IsTerminal(err))
			assert.Empty(t, streams.Stdout.String())
		})
	}
}

func TestCd(t *testing.T) {
	root := vostest.TempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real", "child"), 0700))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0600))

	cases := map[string]struct {
		argv   []string
		wd     string
		stderr string
		status int
	}{
		"absolute":   {argv: []string{"cd", filepath.Join(root, "real")}, wd: filepath.Join(root, "real")},
		"relative":   {argv: []string{"cd", "real/child"}, wd: filepath.Join(root, "real", "child")},
		"parent":     {argv: []string{"cd", ".."}, wd: filepath.Dir(root)},
		"symlink":    {argv: []string{"cd", "link"}, wd: filepath.Join(root, "real")},
		"missing":    {argv: []string{"cd", "nope"}, wd: root, stderr: "cd: chdir nope: no such file or directory\n", status: 1},
		"not-dir":    {argv: []string{"cd", "file"}, wd: root, stderr: "cd: chdir file: not a directory\n", status: 1},
		"no-operand": {argv: []string{"cd"}, wd: root, stderr: "cd: missing operand\n", status: 1},
		"too-many":   {argv: []string{"cd", "real", "link"}, wd: root, stderr: "cd: too many arguments\n", status: 1},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			vostest.Chdir(t, root)
			in, _, streams, rec := newTestInterpreter(t)

			require.NoError(t, in.Run(ast.Seq(command(tc.argv...), command("pwd"))))
			assert.Equal(t, tc.wd+"\n", streams.Stdout.String())
			assert.Equal(t, tc.stderr, streams.Stderr.String())

			events := rec.named("command")
			require.Len(t, events, 2)
			assert.Equal(t, tc.status, events[0]["status"])
			assert.Equal(t, 0, in.Status())
		})
	}
}

func TestCd_help(t *testing.T) {
	in, _, streams, _ := newTestInterpreter(t)

	require.NoError(t, in.Run(command("cd", "--help")))
	assert.Contains(t, streams.Stderr.String(), "usage: cd DIR\n")
	assert.Equal(t, 0, in.Status())

	streams.Stderr.Reset()
	require.NoError(t, in.Run(command("cd", "-x", "dir")))
	assert.Contains(t, streams.Stderr.String(), "usage: cd DIR\n")
	assert.Equal(t, 1, in.Status())
}

func TestPwd(t *testing.T) {
	root := vostest.TempDir(t)
	vostest.Chdir(t, root)

	in, _, streams, _ := newTestInterpreter(t)

	require.NoError(t, in.Run(command("pwd")))
	require.NoError(t, in.Run(command("pwd", "ignored", "operands")))
	assert.Equal(t, root+"\n"+root+"\n", streams.Stdout.String())

	streams.Stdout.Reset()
	require.NoError(t, in.Run(command("pwd", "--help")))
	assert.Equal(t, "usage: pwd\nPrint the working directory.\n", streams.Stdout.String())
}

func TestCd_stagesArePrivate(t *testing.T) {
	root := vostest.TempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0700))
	vostest.Chdir(t, root)

	in, _, streams, _ := newTestInterpreter(t)

	node := ast.Seq(
		pipe(command("cd", "real"), command("cat")),
		pipe(command("pwd"), command("cat")),
		command("pwd"),
	)
	require.NoError(t, in.Run(node))

	assert.Equal(t, root+"\n"+root+"\n", streams.Stdout.String())
	assert.Empty(t, streams.Stderr.String())
}
