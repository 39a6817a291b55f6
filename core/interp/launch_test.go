package interp

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// failingOS refuses to start any process.
type failingOS struct {
	vos.VOS

	err error
}

func (f *failingOS) StartProcess(name string, argv []string, attr *vos.ProcAttr) (*vos.Process, error) {
	return nil, &fs.PathError{Op: "fork/exec", Path: name, Err: f.err}
}

func TestExecFailure(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		local  bool
	}{
		"exec-format":  {unix.ENOEXEC, 126, true},
		"access":       {unix.EACCES, 126, true},
		"text-busy":    {unix.ETXTBSY, 126, true},
		"is-directory": {unix.EISDIR, 126, true},
		"vanished":     {unix.ENOENT, 127, true},
		"not-dir":      {unix.ENOTDIR, 127, true},
		"no-errno":     {errors.New("exec: no command"), 126, true},
		"fork-again":   {unix.EAGAIN, 0, false},
		"fork-memory":  {unix.ENOMEM, 0, false},
		"fd-exhausted": {unix.EMFILE, 0, false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			err := &fs.PathError{Op: "fork/exec", Path: "/bin/prog", Err: tc.err}

			status, cause, local := execFailure(err)
			assert.Equal(t, tc.local, local)
			assert.Equal(t, tc.status, status)
			if local {
				assert.NotContains(t, cause.Error(), "fork/exec")
			}
		})
	}
}

func TestStartFailure_forkIsFatal(t *testing.T) {
	cases := map[string]ast.Node{
		"foreground": command("echo", "first"),
		"pipeline":   pipe(command("echo", "first"), command("cat")),
		"detach":     detach("echo", "first"),
	}

	for tn, node := range cases {
		t.Run(tn, func(t *testing.T) {
			in, host, streams, rec := newTestInterpreter(t)
			in.VirtualOS = &failingOS{VOS: host, err: unix.EAGAIN}

			err := in.Run(ast.Seq(node, command("echo", "next")))

			var fatal *FatalError
			require.True(t, errors.As(err, &fatal), "got %v", err)
			assert.Equal(t, "start", fatal.Op)
			assert.ErrorIs(t, err, unix.EAGAIN)
			assert.Empty(t, streams.Stdout.String())
			assert.Len(t, rec.named(logger.EventFatal), 1)
		})
	}
}

func TestStartFailure_execIsLocal(t *testing.T) {
	in, host, streams, _ := newTestInterpreter(t)
	in.VirtualOS = &failingOS{VOS: host, err: unix.ENOENT}

	require.NoError(t, in.Run(ast.Seq(command("echo", "first"), command("sh", "-c", "true"))))
	assert.Equal(t, 127, in.Status())
	assert.Contains(t, streams.Stderr.String(), "echo: no such file or directory\n")
	assert.Contains(t, streams.Stderr.String(), "sh: no such file or directory\n")
}
