package interp

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/treesh/core/vos"
	"golang.org/x/sys/unix"
)

const (
	statusNotExecutable = 126
	statusNotFound      = 127
)

// launch starts the program at path with env's streams and working
// directory and waits for that child to exit. A program that can't be
// executed is reported and turned into a status; only a failure to create
// the process at all is fatal.
func (i *Interpreter) launch(env vos.VOS, path string, argv []string) (int, error) {
	proc, err := env.StartProcess(path, argv, &vos.ProcAttr{
		Env:   env.Environ(),
		Files: env,
	})
	if err != nil {
		return i.startFailed(env, argv[0], err)
	}
	i.Logger.Printf("started %q as pid %d", path, proc.Pid)

	status, err := proc.Wait()
	if err != nil {
		i.diagnose(env, "%s: %v", argv[0], err)
	}
	i.Logger.Printf("pid %d exited with status %d", proc.Pid, status)

	return status, nil
}

// execFailure reports whether err, returned while starting a child, came
// from loading the new program rather than from creating the process. The
// status is the one the child would have exited with.
func execFailure(err error) (status int, cause error, ok bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return statusNotExecutable, err, true
	}

	switch errno {
	case unix.ENOENT, unix.ENOTDIR:
		return statusNotFound, errno, true
	case unix.ENOEXEC, unix.EACCES, unix.EPERM, unix.ETXTBSY, unix.EISDIR,
		unix.ELOOP, unix.ENAMETOOLONG, unix.E2BIG:
		return statusNotExecutable, errno, true
	default:
		return 0, err, false
	}
}

// startFailed handles an error from starting name. Exec failures are
// reported on files and become the returned status, anything else (EAGAIN,
// ENOMEM, descriptor exhaustion) is a FatalError.
func (i *Interpreter) startFailed(files vos.VIO, name string, err error) (int, error) {
	status, cause, ok := execFailure(err)
	if !ok {
		return 0, i.fatal("start", fmt.Errorf("%s: %w", name, err))
	}

	i.diagnose(files, "%s: %v", name, cause)
	return status, nil
}

// notFound reports a name that did not resolve to a builtin or program.
func (i *Interpreter) notFound(files vos.VIO, name string, err error) int {
	switch {
	case errors.Is(err, vos.ErrNotFound):
		i.diagnose(files, "%s: command not found", name)
		return statusNotFound
	case errors.Is(err, fs.ErrPermission):
		i.diagnose(files, "%s: permission denied", name)
		return statusNotExecutable
	default:
		i.diagnose(files, "%s: %v", name, err)
		return statusNotFound
	}
}
