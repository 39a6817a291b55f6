// Package vos is the operating system boundary of the interpreter.
//
// Everything the interpreter does to the host (process creation, pipes,
// working directory, program lookup, the discard sink) goes through a VOS so
// pipeline stages can run against a Subshell clone with a private working
// directory and their own standard streams.
package vos

import (
	"io"
	"io/fs"
	"os"
)

const (
	EnvPath = "PATH"
	EnvHome = "HOME"
)

// VIO provides the standard streams of a process.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// VProc holds the per-process state the interpreter reads or mutates.
type VProc interface {
	Getpid() int

	// Getwd returns the working directory.
	Getwd() (string, error)
	// Chdir changes the working directory.
	Chdir(dir string) error

	// Getenv retrieves the value of the environment variable named by the key.
	Getenv(key string) string
	// Environ returns the environment passed to child processes, in the form
	// "key=value".
	Environ() []string

	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Readlink(name string) (string, error)
}

// VOS provides a virtual OS interface.
type VOS interface {
	VIO
	VProc

	// StartProcess starts the program at name without waiting for it.
	StartProcess(name string, argv []string, attr *ProcAttr) (*Process, error)

	// Pipe returns a connected pair of files. Both ends are close-on-exec, a
	// child only receives the end placed in its ProcAttr.Files.
	Pipe() (r *os.File, w *os.File, err error)

	// OpenDiscard opens the discard sink write-only.
	OpenDiscard() (*os.File, error)

	// Subshell clones the OS with its own standard streams and a private
	// working directory that starts at the current one.
	Subshell(files VIO) VOS
}

// ProcAttr holds the attributes that will be applied to a new process.
type ProcAttr struct {
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string
	// If Env is non-nil, it gives the environment variables for the
	// new process in the form returned by Environ.
	Env []string
	// Files holds the standard streams of the new process. Nil streams are
	// connected to the null device.
	Files VIO
	// Background starts the process with the interrupt signal at its default
	// disposition, even if the interpreter ignores it.
	Background bool
}
