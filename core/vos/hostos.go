package vos

import (
	"io/fs"
	"os"
)

// HostOS implements VOS on top of the real operating system. Its working
// directory is the process-wide one, its environment is a snapshot taken
// when it is created.
type HostOS struct {
	VIO

	// DiscardSink is the file detached processes write their output to.
	DiscardSink string

	env *MapEnv
}

var _ VOS = (*HostOS)(nil)

// NewHostOS creates a host OS using files as its standard streams.
func NewHostOS(files VIO) *HostOS {
	if files == nil {
		files = NewHostIO()
	}
	return &HostOS{
		VIO:         files,
		DiscardSink: os.DevNull,
		env:         NewMapEnvFromEnvList(os.Environ()),
	}
}

// SetSearchPath replaces $PATH for program lookup and child environments.
// An empty path keeps the inherited one.
func (h *HostOS) SetSearchPath(path string) {
	if path != "" {
		h.env.Setenv(EnvPath, path)
	}
}

func (*HostOS) Getpid() int {
	return os.Getpid()
}

func (*HostOS) Getwd() (string, error) {
	return os.Getwd()
}

func (*HostOS) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (h *HostOS) Getenv(key string) string {
	return h.env.Getenv(key)
}

func (h *HostOS) Environ() []string {
	return h.env.Environ()
}

func (*HostOS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (*HostOS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (*HostOS) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

func (*HostOS) StartProcess(name string, argv []string, attr *ProcAttr) (*Process, error) {
	return startProcess(name, argv, attr)
}

func (*HostOS) Pipe() (*os.File, *os.File, error) {
	return os.Pipe()
}

func (h *HostOS) OpenDiscard() (*os.File, error) {
	sink := h.DiscardSink
	if sink == "" {
		sink = os.DevNull
	}
	return os.OpenFile(sink, os.O_WRONLY, 0)
}

func (h *HostOS) Subshell(files VIO) VOS {
	return NewSubshell(h, files)
}
