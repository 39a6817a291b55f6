package vos

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/josephlewis42/treesh/third_party/realpath"
)

// Subshell is a clone of a parent VOS with its own standard streams and a
// private working directory. Changing directory in a Subshell never affects
// the parent; everything else is delegated.
type Subshell struct {
	VIO

	parent VOS
	dir    string
}

var _ VOS = (*Subshell)(nil)

// NewSubshell clones parent. If the parent's working directory can't be
// determined, relative paths resolve against the parent's until Chdir
// succeeds.
func NewSubshell(parent VOS, files VIO) *Subshell {
	if files == nil {
		files = NewNullIO()
	}
	dir, _ := parent.Getwd()
	return &Subshell{
		VIO:    files,
		parent: parent,
		dir:    dir,
	}
}

func (s *Subshell) abs(name string) string {
	if s.dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *Subshell) Getpid() int {
	return s.parent.Getpid()
}

func (s *Subshell) Getwd() (string, error) {
	if s.dir == "" {
		return s.parent.Getwd()
	}
	return s.dir, nil
}

// Chdir resolves dir to a canonical path the way getcwd would report it.
func (s *Subshell) Chdir(dir string) error {
	resolved, err := realpath.Realpath(s, dir)
	if err != nil {
		return chdirError(dir, err)
	}

	fi, err := s.parent.Stat(resolved)
	if err != nil {
		return chdirError(dir, err)
	}
	if !fi.IsDir() {
		return chdirError(dir, syscall.ENOTDIR)
	}

	s.dir = resolved
	return nil
}

// chdirError reports err the way os.Chdir does.
func chdirError(dir string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &fs.PathError{Op: "chdir", Path: dir, Err: err}
}

func (s *Subshell) Getenv(key string) string {
	return s.parent.Getenv(key)
}

func (s *Subshell) Environ() []string {
	return s.parent.Environ()
}

func (s *Subshell) Stat(name string) (fs.FileInfo, error) {
	return s.parent.Stat(s.abs(name))
}

func (s *Subshell) Lstat(name string) (fs.FileInfo, error) {
	return s.parent.Lstat(s.abs(name))
}

func (s *Subshell) Readlink(name string) (string, error) {
	return s.parent.Readlink(s.abs(name))
}

func (s *Subshell) StartProcess(name string, argv []string, attr *ProcAttr) (*Process, error) {
	clone := ProcAttr{}
	if attr != nil {
		clone = *attr
	}
	if clone.Dir == "" {
		clone.Dir = s.dir
	}
	return s.parent.StartProcess(name, argv, &clone)
}

func (s *Subshell) Pipe() (*os.File, *os.File, error) {
	return s.parent.Pipe()
}

func (s *Subshell) OpenDiscard() (*os.File, error) {
	return s.parent.OpenDiscard()
}

func (s *Subshell) Subshell(files VIO) VOS {
	return NewSubshell(s, files)
}
