// Package vostest has helpers for running the interpreter against the host
// OS with captured standard streams.
package vostest

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/josephlewis42/treesh/core/vos"
)

// Buffer is a bytes.Buffer safe for concurrent writers; pipeline stages and
// child output copiers write to the same stream from different goroutines.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

var _ io.WriteCloser = (*Buffer)(nil)

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (*Buffer) Close() error {
	return nil
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards the buffered output.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Streams holds the captured output of a TestOS.
type Streams struct {
	Stdout *Buffer
	Stderr *Buffer
}

// NewHostOS creates a host OS whose stdin is empty and whose stdout and
// stderr are captured.
func NewHostOS() (*vos.HostOS, *Streams) {
	streams := &Streams{
		Stdout: &Buffer{},
		Stderr: &Buffer{},
	}

	host := vos.NewHostOS(vos.NewVIOAdapter(nil, streams.Stdout, streams.Stderr))
	return host, streams
}

// Chdir changes the process working directory to dir for the rest of the
// test. Tests using it must not run in parallel.
func Chdir(t testing.TB, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}

// TempDir returns a temporary directory with symbolic links resolved so it
// compares equal to what getcwd reports.
func TempDir(t testing.TB) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// RequirePrograms skips the test unless every program is on the PATH.
func RequirePrograms(t testing.TB, programs ...string) {
	t.Helper()

	for _, p := range programs {
		if _, err := exec.LookPath(p); err != nil {
			t.Skipf("%s not available: %v", p, err)
		}
	}
}
