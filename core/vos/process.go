package vos

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Process is a started child process. It must be consumed by exactly one
// call to Wait or Reap.
type Process struct {
	Pid int

	cmd *exec.Cmd
}

// Wait blocks until the process exits and returns its exit status. The error
// is only set if waiting itself failed, a non-zero exit is not an error.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()

	var exitErr *exec.ExitError
	if err == nil || errors.As(err, &exitErr) {
		return ExitStatus(err), nil
	}
	return ExitStatus(err), err
}

// Reap waits for the process in the background and calls onExit, if
// non-nil, once it has exited.
func (p *Process) Reap(onExit func(status int, err error)) {
	go func() {
		status, err := p.Wait()
		if onExit != nil {
			onExit(status, err)
		}
	}()
}

// ExitStatus converts the error returned from waiting on a process into a
// shell exit status. Processes killed by a signal report 128+signal.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}

func startProcess(name string, argv []string, attr *ProcAttr) (*Process, error) {
	if attr == nil {
		attr = &ProcAttr{}
	}

	cmd := &exec.Cmd{
		Path: name,
		Args: argv,
		Dir:  attr.Dir,
		Env:  attr.Env,
	}
	if len(cmd.Args) == 0 {
		cmd.Args = []string{name}
	}
	if files := attr.Files; files != nil {
		cmd.Stdin = execReader(files.Stdin())
		cmd.Stdout = execWriter(files.Stdout())
		cmd.Stderr = execWriter(files.Stderr())
	}

	var err error
	if attr.Background {
		err = withDefaultInterrupt(cmd.Start)
	} else {
		err = cmd.Start()
	}
	if err != nil {
		return nil, err
	}

	return &Process{Pid: cmd.Process.Pid, cmd: cmd}, nil
}

// withDefaultInterrupt runs start so the child sees SIGINT at its default
// disposition. Children inherit ignored signals across exec while caught
// ones are reset to the default, so catching SIGINT around the start is
// enough. The interpreter goes back to ignoring it afterwards.
func withDefaultInterrupt(start func() error) error {
	if !signal.Ignored(os.Interrupt) {
		return start()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Ignore(os.Interrupt)

	return start()
}
