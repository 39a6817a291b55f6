package interp

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/vos"
)

// endpoint is one end of a pipe. It is closed by the stage that owns it
// and again by the enclosing traversal scope, only the first close counts.
type endpoint struct {
	*os.File

	once sync.Once
	err  error
}

func (e *endpoint) Close() error {
	e.once.Do(func() {
		e.err = e.File.Close()
	})
	return e.err
}

// stage is a running pipeline stage: a child process, or a builtin or
// not-found report running on a subshell.
type stage struct {
	proc *vos.Process
	done chan int
}

func (s *stage) wait() (int, error) {
	if s.proc != nil {
		return s.proc.Wait()
	}
	return <-s.done, nil
}

// startStage starts cmd with files as its streams. owned is the pipe
// endpoint the stage holds. Once the stage no longer needs it, it is closed:
// right after the start for child processes, which hold their own copy, or
// when an in-process stage finishes. A program that fails to execute is a
// finished stage with status 126 or 127, the other stage sees EOF or a
// broken pipe.
func (i *Interpreter) startStage(cmd *ast.Command, files vos.VIO, owned *endpoint) (*stage, error) {
	s := &stage{}

	class, path, _ := Classify(i.VirtualOS, cmd.Program)
	if class == ClassExternal {
		proc, err := i.VirtualOS.StartProcess(path, commandArgv(cmd), &vos.ProcAttr{
			Env:   i.VirtualOS.Environ(),
			Files: files,
		})
		owned.Close()
		if err != nil {
			status, err := i.startFailed(files, cmd.Program, err)
			if err != nil {
				return nil, err
			}
			s.done = make(chan int, 1)
			s.done <- status
			return s, nil
		}
		i.Logger.Printf("pipeline stage %q started as pid %d", path, proc.Pid)
		s.proc = proc
		return s, nil
	}

	sub := i.VirtualOS.Subshell(files)
	s.done = make(chan int, 1)
	go func() {
		defer owned.Close()

		status, err := i.dispatch(sub, cmd)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			status = exitErr.Code
		}
		s.done <- status
	}()
	return s, nil
}

// pipeline connects the output of the first stage to the input of the
// second and waits for both. The pipeline's status is the second stage's.
func (i *Interpreter) pipeline(p *ast.Pipe) error {
	if len(p.Parts) != 2 {
		return i.fatal("pipeline", fmt.Errorf("%w, got %d", ErrPipelineWidth, len(p.Parts)))
	}

	var cmds [2]*ast.Command
	for idx, part := range p.Parts {
		cmd, ok := part.(*ast.Command)
		if !ok || cmd.Program == "" {
			return i.fatal("pipeline", fmt.Errorf("%w, stage %d is %v", ErrPipelineStage, idx+1, kindOf(part)))
		}
		cmds[idx] = cmd
	}

	rf, wf, err := i.VirtualOS.Pipe()
	if err != nil {
		return i.fatal("pipe", err)
	}
	r, w := &endpoint{File: rf}, &endpoint{File: wf}
	i.release(r)
	i.release(w)

	first, err := i.startStage(cmds[0], vos.NewVIOAdapter(i.VirtualOS.Stdin(), w.File, i.VirtualOS.Stderr()), w)
	if err != nil {
		r.Close()
		return err
	}

	second, err := i.startStage(cmds[1], vos.NewVIOAdapter(r.File, i.VirtualOS.Stdout(), i.VirtualOS.Stderr()), r)
	if err != nil {
		// Nothing reads the pipe anymore, the first stage sees a broken pipe
		// instead of blocking forever.
		r.Close()
		first.wait()
		return err
	}

	firstStatus, err := first.wait()
	if err != nil {
		i.diagnose(i.VirtualOS, "%s: %v", cmds[0].Program, err)
	}
	secondStatus, err := second.wait()
	if err != nil {
		i.diagnose(i.VirtualOS, "%s: %v", cmds[1].Program, err)
	}

	flush(i.VirtualOS)
	i.status = secondStatus
	i.record(logger.EventPipeline, logger.Fields{
		"stages":   []interface{}{logger.Strings(commandArgv(cmds[0])), logger.Strings(commandArgv(cmds[1]))},
		"statuses": []interface{}{firstStatus, secondStatus},
	})
	return nil
}

func kindOf(n ast.Node) string {
	if n == nil {
		return "empty"
	}
	return "a " + n.Kind().String()
}
