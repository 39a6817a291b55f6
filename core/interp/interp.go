// Package interp walks command trees and realizes them as processes.
//
// Commands run builtins in the interpreter or start a child process and wait
// for it. Two-stage pipelines connect their stages with a pipe, detached
// commands are started with their output discarded and are never waited on
// by the tree walk.
package interp

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
	"github.com/josephlewis42/treesh/core/arena"
	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/vos"
)

// Interpreter executes command trees against a VOS.
type Interpreter struct {
	VirtualOS vos.VOS

	// Arena is entered and left around every call to Run.
	Arena arena.Allocator
	// Events receives a record of every command, pipeline and background job.
	Events logger.Recorder
	// Logger receives debug traces.
	Logger *log.Logger
	// Diagnostics colors error messages written by the interpreter, it may be
	// nil.
	Diagnostics *color.Color

	status int
}

// New creates an interpreter with a fresh arena, no event log and debug
// logging discarded.
func New(virtualOS vos.VOS) *Interpreter {
	return &Interpreter{
		VirtualOS: virtualOS,
		Arena:     arena.NewStack(),
		Events:    logger.Nop(),
		Logger:    log.New(io.Discard, "[interp] ", 0),
	}
}

// Status returns the exit status of the last foreground command or pipeline.
func (i *Interpreter) Status() int {
	return i.status
}

// Run executes node. The only errors returned are *ExitError and
// *FatalError; every other failure is reported on the interpreter's stderr
// and reflected in Status.
func (i *Interpreter) Run(node ast.Node) error {
	i.Arena.Push()
	defer i.Arena.Pop()

	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Command:
		status, err := i.dispatch(i.VirtualOS, n)
		i.status = status
		return err

	case *ast.Pipe:
		return i.pipeline(n)

	case *ast.Sequence:
		if err := i.Run(n.First); err != nil {
			return err
		}
		return i.Run(n.Second)

	case *ast.Detach:
		return i.detach(n)

	case *ast.Redirect:
		i.Logger.Printf("redirection not supported, skipping %q", n.String())
		return nil

	default:
		i.diagnose(i.VirtualOS, "unsupported node type %s", node.Kind())
		i.record(logger.EventUnsupportedNode, logger.Fields{
			"kind": node.Kind().String(),
		})
		return nil
	}
}

// dispatch classifies the program of cmd and runs it as a builtin or a
// child process, or reports it as not found. Both of env's output streams
// are flushed before returning.
func (i *Interpreter) dispatch(env vos.VOS, cmd *ast.Command) (int, error) {
	if cmd.Program == "" {
		return 0, nil
	}
	argv := commandArgv(cmd)

	var status int
	var err error

	class, path, lookErr := Classify(env, cmd.Program)
	switch class {
	case ClassExternal:
		status, err = i.launch(env, path, argv)
	case ClassUnknown:
		status = i.notFound(env, cmd.Program, lookErr)
	default:
		status, err = AllBuiltins[cmd.Program].Main(env, argv)
	}

	flush(env)
	i.record(logger.EventCommand, logger.Fields{
		"argv":   logger.Strings(argv),
		"class":  class.String(),
		"status": status,
	})
	return status, err
}

// commandArgv returns the argument vector of cmd. A command without one
// gets its program name as the only argument.
func commandArgv(cmd *ast.Command) []string {
	if len(cmd.Argv) == 0 {
		return []string{cmd.Program}
	}
	return cmd.Argv
}

// release ties c to the current traversal scope if the arena supports it.
func (i *Interpreter) release(c io.Closer) {
	if r, ok := i.Arena.(arena.Releaser); ok {
		r.Release(c)
	}
}

func (i *Interpreter) diagnose(files vos.VIO, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	w := files.Stderr()
	if i.Diagnostics != nil {
		i.Diagnostics.Fprintln(w, msg)
	} else {
		fmt.Fprintln(w, msg)
	}
	vos.Flush(w)
}

// fatal records err and wraps it in a FatalError.
func (i *Interpreter) fatal(op string, err error) error {
	fatal := &FatalError{Op: op, Err: err}
	i.record(logger.EventFatal, logger.Fields{"error": fatal.Error()})
	return fatal
}

func (i *Interpreter) record(event string, fields logger.Fields) {
	if i.Events == nil {
		return
	}
	if err := i.Events.Record(event, fields); err != nil {
		i.Logger.Printf("recording %s: %v", event, err)
	}
}

func flush(files vos.VIO) {
	vos.Flush(files.Stdout())
	vos.Flush(files.Stderr())
}
