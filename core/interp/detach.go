package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/vos"
)

// detach starts a simple command in the background with its output sent to
// the discard sink. The child is reaped by its own goroutine, the tree walk
// never waits for it.
func (i *Interpreter) detach(d *ast.Detach) error {
	cmd, ok := d.Child.(*ast.Command)
	if !ok || cmd.Program == "" {
		i.diagnose(i.VirtualOS, "background jobs must be simple commands, got %s", kindOf(d.Child))
		i.status = 1
		return nil
	}
	argv := commandArgv(cmd)

	path, err := vos.LookPath(i.VirtualOS, cmd.Program)
	if err != nil {
		i.status = i.notFound(i.VirtualOS, cmd.Program, err)
		return nil
	}

	sink, err := i.VirtualOS.OpenDiscard()
	if err != nil {
		i.diagnose(i.VirtualOS, "%s: %v", argv[0], err)
		i.status = 1
		return nil
	}
	defer sink.Close()

	// Only hand over a real file, anything else would need a copying
	// goroutine reading the interpreter's own input.
	var stdin *os.File
	if f, ok := i.VirtualOS.Stdin().(*os.File); ok {
		stdin = f
	}

	proc, err := i.VirtualOS.StartProcess(path, argv, &vos.ProcAttr{
		Env:        i.VirtualOS.Environ(),
		Files:      vos.NewVIOAdapter(fileReader(stdin), sink, i.VirtualOS.Stderr()),
		Background: true,
	})
	if err != nil {
		i.status, err = i.startFailed(i.VirtualOS, argv[0], err)
		return err
	}

	fmt.Fprintf(i.VirtualOS.Stdout(), "Started background job %d\n", proc.Pid)
	flush(i.VirtualOS)

	i.status = 0
	i.record(logger.EventBackgroundJob, logger.Fields{
		"argv": logger.Strings(argv),
		"pid":  proc.Pid,
	})

	pid := proc.Pid
	proc.Reap(func(status int, err error) {
		if err != nil {
			i.Logger.Printf("background job %d: %v", pid, err)
		}
		i.Logger.Printf("background job %d exited with status %d", pid, status)
		i.record(logger.EventJobExit, logger.Fields{
			"pid":    pid,
			"status": status,
		})
	})
	return nil
}

// fileReader avoids handing a typed nil *os.File to an io.Reader.
func fileReader(f *os.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
