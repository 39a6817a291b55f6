package interp

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineWidth is wrapped by the FatalError of a pipeline that does
	// not have exactly two stages.
	ErrPipelineWidth = errors.New("pipelines must have exactly two stages")
	// ErrPipelineStage is wrapped by the FatalError of a pipeline with a
	// stage that is not a simple command.
	ErrPipelineStage = errors.New("pipeline stages must be simple commands")
)

// FatalError is returned from Run when execution can't continue, either
// because a pipe or process could not be created or because a pipeline is
// malformed. The interpreter should terminate.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExitError is returned from Run when the exit builtin ran at the top level.
// The interpreter should terminate with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// IsTerminal reports whether err ends a tree walk.
func IsTerminal(err error) bool {
	var fatal *FatalError
	var exit *ExitError
	return errors.As(err, &fatal) || errors.As(err, &exit)
}
