// Package arena provides the scoped allocator the interpreter brackets every
// tree-execution call with.
//
// Scopes are strictly nested: every Push is matched by exactly one Pop, in
// reverse order. Resources registered with Release are closed when the
// innermost scope at registration time is popped.
package arena

import (
	"errors"
	"io"
	"log"
)

// Allocator is the scoped allocator contract consumed by the interpreter.
type Allocator interface {
	// Push opens a new innermost scope.
	Push()
	// Pop closes the innermost scope.
	Pop()
}

// Releaser is implemented by allocators that can tie an io.Closer to the
// lifetime of the current scope.
type Releaser interface {
	Release(c io.Closer)
}

// ErrUnbalanced is panicked with when Pop is called without a matching Push.
var ErrUnbalanced = errors.New("arena: pop without matching push")

// Stack is an Allocator whose scopes hold closers that are closed, last
// registered first, when the scope is popped.
type Stack struct {
	scopes [][]io.Closer

	// Logger receives close errors, it may be nil.
	Logger *log.Logger
}

var _ Allocator = (*Stack)(nil)
var _ Releaser = (*Stack)(nil)

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push implements Allocator.Push.
func (s *Stack) Push() {
	s.scopes = append(s.scopes, nil)
}

// Pop implements Allocator.Pop.
func (s *Stack) Pop() {
	if len(s.scopes) == 0 {
		panic(ErrUnbalanced)
	}

	top := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]

	for i := len(top) - 1; i >= 0; i-- {
		if err := top[i].Close(); err != nil && s.Logger != nil {
			s.Logger.Printf("arena: release: %v", err)
		}
	}
}

// Release ties c to the innermost scope. Without an open scope c is closed
// immediately.
func (s *Stack) Release(c io.Closer) {
	if len(s.scopes) == 0 {
		c.Close()
		return
	}
	s.scopes[len(s.scopes)-1] = append(s.scopes[len(s.scopes)-1], c)
}

// Depth returns the number of open scopes.
func (s *Stack) Depth() int {
	return len(s.scopes)
}

// Counter wraps an Allocator and counts scope operations.
type Counter struct {
	Allocator

	Pushes   int
	Pops     int
	MaxDepth int
	depth    int
}

// NewCounter wraps a. A nil a counts without delegating.
func NewCounter(a Allocator) *Counter {
	return &Counter{Allocator: a}
}

// Push implements Allocator.Push.
func (c *Counter) Push() {
	c.Pushes++
	c.depth++
	if c.depth > c.MaxDepth {
		c.MaxDepth = c.depth
	}
	if c.Allocator != nil {
		c.Allocator.Push()
	}
}

// Pop implements Allocator.Pop.
func (c *Counter) Pop() {
	c.Pops++
	c.depth--
	if c.Allocator != nil {
		c.Allocator.Pop()
	}
}

// Release forwards to the wrapped allocator when it is a Releaser. Otherwise
// the caller keeps ownership of closer.
func (c *Counter) Release(closer io.Closer) {
	if r, ok := c.Allocator.(Releaser); ok {
		r.Release(closer)
	}
}

// Depth returns the number of currently open scopes.
func (c *Counter) Depth() int {
	return c.depth
}

// Balanced reports whether every Push has been matched by a Pop.
func (c *Counter) Balanced() bool {
	return c.depth == 0 && c.Pushes == c.Pops
}
