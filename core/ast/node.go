// Package ast defines the command tree consumed by the interpreter.
//
// A tree is produced once per input by a front-end (see core/parser) and is
// read-only afterwards: the interpreter never mutates it.
package ast

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindCommand Kind = iota
	KindPipe
	KindSequence
	KindDetach
	KindRedirect
)

var kindNames = map[Kind]string{
	KindCommand:  "command",
	KindPipe:     "pipe",
	KindSequence: "sequence",
	KindDetach:   "detach",
	KindRedirect: "redirect",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is a single element of the command tree.
type Node interface {
	Kind() Kind
	String() string
}

// Command runs a single program. Argv[0] is conventionally the program name.
type Command struct {
	Program string
	Argv    []string
}

// NewCommand creates a command whose program is argv[0].
func NewCommand(argv ...string) *Command {
	cmd := &Command{Argv: argv}
	if len(argv) > 0 {
		cmd.Program = argv[0]
	}
	return cmd
}

func (*Command) Kind() Kind { return KindCommand }

// Args returns the arguments following the program name.
func (c *Command) Args() []string {
	if len(c.Argv) == 0 {
		return nil
	}
	return c.Argv[1:]
}

func (c *Command) String() string {
	words := make([]string, len(c.Argv))
	for i, w := range c.Argv {
		words[i] = Quote(w)
	}
	return strings.Join(words, " ")
}

// Pipe connects the standard output of each part to the standard input of
// the next one. The interpreter only accepts exactly two parts.
type Pipe struct {
	Parts []Node
}

func (*Pipe) Kind() Kind { return KindPipe }

func (p *Pipe) String() string {
	parts := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = part.String()
	}
	return strings.Join(parts, " | ")
}

// Sequence runs First to completion and then Second, unconditionally.
type Sequence struct {
	First  Node
	Second Node
}

func (*Sequence) Kind() Kind { return KindSequence }

func (s *Sequence) String() string {
	first := s.First.String()
	if _, ok := s.First.(*Detach); ok {
		return first + " " + s.Second.String()
	}
	return first + "; " + s.Second.String()
}

// Detach runs Child in the background. Child must be a *Command.
type Detach struct {
	Child Node
}

func (*Detach) Kind() Kind { return KindDetach }

func (d *Detach) String() string {
	return d.Child.String() + " &"
}

// RedirOp is a redirection operator.
type RedirOp int

const (
	RedirIn     RedirOp = iota // <
	RedirOut                   // >
	RedirAppend                // >>
)

func (op RedirOp) String() string {
	switch op {
	case RedirIn:
		return "<"
	case RedirOut:
		return ">"
	case RedirAppend:
		return ">>"
	default:
		return "?"
	}
}

// Redir is a single redirection of file descriptor Fd to or from Target.
type Redir struct {
	Fd     int
	Op     RedirOp
	Target string
}

func (r Redir) String() string {
	prefix := ""
	switch {
	case r.Op == RedirIn && r.Fd != 0:
		prefix = fmt.Sprint(r.Fd)
	case r.Op != RedirIn && r.Fd != 1:
		prefix = fmt.Sprint(r.Fd)
	}
	return prefix + r.Op.String() + " " + Quote(r.Target)
}

// Redirect wraps Child with stream redirections. The interpreter parses it
// but does not act on it.
type Redirect struct {
	Child  Node
	Redirs []Redir
}

func (*Redirect) Kind() Kind { return KindRedirect }

func (r *Redirect) String() string {
	out := r.Child.String()
	for _, redir := range r.Redirs {
		out += " " + redir.String()
	}
	return out
}

// Seq folds nodes into right-nested sequences. Nil nodes are dropped; it
// returns nil if nothing is left.
func Seq(nodes ...Node) Node {
	var kept []Node
	for _, n := range nodes {
		if n != nil {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	out := kept[len(kept)-1]
	for i := len(kept) - 2; i >= 0; i-- {
		out = &Sequence{First: kept[i], Second: out}
	}
	return out
}

const shellSpecial = " \t\n|&;<>()$`\\\"'*?[#~=%"

// Quote returns word in a form the POSIX front-end parses back to word.
func Quote(word string) string {
	if word == "" {
		return "''"
	}
	if !strings.ContainsAny(word, shellSpecial) {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

var (
	_ Node = (*Command)(nil)
	_ Node = (*Pipe)(nil)
	_ Node = (*Sequence)(nil)
	_ Node = (*Detach)(nil)
	_ Node = (*Redirect)(nil)
)
