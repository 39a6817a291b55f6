// Package parser turns command text into the tree the interpreter runs.
//
// Two dialects are understood. The posix dialect is full POSIX shell syntax
// read by mvdan.cc/sh; constructs the interpreter has no node for (such as
// conditionals, expansions and subshells) are rejected. The simple dialect
// splits the input into whitespace separated words with shell quoting, and
// only the words |, ;, &, <, > and >> are operators.
package parser

import (
	"fmt"

	"github.com/josephlewis42/treesh/core/ast"
)

// Dialect selects the input syntax.
type Dialect string

const (
	DialectPOSIX  Dialect = "posix"
	DialectSimple Dialect = "simple"
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{DialectPOSIX, DialectSimple}

// UnsupportedError is returned for input that is well formed but can't be
// represented as a command tree.
type UnsupportedError struct {
	Construct string
	Line      uint
	Col       uint
}

func (e *UnsupportedError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s not supported", e.Construct)
	}
	return fmt.Sprintf("%d:%d: %s not supported", e.Line, e.Col, e.Construct)
}

// SyntaxError is returned by the simple dialect for malformed input.
type SyntaxError struct {
	Token string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "syntax error: unexpected end of input"
	}
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Token)
}

// Parse parses src with the given dialect. Input without any command, such
// as blank lines or comments, parses to a nil tree.
func Parse(dialect Dialect, src string) (ast.Node, error) {
	switch dialect {
	case DialectPOSIX, "":
		return ParsePOSIX(src)
	case DialectSimple:
		return ParseSimple(src)
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
}
