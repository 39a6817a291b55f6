package parser

import (
	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/treesh/core/ast"
)

var redirOps = map[string]ast.RedirOp{
	"<":  ast.RedirIn,
	">":  ast.RedirOut,
	">>": ast.RedirAppend,
}

func isOperator(tok string) bool {
	switch tok {
	case "|", ";", "&":
		return true
	}
	_, ok := redirOps[tok]
	return ok
}

// ParseSimple parses src in the simple dialect:
//
//	list     = pipeline { ( ";" | "&" ) pipeline } [ ";" | "&" ]
//	pipeline = command { "|" command }
//	command  = word { word | redir }
//	redir    = ( "<" | ">" | ">>" ) word
//
// Operators must be separate words. Quoting an operator does not turn it
// into a plain word.
func ParseSimple(src string) (ast.Node, error) {
	tokens, err := shlex.Split(src, true)
	if err != nil {
		return nil, err
	}

	p := &simpleParser{tokens: tokens}
	return p.list()
}

type simpleParser struct {
	tokens []string
	pos    int
}

func (p *simpleParser) peek() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	return p.tokens[p.pos], true
}

func (p *simpleParser) next() (string, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *simpleParser) list() (ast.Node, error) {
	var nodes []ast.Node
	for {
		if _, ok := p.peek(); !ok {
			break
		}

		node, err := p.pipeline()
		if err != nil {
			return nil, err
		}

		// pipeline only stops at the end of input or a separator.
		if sep, ok := p.next(); ok && sep == "&" {
			node = &ast.Detach{Child: node}
		}
		nodes = append(nodes, node)
	}
	return ast.Seq(nodes...), nil
}

func (p *simpleParser) pipeline() (ast.Node, error) {
	var parts []ast.Node
	for {
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		parts = append(parts, cmd)

		if tok, ok := p.peek(); !ok || tok != "|" {
			break
		}
		p.next()
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return &ast.Pipe{Parts: parts}, nil
}

func (p *simpleParser) command() (ast.Node, error) {
	var argv []string
	var redirs []ast.Redir

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		op, isRedir := redirOps[tok]
		if !isRedir && isOperator(tok) {
			break
		}
		p.next()

		if !isRedir {
			argv = append(argv, tok)
			continue
		}

		target, ok := p.next()
		if !ok || isOperator(target) {
			return nil, &SyntaxError{Token: target}
		}
		redir := ast.Redir{Op: op, Fd: 1, Target: target}
		if op == ast.RedirIn {
			redir.Fd = 0
		}
		redirs = append(redirs, redir)
	}

	if len(argv) == 0 && len(redirs) > 0 {
		return nil, &SyntaxError{Token: redirs[0].Op.String()}
	}
	if len(argv) == 0 {
		tok, _ := p.peek()
		return nil, &SyntaxError{Token: tok}
	}

	var node ast.Node = ast.NewCommand(argv...)
	if len(redirs) > 0 {
		node = &ast.Redirect{Child: node, Redirs: redirs}
	}
	return node, nil
}
