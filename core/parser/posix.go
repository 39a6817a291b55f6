package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/treesh/core/ast"
	"mvdan.cc/sh/v3/syntax"
)

// constructNames holds readable names for syntax nodes that have no
// counterpart in the command tree.
var constructNames = map[string]string{
	"*syntax.ParamExp":     "parameter expansion",
	"*syntax.CmdSubst":     "command substitution",
	"*syntax.ArithmExp":    "arithmetic expansion",
	"*syntax.ProcSubst":    "process substitution",
	"*syntax.ExtGlob":      "extended glob",
	"*syntax.BraceExp":     "brace expansion",
	"*syntax.Subshell":     "subshell",
	"*syntax.Block":        "block",
	"*syntax.IfClause":     "if clause",
	"*syntax.WhileClause":  "while loop",
	"*syntax.ForClause":    "for loop",
	"*syntax.CaseClause":   "case clause",
	"*syntax.FuncDecl":     "function declaration",
	"*syntax.DeclClause":   "declaration",
	"*syntax.LetClause":    "let clause",
	"*syntax.TestClause":   "test clause",
	"*syntax.ArithmCmd":    "arithmetic command",
	"*syntax.TimeClause":   "time clause",
	"*syntax.CoprocClause": "coprocess",
}

func unsupported(node syntax.Node, construct string) error {
	if construct == "" {
		t := fmt.Sprintf("%T", node)
		if name, ok := constructNames[t]; ok {
			construct = name
		} else {
			construct = strings.TrimPrefix(t, "*syntax.")
		}
	}

	pos := node.Pos()
	return &UnsupportedError{Construct: construct, Line: pos.Line(), Col: pos.Col()}
}

// ParsePOSIX parses src as POSIX shell.
func ParsePOSIX(src string) (ast.Node, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(src), "")
	if err != nil {
		return nil, err
	}

	var nodes []ast.Node
	for _, stmt := range file.Stmts {
		node, err := convertStmt(stmt)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return ast.Seq(nodes...), nil
}

func convertStmt(stmt *syntax.Stmt) (ast.Node, error) {
	switch {
	case stmt.Negated:
		return nil, unsupported(stmt, "negation")
	case stmt.Coprocess:
		return nil, unsupported(stmt, "coprocess")
	}

	var node ast.Node
	switch cmd := stmt.Cmd.(type) {
	case nil:
		return nil, unsupported(stmt, "redirection without a command")

	case *syntax.CallExpr:
		command, err := convertCall(cmd)
		if err != nil {
			return nil, err
		}
		node = command

	case *syntax.BinaryCmd:
		if cmd.Op != syntax.Pipe {
			return nil, unsupported(cmd, fmt.Sprintf("%q operator", cmd.Op.String()))
		}
		var parts []ast.Node
		for _, side := range []*syntax.Stmt{cmd.X, cmd.Y} {
			part, err := convertStmt(side)
			if err != nil {
				return nil, err
			}
			// a | b | c is parsed as nested binary commands, flatten them to
			// one pipe.
			if pipe, ok := part.(*ast.Pipe); ok {
				parts = append(parts, pipe.Parts...)
			} else {
				parts = append(parts, part)
			}
		}
		node = &ast.Pipe{Parts: parts}

	default:
		return nil, unsupported(cmd, "")
	}

	if len(stmt.Redirs) > 0 {
		redirs, err := convertRedirs(stmt.Redirs)
		if err != nil {
			return nil, err
		}
		node = &ast.Redirect{Child: node, Redirs: redirs}
	}

	if stmt.Background {
		node = &ast.Detach{Child: node}
	}
	return node, nil
}

func convertCall(call *syntax.CallExpr) (*ast.Command, error) {
	if len(call.Assigns) > 0 {
		return nil, unsupported(call.Assigns[0], "variable assignment")
	}

	argv := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		arg, err := evalWord(word)
		if err != nil {
			return nil, err
		}
		argv = append(argv, arg)
	}
	return ast.NewCommand(argv...), nil
}

func convertRedirs(redirs []*syntax.Redirect) ([]ast.Redir, error) {
	var out []ast.Redir
	for _, redirect := range redirs {
		var redir ast.Redir
		switch redirect.Op {
		case syntax.RdrIn:
			redir.Op, redir.Fd = ast.RedirIn, 0
		case syntax.RdrOut:
			redir.Op, redir.Fd = ast.RedirOut, 1
		case syntax.AppOut:
			redir.Op, redir.Fd = ast.RedirAppend, 1
		default:
			return nil, unsupported(redirect, fmt.Sprintf("%q redirection", redirect.Op.String()))
		}

		if redirect.N != nil {
			fd, err := strconv.Atoi(redirect.N.Value)
			if err != nil {
				return nil, unsupported(redirect, fmt.Sprintf("file descriptor %q", redirect.N.Value))
			}
			redir.Fd = fd
		}

		target, err := evalWord(redirect.Word)
		if err != nil {
			return nil, err
		}
		redir.Target = target

		out = append(out, redir)
	}
	return out, nil
}

// evalWord joins the literal parts of word. Anything that would need
// expansion is unsupported.
func evalWord(word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range word.Parts {
		if err := evalWordPart(&sb, part, false); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func evalWordPart(sb *strings.Builder, part syntax.WordPart, quoted bool) error {
	switch part := part.(type) {
	case *syntax.Lit:
		sb.WriteString(unescape(part.Value, quoted))

	case *syntax.SglQuoted:
		if part.Dollar {
			return unsupported(part, "ANSI-C quoting")
		}
		sb.WriteString(part.Value)

	case *syntax.DblQuoted:
		if part.Dollar {
			return unsupported(part, "locale quoting")
		}
		for _, subPart := range part.Parts {
			if err := evalWordPart(sb, subPart, true); err != nil {
				return err
			}
		}

	default:
		return unsupported(part, "")
	}
	return nil
}

// unescape removes backslash escapes from a literal. Inside double quotes a
// backslash only escapes $, `, ", \ and newline.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}

		next := s[i+1]
		switch {
		case next == '\n':
			i++
		case !quoted || strings.IndexByte("$`\"\\", next) >= 0:
			sb.WriteByte(next)
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
