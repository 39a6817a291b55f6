package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the tree rooted at node to w, one node
// per line.
func Fprint(w io.Writer, node Node) error {
	return fprint(w, node, 0)
}

func fprint(w io.Writer, node Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	if node == nil {
		_, err := fmt.Fprintf(w, "%s<nil>\n", indent)
		return err
	}

	var children []Node
	var err error
	switch n := node.(type) {
	case *Command:
		_, err = fmt.Fprintf(w, "%s%s %q\n", indent, n.Kind(), n.Argv)
	case *Pipe:
		_, err = fmt.Fprintf(w, "%s%s (%d stages)\n", indent, n.Kind(), len(n.Parts))
		children = n.Parts
	case *Sequence:
		_, err = fmt.Fprintf(w, "%s%s\n", indent, n.Kind())
		children = []Node{n.First, n.Second}
	case *Detach:
		_, err = fmt.Fprintf(w, "%s%s\n", indent, n.Kind())
		children = []Node{n.Child}
	case *Redirect:
		redirs := make([]string, len(n.Redirs))
		for i, r := range n.Redirs {
			redirs[i] = r.String()
		}
		_, err = fmt.Fprintf(w, "%s%s %s\n", indent, n.Kind(), strings.Join(redirs, ", "))
		children = []Node{n.Child}
	default:
		_, err = fmt.Fprintf(w, "%s%s %s\n", indent, node.Kind(), node.String())
	}
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := fprint(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
