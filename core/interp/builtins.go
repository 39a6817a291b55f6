package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/treesh/core/vos"
	"github.com/pborman/getopt/v2"
)

// Class is the category a command name falls into.
type Class int

const (
	ClassUnknown Class = iota
	ClassExternal
	ClassExit
	ClassCd
	ClassPwd
)

func (c Class) String() string {
	switch c {
	case ClassUnknown:
		return "unknown"
	case ClassExternal:
		return "external"
	case ClassExit:
		return "exit"
	case ClassCd:
		return "cd"
	case ClassPwd:
		return "pwd"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Builtin is a command run inside the interpreter rather than as a child
// process.
type Builtin struct {
	Class Class
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string

	// Main runs the builtin against env. args[0] is the builtin's name.
	Main func(env vos.VOS, args []string) (int, error)
}

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]*Builtin)

func addBuiltin(b *Builtin) {
	AllBuiltins[b.Class.String()] = b
}

func init() {
	addBuiltin(&Builtin{
		Class: ClassExit,
		Use:   "exit [N]",
		Short: "Exit the shell with status N, or 0 if N is omitted.",
		Main:  Exit,
	})
	addBuiltin(&Builtin{
		Class: ClassCd,
		Use:   "cd DIR",
		Short: "Change the working directory to DIR.",
		Main:  Cd,
	})
	addBuiltin(&Builtin{
		Class: ClassPwd,
		Use:   "pwd",
		Short: "Print the working directory.",
		Main:  Pwd,
	})
}

// BuiltinNames returns the names of all builtins in sorted order.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classify resolves name to a builtin, a program found through proc's search
// path, or ClassUnknown. For external programs the resolved path is
// returned; for unknown names the lookup error is.
func Classify(proc vos.VProc, name string) (Class, string, error) {
	if b, ok := AllBuiltins[name]; ok {
		return b.Class, "", nil
	}

	path, err := vos.LookPath(proc, name)
	if err != nil {
		return ClassUnknown, "", err
	}
	return ClassExternal, path, nil
}

// Exit terminates the interpreter. The status is parsed the way C's atoi
// does: leading digits after an optional sign, anything else is 0.
func Exit(env vos.VOS, args []string) (int, error) {
	code := 0
	if len(args) > 1 {
		code = atoi(args[1])
	}
	return code, &ExitError{Code: code}
}

func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	for _, c := range []byte(s) {
		if c < '0' || c > '9' || n > (1<<31)/10 {
			break
		}
		n = n*10 + int(c-'0')
	}

	if neg {
		return -n
	}
	return n
}

// Cd is the cd shell builtin
func Cd(env vos.VOS, args []string) (int, error) {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := env.Stderr()
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", args[0], err)
		}
		fmt.Fprintln(w, "usage: cd DIR")
		fmt.Fprintln(w, "Change the working directory to DIR.")
		if err != nil {
			return 1, nil
		}
		return 0, nil
	}

	switch operands := opts.Args(); len(operands) {
	case 0:
		fmt.Fprintf(env.Stderr(), "%s: missing operand\n", args[0])
		return 1, nil
	case 1:
		if err := env.Chdir(operands[0]); err != nil {
			fmt.Fprintf(env.Stderr(), "%s: %v\n", args[0], err)
			return 1, nil
		}
	default:
		fmt.Fprintf(env.Stderr(), "%s: too many arguments\n", args[0])
		return 1, nil
	}
	return 0, nil
}

// Pwd prints the working directory. Operands are ignored.
func Pwd(env vos.VOS, args []string) (int, error) {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err == nil && *helpOpt {
		w := env.Stdout()
		fmt.Fprintln(w, "usage: pwd")
		fmt.Fprintln(w, "Print the working directory.")
		return 0, nil
	}

	wd, err := env.Getwd()
	if err != nil {
		fmt.Fprintf(env.Stderr(), "%s: %v\n", args[0], err)
		return 1, nil
	}
	fmt.Fprintln(env.Stdout(), wd)
	return 0, nil
}
