package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/config"
	"github.com/josephlewis42/treesh/core/interp"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/parser"
	"github.com/josephlewis42/treesh/core/vos"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	commandString string
	dialectFlag   string
)

// runCmd is the same as running the root command
var runCmd = &cobra.Command{
	Use:   "run [SCRIPT]",
	Short: "Run commands from a -c string, a script or standard input.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runE,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&commandString, "command", "c", "", "run the commands in the string and exit")
	cmd.Flags().StringVar(&dialectFlag, "dialect", "", "override the configured parser dialect (posix or simple)")
}

// readSource returns the program named by the -c flag or script argument,
// or ok=false when commands should be read from stdin.
func readSource(cmd *cobra.Command, args []string) (src string, ok bool, err error) {
	switch {
	case cmd.Flags().Changed("command"):
		return commandString, true, nil
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	default:
		return "", false, nil
	}
}

func runE(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dialectFlag != "" {
		cfg.Dialect = dialectFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	s, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	src, ok, err := readSource(cmd, args)
	switch {
	case err != nil:
		return err
	case ok:
		return s.runScript(src)
	}

	if stdin, isFile := cmd.InOrStdin().(*os.File); isFile && term.IsTerminal(int(stdin.Fd())) {
		return s.runInteractive(stdin)
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	return s.runScript(string(data))
}

// session ties an interpreter to the configuration and streams of a single
// invocation.
type session struct {
	cfg     *config.Configuration
	dialect parser.Dialect
	host    *vos.HostOS
	interp  *interp.Interpreter
	errors  *color.Color
	wdColor *color.Color

	toClose []io.Closer
}

func newSession(cmd *cobra.Command, cfg *config.Configuration) (*session, error) {
	host := vos.NewHostOS(vos.NewVIOAdapter(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
	host.SetSearchPath(cfg.SearchPath)
	host.DiscardSink = cfg.DiscardSink

	s := &session{
		cfg:     cfg,
		dialect: parser.Dialect(cfg.Dialect),
		host:    host,
		interp:  interp.New(host),
		errors:  color.New(color.FgRed),
		wdColor: color.New(color.FgBlue, color.Bold),
	}

	if cfg.Debug || debug {
		s.interp.Logger = newCmdLogger(cmd, "[treesh] ")
	}

	enabled := colorEnabled(cfg.Color, cmd.ErrOrStderr())
	for _, c := range []*color.Color{s.errors, s.wdColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	s.interp.Diagnostics = s.errors

	fd, err := cfg.OpenEventLog()
	switch {
	case errors.Is(err, config.ErrNoEventLog):
		// Events are dropped.
	case err != nil:
		return nil, fmt.Errorf("opening event log: %w", err)
	default:
		events := logger.NewJsonLinesLogRecorder(fd)
		s.toClose = append(s.toClose, events, fd)
		s.interp.Events = events
	}

	return s, nil
}

// colorEnabled resolves the color setting against the destination stream.
func colorEnabled(setting string, w io.Writer) bool {
	switch setting {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Close releases the session's resources in order. The event log stops
// recording before its file is closed, so background jobs exiting later
// are not logged.
func (s *session) Close() error {
	var firstErr error
	for _, c := range s.toClose {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *session) parse(src string) (ast.Node, error) {
	return parser.Parse(s.dialect, src)
}

// runScript runs a whole program. Simple dialect programs are parsed a line
// at a time, POSIX programs in one piece. A non-zero final status is
// returned as an *interp.ExitError.
func (s *session) runScript(src string) error {
	chunks := []string{src}
	if s.dialect == parser.DialectSimple {
		chunks = strings.Split(src, "\n")
	}

	for _, chunk := range chunks {
		node, err := s.parse(chunk)
		if err != nil {
			return err
		}
		if err := s.interp.Run(node); err != nil {
			return err
		}
	}

	if status := s.interp.Status(); status != 0 {
		return &interp.ExitError{Code: status}
	}
	return nil
}

// runInteractive reads and runs one line at a time until end of input, exit
// or a fatal error.
func (s *session) runInteractive(stdin *os.File) error {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: s.host.Stdout(),
		Stderr: s.host.Stderr(),
		FuncGetWidth: func() int {
			width, _, err := term.GetSize(int(stdin.Fd()))
			if err != nil {
				return 80
			}
			return width
		},
		FuncIsTerminal: func() bool {
			return true
		},
	}

	if err := cfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	// Foreground children get the terminal's interrupt, the interpreter keeps
	// running.
	stop := catchInterrupts()
	defer stop()

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return nil

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			return err

		case strings.TrimSpace(line) == "":
			continue
		}

		node, err := s.parse(line)
		if err != nil {
			s.errors.Fprintf(s.host.Stderr(), "treesh: %v\n", err)
			continue
		}

		if err := s.interp.Run(node); err != nil {
			return err
		}
	}
}

// catchInterrupts swallows SIGINT until the returned stop function is
// called. stop returns once the draining goroutine has exited.
func catchInterrupts() (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})

	signal.Notify(sigs, os.Interrupt)
	go func() {
		defer close(exited)
		for {
			select {
			case <-sigs:
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
		<-exited
	}
}

func (s *session) prompt() string {
	wd, err := s.host.Getwd()
	if err != nil {
		wd = "?"
	}
	return renderPrompt(s.cfg.Prompt, wd, s.host.Getenv(vos.EnvHome), os.Geteuid() == 0, s.wdColor)
}

// renderPrompt expands \w to the working directory, abbreviating home as ~,
// and \$ to # for root or $ otherwise.
func renderPrompt(format, wd, home string, root bool, wdColor *color.Color) string {
	if home != "" && home != "/" && (wd == home || strings.HasPrefix(wd, home+"/")) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}
	if wdColor != nil {
		wd = wdColor.Sprint(wd)
	}

	prompt := strings.ReplaceAll(format, `\w`, wd)

	if root {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}
