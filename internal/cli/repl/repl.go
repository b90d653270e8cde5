package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Executor runs one command line.
type Executor interface {
	// Execute runs args, writing any result to w.
	Execute(w io.Writer, args []string) error
	// Commands lists the command names and their usage, one per entry.
	Commands() []Command
}

// Command describes one executor command for help and completion.
type Command struct {
	Name  string
	Args  string
	Usage string
}

// ErrUnknownCommand is returned by executors for names they do not handle.
var ErrUnknownCommand = errors.New("unknown command")

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a REPL that runs lines with exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:   os.Stdin,
		output:  os.Stdout,
		prompt:  "stripedmap> ",
		exec:    exec,
		history: NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}

	names := []string{"help", "history", "complete", "exit", "quit"}
	for _, c := range exec.Commands() {
		names = append(names, c.Name)
	}
	r.completer = NewCompleter(names)
	return r
}

// Run reads and executes lines until exit, quit or end of input. Command
// errors are printed and do not end the loop.
func (r *REPL) Run() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		args, perr := SplitArgs(line)
		switch {
		case perr != nil:
			fmt.Fprintf(r.output, "error: %v\n", perr)
		case args[0] == "exit" || args[0] == "quit":
			return nil
		default:
			if err := r.execute(args); err != nil {
				fmt.Fprintf(r.output, "error: %v\n", err)
			}
		}

		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

func (r *REPL) execute(args []string) error {
	switch args[0] {
	case "help":
		r.help()
		return nil
	case "history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return nil
	case "complete":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		for _, s := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, s)
		}
		return nil
	}

	err := r.exec.Execute(r.output, args)
	if errors.Is(err, ErrUnknownCommand) {
		if s := r.completer.Complete(args[0]); len(s) > 0 {
			return fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownCommand, args[0], strings.Join(s, ", "))
		}
		return fmt.Errorf("%w %q (try help)", ErrUnknownCommand, args[0])
	}
	return err
}

func (r *REPL) help() {
	cmds := slices.Clone(r.exec.Commands())
	cmds = append(cmds,
		Command{Name: "help", Usage: "show this list"},
		Command{Name: "history", Usage: "show previous lines"},
		Command{Name: "complete", Args: "PREFIX", Usage: "list commands starting with PREFIX"},
		Command{Name: "exit", Usage: "leave the shell"},
	)

	width := 0
	for _, c := range cmds {
		width = max(width, len(c.Name)+len(c.Args)+1)
	}
	for _, c := range cmds {
		fmt.Fprintf(r.output, "  %-*s  %s\n", width, strings.TrimSpace(c.Name+" "+c.Args), c.Usage)
	}
}

// SplitArgs splits line on whitespace. Double quotes group words into one
// argument and a backslash escapes the next character inside quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
