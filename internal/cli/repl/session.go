package repl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/stripedmap-go/internal/cli/output"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// defaultListLimit caps the entries printed by list without an argument.
const defaultListLimit = 50

// MapSession executes shell commands against a string multimap.
type MapSession struct {
	m        *stripedmap.MultiMap[string, string]
	commands []sessionCommand
}

type sessionCommand struct {
	Command
	nargs int // exact argument count, or -1 for "0 or 1"
	run   func(w io.Writer, args []string) error
}

// NewMapSession creates a session over m.
func NewMapSession(m *stripedmap.MultiMap[string, string]) *MapSession {
	s := &MapSession{m: m}
	s.commands = []sessionCommand{
		{Command{"insert", "KEY VALUE", "add an entry, duplicates allowed"}, 2, s.insert},
		{Command{"mput", "KEY VALUE [KEY VALUE...]", "insert pairs as one bulk operation"}, -2, s.bulkInsert},
		{Command{"get", "KEY", "first value for KEY"}, 1, s.get},
		{Command{"getall", "KEY", "every value for KEY"}, 1, s.getAll},
		{Command{"set", "KEY VALUE", "replace the first value for KEY, inserting if absent"}, 2, s.set(false)},
		{Command{"setall", "KEY VALUE", "replace every value for KEY, inserting if absent"}, 2, s.set(true)},
		{Command{"append", "KEY SUFFIX", "append SUFFIX to every value for KEY, inserting it if absent"}, 2, s.appendValue},
		{Command{"erase", "KEY", "remove the first entry for KEY"}, 1, s.erase(false)},
		{Command{"eraseall", "KEY", "remove every entry for KEY"}, 1, s.erase(true)},
		{Command{"mdel", "KEY [KEY...]", "remove every entry for each KEY as one bulk operation"}, -1, s.bulkErase},
		{Command{"count", "KEY", "number of entries for KEY"}, 1, s.count},
		{Command{"list", "[LIMIT]", "print entries"}, -3, s.list},
		{Command{"size", "", "number of entries"}, 0, s.size},
		{Command{"bucket", "KEY", "bucket holding KEY and its length"}, 1, s.bucket},
		{Command{"stats", "", "map and per-stripe statistics"}, 0, s.stats},
		{Command{"rehash", "BUCKETS", "grow to at least BUCKETS buckets"}, 1, s.rehash},
		{Command{"maxload", "FACTOR", "set the max load factor"}, 1, s.maxLoad},
		{Command{"growth", "on|off", "enable or disable automatic rehash"}, 1, s.growth},
		{Command{"clear", "", "remove every entry"}, 0, s.clear},
	}
	return s
}

// Commands implements Executor.
func (s *MapSession) Commands() []Command {
	out := make([]Command, len(s.commands))
	for i, c := range s.commands {
		out[i] = c.Command
	}
	return out
}

// Execute implements Executor.
func (s *MapSession) Execute(w io.Writer, args []string) error {
	for _, c := range s.commands {
		if c.Name != args[0] {
			continue
		}
		rest := args[1:]
		if !arityOK(c.nargs, len(rest)) {
			return fmt.Errorf("usage: %s %s", c.Name, c.Args)
		}
		return c.run(w, rest)
	}
	return ErrUnknownCommand
}

// arityOK checks n arguments against a command's arity: >= 0 is exact,
// -1 is one or more, -2 is a non-empty even count, -3 is zero or one.
func arityOK(arity, n int) bool {
	switch arity {
	case -1:
		return n >= 1
	case -2:
		return n >= 2 && n%2 == 0
	case -3:
		return n <= 1
	default:
		return n == arity
	}
}

func (s *MapSession) insert(w io.Writer, args []string) error {
	if err := s.m.Insert(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(w, "OK")
	return nil
}

func (s *MapSession) bulkInsert(w io.Writer, args []string) error {
	items := make([]stripedmap.KV[string, string], 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		items = append(items, stripedmap.KV[string, string]{Key: args[i], Value: args[i+1]})
	}
	n, err := s.m.InsertBulk(items)
	if err != nil {
		if n > 0 {
			return fmt.Errorf("%d inserted: %w", n, err)
		}
		return err
	}
	fmt.Fprintf(w, "inserted %d\n", n)
	return nil
}

func (s *MapSession) get(w io.Writer, args []string) error {
	v, n := s.m.GetValueFirst(args[0])
	if n == 0 {
		fmt.Fprintln(w, "(nil)")
		return nil
	}
	fmt.Fprintln(w, strconv.Quote(v))
	return nil
}

func (s *MapSession) getAll(w io.Writer, args []string) error {
	vs, n := s.m.GetValueAll(args[0])
	if n == 0 {
		fmt.Fprintln(w, "(empty)")
		return nil
	}
	for i, v := range vs {
		fmt.Fprintf(w, "%d) %s\n", i+1, strconv.Quote(v))
	}
	return nil
}

func (s *MapSession) set(all bool) func(io.Writer, []string) error {
	return func(w io.Writer, args []string) error {
		var (
			n   int
			err error
		)
		if all {
			n, err = s.m.SetValueAll(args[0], args[1])
		} else {
			n, err = s.m.SetValueFirst(args[0], args[1])
		}
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(w, "inserted")
			return nil
		}
		fmt.Fprintf(w, "updated %d\n", n)
		return nil
	}
}

func (s *MapSession) appendValue(w io.Writer, args []string) error {
	suffix := args[1]
	n, err := s.m.SetComputedValueAll(args[0], func(v *string, _ string) bool {
		*v += suffix
		return true
	})
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(w, "inserted")
		return nil
	}
	fmt.Fprintf(w, "updated %d\n", n)
	return nil
}

func (s *MapSession) erase(all bool) func(io.Writer, []string) error {
	return func(w io.Writer, args []string) error {
		var n int
		if all {
			n = s.m.EraseAll(args[0])
		} else {
			n = s.m.EraseFirst(args[0])
		}
		fmt.Fprintf(w, "erased %d\n", n)
		return nil
	}
}

func (s *MapSession) bulkErase(w io.Writer, args []string) error {
	fmt.Fprintf(w, "erased %d\n", s.m.EraseBulkAll(args))
	return nil
}

func (s *MapSession) count(w io.Writer, args []string) error {
	n := s.m.VisitKeyReadOnly(args[0], func(string, string) bool { return true })
	fmt.Fprintln(w, n)
	return nil
}

func (s *MapSession) list(w io.Writer, args []string) error {
	limit := defaultListLimit
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	t := &output.Table{Headers: []string{"KEY", "VALUE"}}
	s.m.VisitReadOnly(func(v string, k string) bool {
		t.AddRow(k, strconv.Quote(v))
		return len(t.Rows) < limit
	})
	if err := t.Render(w); err != nil {
		return err
	}
	if size := s.m.Size(); size > len(t.Rows) {
		fmt.Fprintf(w, "(%d of %d shown)\n", len(t.Rows), size)
	}
	return nil
}

func (s *MapSession) size(w io.Writer, _ []string) error {
	fmt.Fprintln(w, s.m.Size())
	return nil
}

func (s *MapSession) bucket(w io.Writer, args []string) error {
	i := s.m.BucketIndex(args[0])
	fmt.Fprintf(w, "bucket %d of %d, %d entries\n", i, s.m.BucketCount(), s.m.BucketSize(i))
	return nil
}

func (s *MapSession) stats(w io.Writer, _ []string) error {
	f := &output.TableFormatter{Wide: true}
	return f.Format(w, s.m.Stats())
}

func (s *MapSession) rehash(w io.Writer, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid bucket count %q", args[0])
	}
	if !s.m.IsRehashEnabled() {
		return fmt.Errorf("growth is off")
	}
	if err := s.m.Rehash(n); err != nil {
		return err
	}
	fmt.Fprintf(w, "buckets %d\n", s.m.BucketCount())
	return nil
}

func (s *MapSession) maxLoad(w io.Writer, args []string) error {
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid load factor %q", args[0])
	}
	if err := s.m.SetMaxLoadFactor(f); err != nil {
		return err
	}
	fmt.Fprintf(w, "max load factor %g, buckets %d\n", s.m.MaxLoadFactor(), s.m.BucketCount())
	return nil
}

func (s *MapSession) growth(w io.Writer, args []string) error {
	switch args[0] {
	case "on":
		s.m.EnableRehash()
	case "off":
		s.m.DisableRehash()
	default:
		return fmt.Errorf("usage: growth on|off")
	}
	fmt.Fprintf(w, "growth %s\n", args[0])
	return nil
}

func (s *MapSession) clear(w io.Writer, _ []string) error {
	s.m.Clear()
	fmt.Fprintln(w, "OK")
	return nil
}
