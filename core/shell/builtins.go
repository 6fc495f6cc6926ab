package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/josephlewis42/minish/core/kernel"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command the shell runs itself. args[0] is the name it was
// invoked as.
type Builtin interface {
	Main(c *Context, args []string) error
}

type BuiltinFunc func(c *Context, args []string) error

func (f BuiltinFunc) Main(c *Context, args []string) error {
	return f(c, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames returns the names of all builtins, sorted.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exit asks the shell to terminate with the status given as the first
// argument, 0 if there isn't one.
func Exit(c *Context, args []string) error {
	status := 0
	if len(args) > 1 {
		n, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return &kernel.Error{Kind: kernel.ErrInvalidInput, Op: args[0], Err: err}
		}
		status = int(n)
	}

	c.logf("exit command: %s", args[0])
	return &ExitRequest{Status: status}
}

// Help lists the builtins.
func Help(c *Context, args []string) error {
	cmd := &SimpleCommand{
		Use:   "help",
		Short: "Display information about builtin commands.",
	}

	return cmd.Run(c, args, func() error {
		w := c.Stdout
		fmt.Fprintln(w, "minish, a minimal shell")
		fmt.Fprintln(w, "These shell commands are defined internally.  Type `help' to see this list.")
		fmt.Fprintln(w, "Anything else is looked up in PATH.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Builtins:")
		fmt.Fprintln(w)

		for _, name := range BuiltinNames() {
			fmt.Fprintf(w, "  %s\n", name)
		}
		return nil
	})
}

// Free reports how much of the shell's heap is in use.
func Free(c *Context, args []string) error {
	cmd := &SimpleCommand{
		Use:   "free [OPTION]...",
		Short: "Display amount of free and used memory in the shell's heap.",
	}

	humanSize := cmd.Flags().BoolLong("human-readable", 'h', "print human readable sizes")

	return cmd.Run(c, args, func() error {
		if c.Heap == nil {
			return kernel.NewError(kernel.ErrUnsupported, args[0], "no heap")
		}

		size := func(n int) string {
			if *humanSize {
				return BytesToHuman(int64(n))
			}
			return strconv.Itoa(n)
		}

		stats := c.Heap.Stats()
		w := c.Stdout
		fmt.Fprintf(w, "%-6s%12s%12s%12s%8s%8s\n", "", "total", "used", "free", "spans", "allocs")
		fmt.Fprintf(w, "%-6s%12s%12s%12s%8d%8d\n",
			"Heap:",
			size(stats.Mapped),
			size(stats.InUse),
			size(stats.Free()),
			stats.Spans,
			stats.Allocations)
		return nil
	})
}

// IsExit reports whether err asks the shell to terminate, and with what
// status.
func IsExit(err error) (int, bool) {
	var exit *ExitRequest
	if errors.As(err, &exit) {
		return exit.Status, true
	}
	return 0, false
}

func init() {
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["return"] = BuiltinFunc(Exit)
	AllBuiltins["logout"] = BuiltinFunc(Exit)
	AllBuiltins["help"] = BuiltinFunc(Help)
	AllBuiltins["free"] = BuiltinFunc(Free)
}
