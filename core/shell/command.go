package shell

import (
	"fmt"
	"io"

	"github.com/josephlewis42/minish/core/kernel"
	getopt "github.com/pborman/getopt/v2"
)

// SimpleCommand handles flag parsing and help output for builtins.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses args, args[0] being the command name, and calls the callback if
// parsing succeeded and help wasn't requested. Bad flags are reported as an
// invalid input error.
func (s *SimpleCommand) Run(c *Context, args []string, callback func() error) error {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", '?', "show this help and exit")
	}

	if err := opts.Getopt(args, nil); err != nil {
		return &kernel.Error{Kind: kernel.ErrInvalidInput, Op: args[0], Err: err}
	}

	if *s.ShowHelp {
		s.PrintHelp(c.Stdout)
		return nil
	}

	return callback()
}

// BytesToHuman formats a byte count with a decimal unit suffix.
func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}
