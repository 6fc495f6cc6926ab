package shell

import (
	"strings"

	"github.com/josephlewis42/minish/core/kernel"
)

// Line is a parsed command line: leading environment assignments, then an
// optional command and its arguments.
//
//	FOO=1 BAR=2 ls -l
//	^^^^^^^^^^^ ^^ ^^
//	Env         |  Args
//	            Command
type Line struct {
	Env []kernel.Var

	// HasCommand is false for lines that are blank or hold only assignments.
	HasCommand bool
	Command    string
	Args       []string
}

// Parse consumes every word of t. Words are assignments while they contain
// an '=' and no command has been seen; the first word without one is the
// command and everything after it is an argument.
//
// Keys aren't validated, "=x" assigns x to the empty key.
func Parse(t *Tokenizer) *Line {
	line := &Line{}

	for {
		tok, ok := t.Next()
		if !ok {
			return line
		}

		if !line.HasCommand {
			if key, value, isAssignment := strings.Cut(tok, "="); isAssignment {
				line.Env = append(line.Env, kernel.Var{Key: key, Value: value})
				continue
			}

			line.HasCommand = true
			line.Command = tok
			continue
		}

		line.Args = append(line.Args, tok)
	}
}

// ParseLine tokenizes and parses text.
func ParseLine(text string) *Line {
	return Parse(NewTokenizer(text))
}

// Argv returns the argument vector a child is started with, the command name
// followed by the arguments.
func (l *Line) Argv() []string {
	out := make([]string, 0, len(l.Args)+1)
	out = append(out, l.Command)
	return append(out, l.Args...)
}

// String renders the line with quoting removed, words separated by single
// spaces.
func (l *Line) String() string {
	var sb strings.Builder

	sep := ""
	for _, v := range l.Env {
		sb.WriteString(sep)
		sep = " "
		sb.WriteString(v.Key)
		sb.WriteByte('=')
		sb.WriteString(v.Value)
	}

	if l.HasCommand {
		sb.WriteString(sep)
		sb.WriteString(l.Command)
	}

	for _, arg := range l.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}

	return sb.String()
}
