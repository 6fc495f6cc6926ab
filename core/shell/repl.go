package shell

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// DefaultPrompt is written before each line is read.
const DefaultPrompt = "# "

// REPL reads lines from a console and executes them until the input ends or
// an exit builtin runs.
type REPL struct {
	Context *Context
	Console Console

	Prompt string
	// EchoParsedLine writes each parsed line to stderr before it runs.
	EchoParsedLine bool
	// Color shows errors in red.
	Color bool
}

// Run executes lines until the input ends, which exits with status 0, or an
// exit builtin runs. Failed commands are reported and the loop moves on; an
// error is returned only when input can't be read or a fatal error occurs.
func (r *REPL) Run() (int, error) {
	errColor := color.New(color.FgRed)
	if r.Color {
		errColor.EnableColor()
	} else {
		errColor.DisableColor()
	}

	stdout := r.Context.Stdout
	for {
		text, err := r.Console.ReadLine(r.Prompt)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(stdout, "exit")
			return 0, nil
		case err != nil:
			return 1, err
		}

		line := ParseLine(text)
		if !line.HasCommand {
			continue
		}

		if r.EchoParsedLine {
			fmt.Fprintln(r.Context.Stderr, line)
		}

		err = r.Context.Execute(line)
		if err == nil {
			continue
		}

		if status, ok := IsExit(err); ok {
			return status, nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return 1, err
		}

		errColor.Fprintln(stdout, err)
	}
}
