package shell

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/minish/core/alloc"
	"github.com/josephlewis42/minish/core/kernel"
	"golang.org/x/term"
)

// Console reads input lines.
type Console interface {
	// ReadLine writes prompt and reads one line without its terminator. It
	// returns io.EOF once the input is exhausted.
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewConsole picks a line editor when in is a terminal and a plain stream
// reader otherwise. The stream reader buffers lines in memory from a.
func NewConsole(in io.Reader, out io.Writer, a alloc.Allocator) (Console, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewTerminalConsole(f, out)
	}
	return NewStreamConsole(in, out, a), nil
}

type terminalConsole struct {
	rl *readline.Instance
}

// NewTerminalConsole creates a console with line editing and history.
func NewTerminalConsole(in io.Reader, out io.Writer) (Console, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(in),
		Stdout: out,
		Stderr: out,
		FuncIsTerminal: func() bool {
			return true
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &terminalConsole{rl: rl}, nil
}

func (t *terminalConsole) ReadLine(prompt string) (string, error) {
	for {
		t.rl.SetPrompt(prompt)
		line, err := t.rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl-C abandons the line.
			continue
		}
		if err != nil {
			return "", err
		}
		// readline has already decoded the input, invalid bytes show up as
		// replacement characters.
		if err := checkLine(line, true); err != nil {
			return "", err
		}
		return line, nil
	}
}

func (t *terminalConsole) Close() error {
	return t.rl.Close()
}

type streamConsole struct {
	in  *bufio.Reader
	out io.Writer
	buf *alloc.Buffer
}

// NewStreamConsole creates a console that reads newline terminated lines
// from in and writes prompts to out.
func NewStreamConsole(in io.Reader, out io.Writer, a alloc.Allocator) Console {
	return &streamConsole{
		in:  bufio.NewReader(in),
		out: out,
		buf: alloc.NewBuffer(a),
	}
}

// ReadLine implements Console.ReadLine. A final line without a newline is
// still returned. Lines that aren't valid UTF-8 fail with ErrInvalidData and
// failing to buffer a line is fatal.
func (s *streamConsole) ReadLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	s.buf.Reset()
	for {
		chunk, err := s.in.ReadSlice('\n')
		if _, werr := s.buf.Write(chunk); werr != nil {
			return "", &FatalError{Err: fmt.Errorf("buffering input: %w", werr)}
		}

		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if s.buf.Len() == 0 {
				return "", io.EOF
			}
		default:
			return "", err
		}
		break
	}

	line := string(bytes.TrimSuffix(s.buf.Bytes(), []byte{'\n'}))
	if err := checkLine(line, false); err != nil {
		return "", err
	}
	return line, nil
}

func (s *streamConsole) Close() error {
	return s.buf.Release()
}

// checkLine rejects lines that aren't valid UTF-8. A decoded line was
// converted from runes and can only carry bad input as utf8.RuneError.
func checkLine(line string, decoded bool) error {
	if !utf8.ValidString(line) || (decoded && strings.ContainsRune(line, utf8.RuneError)) {
		return kernel.NewError(kernel.ErrInvalidData, "", "Invalid UTF-8 Text")
	}
	return nil
}
