// Package shell reads command lines, splits them into words and runs them as
// builtins or child processes.
package shell

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenizerState int

const (
	stateNormal tokenizerState = iota
	stateEscape
	stateDoubleQuote
	stateEscapeInDoubleQuote
	stateSingleQuote
	stateEscapeInSingleQuote
)

// Tokenizer splits a line into shell words. Quotes and backslashes are
// removed from the words it returns.
//
// Words that needed no quote or escape processing are slices of the input
// line, everything else is copied.
type Tokenizer struct {
	rest string
}

// NewTokenizer creates a tokenizer over line. To start over, create a new
// tokenizer.
func NewTokenizer(line string) *Tokenizer {
	return &Tokenizer{rest: line}
}

// Next returns the next word. ok is false once the input is exhausted.
//
// A ';' at the start of the remaining input is returned as its own word, one
// in the middle of a word ends it and is returned on the following call.
func (t *Tokenizer) Next() (token string, ok bool) {
	s := strings.TrimSpace(t.rest)
	if s == "" {
		t.rest = ""
		return "", false
	}

	if s[0] == ';' {
		t.rest = s[1:]
		return s[:1], true
	}

	var (
		buf     strings.Builder
		copying bool
		// mark is the start of the run of literal input not yet copied to buf.
		mark  int
		state = stateNormal
	)

	// flush copies the pending run up to end and skips the syntax character at
	// end.
	flush := func(end int) {
		buf.WriteString(s[mark:end])
		mark = end + 1
		copying = true
	}

	finish := func(end int) string {
		t.rest = s[end:]
		if !copying {
			return s[:end]
		}
		buf.WriteString(s[mark:end])
		return buf.String()
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch state {
		case stateNormal:
			switch {
			case unicode.IsSpace(r), r == ';':
				return finish(i), true
			case r == '\\':
				flush(i)
				state = stateEscape
			case r == '"':
				flush(i)
				state = stateDoubleQuote
			case r == '\'':
				flush(i)
				state = stateSingleQuote
			}

		case stateEscape:
			state = stateNormal

		case stateDoubleQuote:
			switch r {
			case '"':
				flush(i)
				state = stateNormal
			case '\\':
				flush(i)
				state = stateEscapeInDoubleQuote
			}

		case stateEscapeInDoubleQuote:
			state = stateDoubleQuote

		case stateSingleQuote:
			switch r {
			case '\'':
				flush(i)
				state = stateNormal
			case '\\':
				flush(i)
				state = stateEscapeInSingleQuote
			}

		case stateEscapeInSingleQuote:
			state = stateSingleQuote
		}

		i += size
	}

	// Unterminated quotes and trailing escapes close at the end of input.
	return finish(len(s)), true
}

// Tokenize splits line into all of its words.
func Tokenize(line string) []string {
	var out []string
	for t := NewTokenizer(line); ; {
		tok, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}
