package shell

import (
	"fmt"
	"strings"
	"testing"

	"github.com/josephlewis42/minish/core/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/syntax"
)

func TestParseLine(t *testing.T) {
	cases := map[string]struct {
		text string
		want *Line
	}{
		"blank": {
			text: "   ",
			want: &Line{},
		},
		"command only": {
			text: "ls",
			want: &Line{HasCommand: true, Command: "ls"},
		},
		"assignments then command": {
			text: "FOO=1 BAR=2 ls -l",
			want: &Line{
				Env:        []kernel.Var{{Key: "FOO", Value: "1"}, {Key: "BAR", Value: "2"}},
				HasCommand: true,
				Command:    "ls",
				Args:       []string{"-l"},
			},
		},
		"assignment after command is an argument": {
			text: "ls FOO=1",
			want: &Line{HasCommand: true, Command: "ls", Args: []string{"FOO=1"}},
		},
		"assignments only": {
			text: "A=1 B=2",
			want: &Line{Env: []kernel.Var{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}},
		},
		"split on first equals": {
			text: "A=b=c env",
			want: &Line{
				Env:        []kernel.Var{{Key: "A", Value: "b=c"}},
				HasCommand: true,
				Command:    "env",
			},
		},
		"keys are not validated": {
			text: "=x 1A= cmd",
			want: &Line{
				Env:        []kernel.Var{{Key: "", Value: "x"}, {Key: "1A", Value: ""}},
				HasCommand: true,
				Command:    "cmd",
			},
		},
		"quoted value": {
			text: `MSG="hello world" say`,
			want: &Line{
				Env:        []kernel.Var{{Key: "MSG", Value: "hello world"}},
				HasCommand: true,
				Command:    "say",
			},
		},
		"semicolon is an argument": {
			text: "ls; pwd",
			want: &Line{HasCommand: true, Command: "ls", Args: []string{";", "pwd"}},
		},
		"leading semicolon is the command": {
			text: ";",
			want: &Line{HasCommand: true, Command: ";"},
		},
		"empty quoted command": {
			text: `"" a`,
			want: &Line{HasCommand: true, Command: "", Args: []string{"a"}},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLine(tc.text))
		})
	}
}

func TestLine_Argv(t *testing.T) {
	line := ParseLine("X=1 cat -n 'a file'")
	assert.Equal(t, []string{"cat", "-n", "a file"}, line.Argv())
}

func ExampleLine_String() {
	fmt.Println(ParseLine(`FOO=1   BAR="two words"  ls   -l 'my dir'`))
	fmt.Println(ParseLine("A=1 B=2"))
	fmt.Println(ParseLine(`echo "a;b" c`))

	// Output: FOO=1 BAR=two words ls -l my dir
	// A=1 B=2
	// echo a;b c
}

// evalWord joins the literal parts of a quoted or unquoted word.
func evalWord(t *testing.T, word *syntax.Word) string {
	t.Helper()
	if word == nil {
		return ""
	}

	var sb strings.Builder
	var walk func(parts []syntax.WordPart)
	walk = func(parts []syntax.WordPart) {
		for _, part := range parts {
			switch part := part.(type) {
			case *syntax.Lit:
				sb.WriteString(part.Value)
			case *syntax.SglQuoted:
				sb.WriteString(part.Value)
			case *syntax.DblQuoted:
				walk(part.Parts)
			default:
				t.Fatalf("unexpected word part %T", part)
			}
		}
	}
	walk(word.Parts)
	return sb.String()
}

func TestParseLine_matchesPOSIXShell(t *testing.T) {
	// Simple commands without escapes, separators or expansions split into
	// assignments, command and arguments the way a POSIX shell parser does.
	lines := []string{
		"ls",
		"FOO=1 BAR=2 ls -l",
		"ls FOO=1",
		"A=1 B=2",
		"EMPTY= cmd",
		`MSG="hello world" say 'it''s' "x y"z`,
		"PATH=/bin:/usr/bin env",
		"cc -DNAME=value main.c",
	}

	for _, text := range lines {
		t.Run(text, func(t *testing.T) {
			file, err := syntax.NewParser().Parse(strings.NewReader(text), "")
			require.NoError(t, err)
			require.Len(t, file.Stmts, 1)
			call, ok := file.Stmts[0].Cmd.(*syntax.CallExpr)
			require.True(t, ok)

			want := &Line{}
			for _, assign := range call.Assigns {
				want.Env = append(want.Env, kernel.Var{Key: assign.Name.Value, Value: evalWord(t, assign.Value)})
			}
			for i, word := range call.Args {
				if i == 0 {
					want.HasCommand = true
					want.Command = evalWord(t, word)
					continue
				}
				want.Args = append(want.Args, evalWord(t, word))
			}

			assert.Equal(t, want, ParseLine(text))
		})
	}
}
