package shell

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/josephlewis42/minish/core/alloc"
	"github.com/josephlewis42/minish/core/kernel"
	"github.com/josephlewis42/minish/core/kernel/kerneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamConsole(t *testing.T) {
	heap := alloc.NewHeap(kerneltest.New(), 0, nil)
	out := &bytes.Buffer{}
	long := strings.Repeat("x", 10000)

	con, err := NewConsole(strings.NewReader("ls -l\n\n"+long+"\nlast"), out, heap)
	require.NoError(t, err)

	for _, want := range []string{"ls -l", "", long, "last"} {
		got, err := con.ReadLine("> ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = con.ReadLine("> ")
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "> > > > > ", out.String())

	assert.Greater(t, heap.Stats().InUse, 0, "lines are buffered on the heap")
	require.NoError(t, con.Close())
	assert.Equal(t, 0, heap.Stats().InUse)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, kernel.Interrupted
}

func TestStreamConsole_readError(t *testing.T) {
	con := NewStreamConsole(failingReader{}, io.Discard, alloc.NewHeap(kerneltest.New(), 0, nil))

	_, err := con.ReadLine("# ")
	assert.True(t, errors.Is(err, kernel.Interrupted))
}

func TestStreamConsole_invalidUTF8(t *testing.T) {
	con := NewStreamConsole(strings.NewReader("ok\n\xc3\x28\nfine\n"), io.Discard, alloc.NewHeap(kerneltest.New(), 0, nil))

	line, err := con.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "ok", line)

	_, err = con.ReadLine("")
	assert.True(t, errors.Is(err, kernel.ErrInvalidData))

	line, err = con.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "fine", line, "the bad line is consumed")
}

func TestCheckLine(t *testing.T) {
	cases := map[string]struct {
		line    string
		decoded bool
		valid   bool
	}{
		"ascii":                        {line: "ls -l", valid: true},
		"multibyte":                    {line: "echo héllo 世界", valid: true},
		"empty":                        {line: "", valid: true},
		"truncated sequence":           {line: "\xc3\x28"},
		"stray continuation byte":      {line: "a\x80b", decoded: true},
		"replacement char in stream":   {line: "a\uFFFDb", valid: true},
		"replacement char from editor": {line: "a\uFFFDb", decoded: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			err := checkLine(tc.line, tc.decoded)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, kernel.ErrInvalidData))
			assert.Equal(t, "Invalid Data: Invalid UTF-8 Text", err.Error())
		})
	}
}
