//go:build unix

package hostkernel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/minish/core/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestHost() *Host {
	return New(os.Stdin, os.Stdout, os.Stderr)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, kernel.DoesNotExist, statusFromError(unix.ENOENT))
	assert.Equal(t, kernel.Permission, statusFromError(&os.PathError{Op: "open", Path: "/x", Err: unix.EACCES}))

	other := errors.New("no errno here")
	assert.Same(t, other, statusFromError(other))

	// Unknown errnos pass through and are uncategorized by the kernel table.
	err := statusFromError(unix.EPIPE)
	assert.Equal(t, unix.EPIPE, err)
	assert.Equal(t, kernel.ErrUncategorized, kernel.KindFromError(err))
}

func TestHost_OpenDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	h := newTestHost()

	t.Run("directory", func(t *testing.T) {
		handle, err := h.OpenDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, handle.Name())
		assert.NoError(t, handle.Close())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := h.OpenDir(filepath.Join(dir, "missing"))
		assert.Equal(t, kernel.DoesNotExist, err)
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := h.OpenDir(file)
		assert.Equal(t, kernel.InvalidOperation, err)
	})
}

func TestHost_CreateProcess(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), nil, 0644))

	h := newTestHost()
	handle, err := h.OpenDir(dir)
	require.NoError(t, err)
	defer handle.Close()

	t.Run("missing", func(t *testing.T) {
		_, err := h.CreateProcess(handle, "missing", []string{"missing"}, nil)
		assert.Equal(t, kernel.DoesNotExist, err)
	})

	t.Run("not executable", func(t *testing.T) {
		_, err := h.CreateProcess(handle, "plain", []string{"plain"}, nil)
		assert.Equal(t, kernel.Permission, err)
	})

	t.Run("exit status", func(t *testing.T) {
		if _, err := os.Stat("/bin/sh"); err != nil {
			t.Skip("no /bin/sh on this host")
		}

		proc, err := h.CreateProcess(nil, "/bin/sh", []string{"sh", "-c", "exit 3"}, nil)
		require.NoError(t, err)

		status, err := proc.Join()
		assert.NoError(t, err)
		assert.Equal(t, 3, status)

		_, err = proc.Join()
		assert.Equal(t, kernel.InvalidHandle, err)
	})
}

func TestHost_Mapping(t *testing.T) {
	h := newTestHost()

	m, err := h.CreateMapping(2)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Pages())
	assert.Zero(t, m.Addr%kernel.PageSize, "page aligned")
	for i, b := range m.Mem {
		if b != 0 {
			t.Fatalf("byte %d is %d, want zero", i, b)
		}
	}

	m.Mem[0] = 0xff
	assert.NoError(t, h.RemoveMapping(m))

	_, err = h.CreateMapping(0)
	assert.Equal(t, kernel.InvalidOption, err)
}
