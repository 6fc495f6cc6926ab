//go:build unix

// Package hostkernel binds the kernel services to the host operating system.
package hostkernel

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"

	"github.com/josephlewis42/minish/core/kernel"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Host implements kernel.Services using real system calls.
type Host struct {
	fs afero.Fs
	// files are the stdin, stdout and stderr handed to children.
	files []*os.File
}

var _ kernel.Services = (*Host)(nil)

// New creates a host kernel whose children inherit the given standard
// streams.
func New(stdin, stdout, stderr *os.File) *Host {
	return &Host{
		fs:    afero.NewOsFs(),
		files: []*os.File{stdin, stdout, stderr},
	}
}

// OpenDir implements kernel.VFS.OpenDir.
func (h *Host) OpenDir(path string) (kernel.DirHandle, error) {
	fd, err := h.fs.Open(path)
	if err != nil {
		return nil, statusFromError(err)
	}

	fi, err := fd.Stat()
	switch {
	case err != nil:
		fd.Close()
		return nil, statusFromError(err)
	case !fi.IsDir():
		fd.Close()
		return nil, kernel.InvalidOperation
	}

	return fd, nil
}

// CreateProcess implements kernel.VProc.CreateProcess.
func (h *Host) CreateProcess(dir kernel.DirHandle, image string, args, env []string) (kernel.Process, error) {
	name := image
	if dir != nil {
		name = filepath.Join(dir.Name(), image)
	}

	fi, err := h.fs.Stat(name)
	switch {
	case err != nil:
		return nil, statusFromError(err)
	case fi.IsDir():
		return nil, kernel.InvalidOperation
	case fi.Mode()&0111 == 0:
		return nil, kernel.Permission
	}

	proc, err := os.StartProcess(name, args, &os.ProcAttr{
		Env:   env,
		Files: h.files,
	})
	if err != nil {
		return nil, statusFromError(err)
	}

	return &hostProcess{proc: proc}, nil
}

type hostProcess struct {
	proc *os.Process
}

// Join implements kernel.Process.Join.
func (p *hostProcess) Join() (int, error) {
	if p.proc == nil {
		return 0, kernel.InvalidHandle
	}
	proc := p.proc
	p.proc = nil

	state, err := proc.Wait()
	if err != nil {
		return 0, statusFromError(err)
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return state.ExitCode(), nil
}

// CreateMapping implements kernel.VMem.CreateMapping.
func (h *Host) CreateMapping(pages int) (kernel.Mapping, error) {
	if pages <= 0 {
		return kernel.Mapping{}, kernel.InvalidOption
	}

	mem, err := unix.Mmap(-1, 0, pages*kernel.PageSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return kernel.Mapping{}, statusFromError(err)
	}

	return kernel.Mapping{
		Addr: uintptr(unsafe.Pointer(&mem[0])),
		Mem:  mem,
	}, nil
}

// RemoveMapping implements kernel.VMem.RemoveMapping.
func (h *Host) RemoveMapping(m kernel.Mapping) error {
	if len(m.Mem) == 0 || len(m.Mem)%kernel.PageSize != 0 {
		return kernel.InvalidMemory
	}
	if err := unix.Munmap(m.Mem); err != nil {
		return statusFromError(err)
	}
	return nil
}

// statusFromError converts a host error to a kernel status. Errors without an
// errno, or with an errno missing from the table, are returned unchanged.
func statusFromError(err error) error {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	if s, ok := errnoStatus[errno]; ok {
		return s
	}
	return err
}
