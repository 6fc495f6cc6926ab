// Package kerneltest provides a deterministic in-memory kernel for tests.
package kerneltest

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"sync"

	"github.com/josephlewis42/minish/core/kernel"
	"github.com/spf13/afero"
)

// firstMappingAddr is where the fake starts handing out mappings.
const firstMappingAddr uintptr = 0x10000000

// Proc is what a fake executable sees when it runs.
type Proc struct {
	// Path is the resolved image path.
	Path string
	// Args is the argument vector, Args[0] is the command name.
	Args []string
	// Env is the environment block the child was started with.
	Env []string

	Stdout io.Writer
	Stderr io.Writer
}

// Image is a fake executable, it returns the exit status.
type Image func(p *Proc) int

// Spawn records one CreateProcess call.
type Spawn struct {
	// Dir is the name of the base directory, empty if none was given.
	Dir   string
	Image string
	Args  []string
	Env   []string
	// Err is the error CreateProcess returned.
	Err error
}

// Kernel is an in-memory implementation of kernel.Services.
//
// Directories and files live in FS. A file is executable if it has an
// execute bit set and an Image registered at its path.
type Kernel struct {
	FS afero.Fs

	Stdout io.Writer
	Stderr io.Writer

	// MappingErr, if non-zero, fails every CreateMapping call.
	MappingErr kernel.Status
	// MappingLimit caps the total number of mapped pages, zero means no cap.
	MappingLimit int

	mu       sync.Mutex
	images   map[string]Image
	spawns   []Spawn
	opened   []string
	nextAddr uintptr
	mappings map[uintptr]int
	calls    int
	mapped   int
}

var _ kernel.Services = (*Kernel)(nil)

// New creates a fake kernel with an empty in-memory filesystem.
func New() *Kernel {
	return &Kernel{
		FS:       afero.NewMemMapFs(),
		Stdout:   io.Discard,
		Stderr:   io.Discard,
		images:   make(map[string]Image),
		nextAddr: firstMappingAddr,
		mappings: make(map[uintptr]int),
	}
}

// Mkdir creates directories, including parents.
func (k *Kernel) Mkdir(dirs ...string) *Kernel {
	for _, d := range dirs {
		if err := k.FS.MkdirAll(d, 0755); err != nil {
			panic(err)
		}
	}
	return k
}

// Install writes an executable file at name and registers img for it.
func (k *Kernel) Install(name string, img Image) *Kernel {
	k.Mkdir(path.Dir(name))
	if err := afero.WriteFile(k.FS, name, []byte("#!fake\n"), 0755); err != nil {
		panic(err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.images[name] = img
	return k
}

// WriteFile writes a plain file with the given permissions, it won't have an
// image registered.
func (k *Kernel) WriteFile(name string, perm fs.FileMode) *Kernel {
	k.Mkdir(path.Dir(name))
	if err := afero.WriteFile(k.FS, name, nil, perm); err != nil {
		panic(err)
	}
	return k
}

// OpenDir implements kernel.VFS.OpenDir.
func (k *Kernel) OpenDir(name string) (kernel.DirHandle, error) {
	k.mu.Lock()
	k.opened = append(k.opened, name)
	k.mu.Unlock()

	fi, err := k.FS.Stat(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, kernel.DoesNotExist
	case err != nil:
		return nil, kernel.InvalidOperation
	case !fi.IsDir():
		return nil, kernel.InvalidOperation
	}

	return k.FS.Open(name)
}

// CreateProcess implements kernel.VProc.CreateProcess.
func (k *Kernel) CreateProcess(dir kernel.DirHandle, image string, args, env []string) (kernel.Process, error) {
	spawn := Spawn{
		Image: image,
		Args:  append([]string(nil), args...),
		Env:   append([]string(nil), env...),
	}

	resolved := image
	if dir != nil {
		spawn.Dir = dir.Name()
		resolved = path.Join(dir.Name(), image)
	}

	img, err := k.resolve(resolved)
	spawn.Err = err

	k.mu.Lock()
	k.spawns = append(k.spawns, spawn)
	k.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &process{
		img: img,
		proc: &Proc{
			Path:   resolved,
			Args:   spawn.Args,
			Env:    spawn.Env,
			Stdout: k.Stdout,
			Stderr: k.Stderr,
		},
	}, nil
}

func (k *Kernel) resolve(name string) (Image, error) {
	fi, err := k.FS.Stat(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, kernel.DoesNotExist
	case err != nil:
		return nil, kernel.InvalidOperation
	case fi.IsDir():
		return nil, kernel.InvalidOperation
	case fi.Mode()&0111 == 0:
		return nil, kernel.Permission
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	img, ok := k.images[name]
	if !ok {
		return nil, kernel.InterpError
	}
	return img, nil
}

type process struct {
	img    Image
	proc   *Proc
	joined bool
}

// Join implements kernel.Process.Join. The image runs when it is joined.
func (p *process) Join() (int, error) {
	if p.joined {
		return 0, kernel.InvalidHandle
	}
	p.joined = true
	return p.img(p.proc), nil
}

// CreateMapping implements kernel.VMem.CreateMapping.
func (k *Kernel) CreateMapping(pages int) (kernel.Mapping, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.calls++
	switch {
	case k.MappingErr != kernel.OK:
		return kernel.Mapping{}, k.MappingErr
	case pages <= 0:
		return kernel.Mapping{}, kernel.InvalidOption
	case k.MappingLimit > 0 && k.mapped+pages > k.MappingLimit:
		return kernel.Mapping{}, kernel.InsufficientMemory
	}

	addr := k.nextAddr
	// Leave a guard page so no two mappings are adjacent.
	k.nextAddr += uintptr(pages+1) * kernel.PageSize
	k.mappings[addr] = pages
	k.mapped += pages

	return kernel.Mapping{
		Addr: addr,
		Mem:  make([]byte, pages*kernel.PageSize),
	}, nil
}

// RemoveMapping implements kernel.VMem.RemoveMapping.
func (k *Kernel) RemoveMapping(m kernel.Mapping) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	pages, ok := k.mappings[m.Addr]
	if !ok || pages != m.Pages() {
		return kernel.MappingInaccessible
	}
	delete(k.mappings, m.Addr)
	k.mapped -= pages
	return nil
}

// Spawns returns every CreateProcess call made so far.
func (k *Kernel) Spawns() []Spawn {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Spawn(nil), k.spawns...)
}

// Opened returns the directories OpenDir was called with, in order.
func (k *Kernel) Opened() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.opened...)
}

// MappingCalls returns the number of CreateMapping calls.
func (k *Kernel) MappingCalls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls
}

// MappedPages returns the number of pages currently mapped.
func (k *Kernel) MappedPages() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mapped
}
