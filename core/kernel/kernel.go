// Package kernel describes the kernel services the shell runs on top of.
//
// The shell never talks to the host directly: directories, child processes
// and memory mappings are all requested through Services, which production
// code binds to real system calls (hostkernel) and tests bind to an in-memory
// fake (kerneltest).
package kernel

// PageSize is the granularity of every memory mapping.
const PageSize = 4096

// DirHandle is an open directory, usable as the base for resolving relative
// image paths.
type DirHandle interface {
	// Name returns the path the directory was opened with.
	Name() string
	Close() error
}

// Process is a started child process.
type Process interface {
	// Join blocks until the child terminates and returns its exit status.
	// The handle is spent afterwards; joining again reports InvalidHandle.
	Join() (int, error)
}

// Mapping is a private, readable and writable region of whole pages.
type Mapping struct {
	// Addr is the page-aligned base address of the region.
	Addr uintptr
	// Mem is the zero-filled backing memory of the region.
	Mem []byte
}

// Pages returns the number of pages covered by the mapping.
func (m Mapping) Pages() int {
	return len(m.Mem) / PageSize
}

// VFS holds the filesystem operations the shell consumes.
type VFS interface {
	// OpenDir opens path read-only, failing unless it names a directory.
	OpenDir(path string) (DirHandle, error)
}

// VProc holds the process control operations the shell consumes.
type VProc interface {
	// CreateProcess starts image as a child. If dir is non-nil, image is
	// resolved relative to it, otherwise image is used as given. args become
	// the child's argument vector (args[0] is the command name) and env its
	// environment block.
	CreateProcess(dir DirHandle, image string, args, env []string) (Process, error)
}

// VMem holds the virtual memory operations the allocator consumes.
type VMem interface {
	// CreateMapping maps pages zeroed pages of private read/write memory.
	CreateMapping(pages int) (Mapping, error)
	// RemoveMapping unmaps a mapping previously returned by CreateMapping.
	RemoveMapping(m Mapping) error
}

// Services is the full set of kernel services.
type Services interface {
	VFS
	VProc
	VMem
}
